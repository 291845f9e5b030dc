// Copyright 2025 Meridian
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package document

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"meridian/docstore/store"
)

var memSeq atomic.Int64

// memClient is an in-memory store.Client whose collections persist
// documents in maps, enough to exercise the access layer end to end.
type memClient struct {
	id    string
	state atomic.Int32

	mu        sync.Mutex
	colls     map[string]*memCollection
	listeners []func(store.Event)
}

func newMemClient() *memClient {
	m := &memClient{
		id:    fmt.Sprintf("mem-%d", memSeq.Add(1)),
		colls: make(map[string]*memCollection),
	}
	m.state.Store(int32(store.Connected))
	return m
}

func (m *memClient) ID() string { return m.id }

func (m *memClient) State() store.State { return store.State(m.state.Load()) }

func (m *memClient) Open(ctx context.Context, uri string) error {
	m.state.Store(int32(store.Connected))
	return nil
}

func (m *memClient) Close(ctx context.Context) error {
	m.state.Store(int32(store.Disconnected))
	return nil
}

func (m *memClient) Subscribe(fn func(store.Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *memClient) Collection(name string, schema *store.Schema) store.Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	if coll, ok := m.colls[name]; ok {
		coll.schema = schema
		return coll
	}
	coll := &memCollection{
		name:   name,
		schema: schema,
		docs:   make(map[string]map[string]interface{}),
	}
	m.colls[name] = coll
	return coll
}

type memCollection struct {
	name   string
	schema *store.Schema

	mu       sync.Mutex
	docs     map[string]map[string]interface{}
	findErr  error
	probeIDs []string
}

func (c *memCollection) Name() string          { return c.name }
func (c *memCollection) Schema() *store.Schema { return c.schema }

func (c *memCollection) put(doc map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc["_id"].(string)] = cloneMap(doc)
}

func matches(doc, filter map[string]interface{}) bool {
	for k, want := range filter {
		if doc[k] != want {
			return false
		}
	}
	return true
}

func (c *memCollection) Find(ctx context.Context, filter map[string]interface{}) ([]map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	var out []map[string]interface{}
	for _, doc := range c.docs {
		if matches(doc, filter) {
			out = append(out, cloneMap(doc))
		}
	}
	return out, nil
}

func (c *memCollection) FindOne(ctx context.Context, filter map[string]interface{}) (map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	for _, doc := range c.docs {
		if matches(doc, filter) {
			return cloneMap(doc), nil
		}
	}
	return nil, nil
}

func (c *memCollection) FindByID(ctx context.Context, id string) (map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probeIDs = append(c.probeIDs, id)
	if c.findErr != nil {
		return nil, c.findErr
	}
	if doc, ok := c.docs[id]; ok {
		return cloneMap(doc), nil
	}
	return nil, nil
}

func (c *memCollection) Create(ctx context.Context, doc map[string]interface{}, opts store.CreateOptions) (map[string]interface{}, error) {
	stored := cloneMap(doc)
	if c.schema != nil {
		for field, def := range c.schema.Defaults {
			if _, ok := stored[field]; !ok {
				stored[field] = def
			}
		}
		if opts.RunValidators {
			for _, field := range c.schema.Required {
				if _, ok := stored[field]; !ok {
					return nil, fmt.Errorf("missing required field %q", field)
				}
			}
			for field, validate := range c.schema.Validators {
				if val, ok := stored[field]; ok {
					if err := validate(val); err != nil {
						return nil, err
					}
				}
			}
		}
		if opts.PreSave && c.schema.PreSave != nil {
			if err := c.schema.PreSave(stored); err != nil {
				return nil, err
			}
		}
	}
	c.put(stored)
	return cloneMap(stored), nil
}

func (c *memCollection) FindOneAndUpdate(ctx context.Context, filter, doc map[string]interface{}, opts store.UpdateOptions) (map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, _ := filter["_id"].(string)
	existing, ok := c.docs[id]
	if !ok && !opts.Upsert {
		return nil, nil
	}
	if !ok {
		existing = map[string]interface{}{"_id": id}
		if opts.SetDefaults && c.schema != nil {
			for field, def := range c.schema.Defaults {
				existing[field] = def
			}
		}
	}
	if opts.RunValidators && c.schema != nil {
		for field, validate := range c.schema.Validators {
			if val, present := doc[field]; present {
				if err := validate(val); err != nil {
					return nil, err
				}
			}
		}
	}
	for k, v := range doc {
		existing[k] = v
	}
	c.docs[id] = existing
	if opts.ReturnNew {
		return cloneMap(existing), nil
	}
	return nil, nil
}

func (c *memCollection) DeleteOne(ctx context.Context, filter map[string]interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, _ := filter["_id"].(string)
	if _, ok := c.docs[id]; !ok {
		return 0, nil
	}
	delete(c.docs, id)
	return 1, nil
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
