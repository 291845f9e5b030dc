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

package conn

import (
	"strings"
	"sync"

	"meridian/docstore/store"
)

// Connection is one registry record: a unique target URL, the storage
// handle owned by the record, and the collections callers have bound to
// it. The record outlives a Close of its handle so the same URL can be
// reopened without re-registering.
type Connection struct {
	id     string
	url    string
	client store.Client

	// openMu serializes lazy opens of the handle; concurrent Acquire
	// calls on a disconnected record must produce exactly one Open.
	openMu sync.Mutex

	mu       sync.RWMutex
	bindings map[string]store.Collection
	order    []string
}

func newConnection(url string, client store.Client) *Connection {
	return &Connection{
		id:       client.ID(),
		url:      url,
		client:   client,
		bindings: make(map[string]store.Collection),
	}
}

// ID returns the handle-assigned identity of this record.
func (c *Connection) ID() string {
	return c.id
}

// URL returns the canonical connection string the record was registered
// under.
func (c *Connection) URL() string {
	return c.url
}

// Client returns the underlying storage handle.
func (c *Connection) Client() store.Client {
	return c.client
}

// State reports the handle's current lifecycle state.
func (c *Connection) State() store.State {
	return c.client.State()
}

// Bind registers a named, schema-typed collection on this connection.
// Rebinding an existing name replaces the handle but keeps its position
// in the registration order.
func (c *Connection) Bind(name string, schema *store.Schema) (store.Collection, error) {
	if name == "" {
		return nil, store.E(store.KindInvalidArgument, "Bind", "empty collection name", nil)
	}
	if schema == nil {
		return nil, store.E(store.KindInvalidArgument, "Bind", "nil schema", nil)
	}

	coll := c.client.Collection(name, schema)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.bindings[name]; !exists {
		c.order = append(c.order, name)
	}
	c.bindings[name] = coll
	return coll, nil
}

// Collections returns the bound collections in registration order.
func (c *Connection) Collections() []store.Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]store.Collection, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.bindings[name])
	}
	return out
}

// Collection resolves a bound collection by case-insensitive name match,
// first registered match wins. The second return is false when no name
// matches.
func (c *Connection) Collection(name string) (store.Collection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, bound := range c.order {
		if strings.EqualFold(bound, name) {
			return c.bindings[bound], true
		}
	}
	return nil, false
}
