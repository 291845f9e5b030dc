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
	"errors"
	"sync"
	"time"

	"meridian/docstore/conn"
	"meridian/docstore/shared/logger"
	"meridian/docstore/store"
)

// Access executes document operations against registry connections.
// Every operation acquires its connection first, so callers never see a
// half-open handle. All failures come back as typed errors; coercing
// them into soft nils is the facade's job, not this package's.
type Access struct {
	registry *conn.Registry
	wait     conn.WaitPolicy
	cache    Cache
	log      *logger.Logger
	newID    func() string
}

// NewAccess wires an access layer over the registry. cache may be nil
// to disable DTO caching, log may be nil for the package default.
func NewAccess(registry *conn.Registry, wait conn.WaitPolicy, cache Cache, log *logger.Logger) *Access {
	if log == nil {
		log = logger.New("document")
	}
	return &Access{
		registry: registry,
		wait:     wait,
		cache:    cache,
		log:      log,
		newID:    NewID,
	}
}

// List finds all documents matching the filter in the collection the
// filter's type selects. Results are returned in DTO form.
func (a *Access) List(ctx context.Context, c *conn.Connection, filter map[string]interface{}) (_ []map[string]interface{}, err error) {
	start := time.Now()
	defer func() { observeOp("list", start, err) }()

	c, err = a.registry.Acquire(ctx, c, a.wait)
	if err != nil {
		return nil, err
	}
	coll, err := Resolve(documentType(filter), c)
	if err != nil {
		return nil, err
	}
	docs, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, storageErr("List", "find failed", err)
	}
	return toDTOs(docs), nil
}

// GetOne returns the first document matching the filter, or nil when
// nothing matches. The document is returned in raw storage form, id
// field and bookkeeping included; List is the shaped counterpart.
func (a *Access) GetOne(ctx context.Context, c *conn.Connection, filter map[string]interface{}) (_ map[string]interface{}, err error) {
	start := time.Now()
	defer func() { observeOp("get_one", start, err) }()

	c, err = a.registry.Acquire(ctx, c, a.wait)
	if err != nil {
		return nil, err
	}
	coll, err := Resolve(documentType(filter), c)
	if err != nil {
		return nil, err
	}
	doc, err := coll.FindOne(ctx, filter)
	if err != nil {
		return nil, storageErr("GetOne", "find failed", err)
	}
	return doc, nil
}

// GetByID looks a document up by id across every collection bound to
// the connection. All collections are probed concurrently and awaited;
// when more than one holds the id, the collection registered earliest
// wins. Returns nil when no collection has it.
func (a *Access) GetByID(ctx context.Context, c *conn.Connection, id string) (_ map[string]interface{}, err error) {
	start := time.Now()
	defer func() { observeOp("get_by_id", start, err) }()

	if id == "" {
		return nil, store.E(store.KindInvalidArgument, "GetByID", "invalid id", nil)
	}
	c, err = a.registry.Acquire(ctx, c, a.wait)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if dto, ok, cerr := a.cache.Get(ctx, id); cerr == nil && ok {
			promCacheHits.WithLabelValues("hit").Inc()
			return dto, nil
		}
		promCacheHits.WithLabelValues("miss").Inc()
	}

	colls := c.Collections()
	results := make([]map[string]interface{}, len(colls))
	errs := make([]error, len(colls))

	var wg sync.WaitGroup
	for i, coll := range colls {
		wg.Add(1)
		promFanoutProbes.Inc()
		go func(i int, coll store.Collection) {
			defer wg.Done()
			results[i], errs[i] = coll.FindByID(ctx, id)
		}(i, coll)
	}
	wg.Wait()

	// Winner selection follows binding order, not completion order.
	for i, doc := range results {
		if errs[i] == nil && doc != nil {
			dto := toDTO(doc)
			if a.cache != nil {
				if cerr := a.cache.Set(ctx, id, dto); cerr != nil {
					a.log.Warn(c.ID(), "GetByID", "cache set failed", map[string]interface{}{"error": cerr.Error()})
				}
			}
			return dto, nil
		}
	}
	for _, perr := range errs {
		if perr != nil {
			return nil, storageErr("GetByID", "lookup failed", perr)
		}
	}
	return nil, nil
}

// Create inserts the document into the collection its type selects,
// generating an id when the payload carries none. The returned DTO is
// re-read from storage so schema defaulting is reflected.
func (a *Access) Create(ctx context.Context, c *conn.Connection, doc map[string]interface{}) (_ map[string]interface{}, err error) {
	start := time.Now()
	defer func() { observeOp("create", start, err) }()

	c, err = a.registry.Acquire(ctx, c, a.wait)
	if err != nil {
		return nil, err
	}
	coll, err := Resolve(documentType(doc), c)
	if err != nil {
		return nil, err
	}

	id := documentID(doc)
	if id == "" {
		id = a.newID()
	}

	payload := make(map[string]interface{}, len(doc)+1)
	for k, v := range doc {
		if k == "id" {
			continue
		}
		payload[k] = v
	}
	payload["_id"] = id

	if _, err = coll.Create(ctx, payload, store.CreateOptions{RunValidators: true, PreSave: true}); err != nil {
		return nil, storageErr("Create", "insert failed", err)
	}

	stored, err := coll.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr("Create", "post-insert read failed", err)
	}
	dto := toDTO(stored)
	a.invalidate(ctx, c, "Create", id)
	return dto, nil
}

// Update applies the payload to the document it identifies, creating it
// when absent. The payload may carry "id" or the storage-form "_id".
func (a *Access) Update(ctx context.Context, c *conn.Connection, doc map[string]interface{}) (_ map[string]interface{}, err error) {
	start := time.Now()
	defer func() { observeOp("update", start, err) }()

	c, err = a.registry.Acquire(ctx, c, a.wait)
	if err != nil {
		return nil, err
	}
	coll, err := Resolve(documentType(doc), c)
	if err != nil {
		return nil, err
	}
	id := documentID(doc)
	if id == "" {
		return nil, store.E(store.KindInvalidArgument, "Update", "invalid id", nil)
	}

	payload := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k == "id" || k == "_id" {
			continue
		}
		payload[k] = v
	}

	updated, err := coll.FindOneAndUpdate(ctx, map[string]interface{}{"_id": id}, payload, store.UpdateOptions{
		Upsert:        true,
		ReturnNew:     true,
		SetDefaults:   true,
		RunValidators: true,
	})
	if err != nil {
		return nil, storageErr("Update", "update failed", err)
	}
	a.invalidate(ctx, c, "Update", id)
	return toDTO(updated), nil
}

// Delete removes the document the payload identifies. The boolean tells
// removed from not-found apart; an error means the outcome is unknown.
func (a *Access) Delete(ctx context.Context, c *conn.Connection, doc map[string]interface{}) (_ bool, err error) {
	start := time.Now()
	defer func() { observeOp("delete", start, err) }()

	c, err = a.registry.Acquire(ctx, c, a.wait)
	if err != nil {
		return false, err
	}
	coll, err := Resolve(documentType(doc), c)
	if err != nil {
		return false, err
	}
	id := documentID(doc)
	if id == "" {
		return false, store.E(store.KindInvalidArgument, "Delete", "invalid id", nil)
	}

	count, err := coll.DeleteOne(ctx, map[string]interface{}{"_id": id})
	if err != nil {
		return false, storageErr("Delete", "delete failed", err)
	}
	a.invalidate(ctx, c, "Delete", id)
	return count > 0, nil
}

func (a *Access) invalidate(ctx context.Context, c *conn.Connection, op, id string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, id); err != nil {
		a.log.Warn(c.ID(), op, "cache invalidation failed", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
	}
}

// storageErr wraps a storage-layer failure unless it already carries a
// kind, so validation failures keep their original classification.
func storageErr(op, msg string, err error) error {
	var typed *store.Error
	if errors.As(err, &typed) {
		return err
	}
	return store.E(store.KindStorageFailed, op, msg, err)
}
