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

package docstore

import (
	"context"

	"meridian/docstore/conn"
	"meridian/docstore/document"
	"meridian/docstore/mongostore"
	"meridian/docstore/shared/logger"
	"meridian/docstore/store"
)

// DocStore is the soft-failure facade over the registry and the access
// layer. Every operation catches the typed error, logs it with the
// operation name and offending input, and hands the caller a nil (or
// empty) value instead. Callers that need the error itself use the
// conn and document packages directly.
type DocStore struct {
	registry *conn.Registry
	access   *document.Access
	log      *logger.Logger

	dial  conn.DialFunc
	wait  conn.WaitPolicy
	cache document.Cache
}

// Option configures a DocStore at construction time.
type Option func(*DocStore)

// WithDialer swaps the storage dialer; the default dials MongoDB.
func WithDialer(dial conn.DialFunc) Option {
	return func(s *DocStore) { s.dial = dial }
}

// WithWaitPolicy overrides how long operations wait out transitional
// connection states.
func WithWaitPolicy(policy conn.WaitPolicy) Option {
	return func(s *DocStore) { s.wait = policy }
}

// WithCache enables the read-through DTO cache for id lookups.
func WithCache(cache document.Cache) Option {
	return func(s *DocStore) { s.cache = cache }
}

// WithLogger overrides the facade logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *DocStore) { s.log = log }
}

// New builds a DocStore with MongoDB dialing, the default wait policy,
// and no cache unless options say otherwise.
func New(opts ...Option) *DocStore {
	s := &DocStore{
		dial: mongostore.Dial,
		wait: conn.DefaultWaitPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.New("docstore")
	}
	s.registry = conn.NewRegistry(s.dial, s.log)
	s.access = document.NewAccess(s.registry, s.wait, s.cache, s.log)
	return s
}

// Registry exposes the underlying connection registry for inspection,
// health reporting mostly.
func (s *DocStore) Registry() *conn.Registry {
	return s.registry
}

// InitConnection registers (or returns the already-registered record
// for) the target the options resolve to. Returns nil on failure.
func (s *DocStore) InitConnection(opts conn.Options) *conn.Connection {
	c, err := s.registry.Register(opts)
	if err != nil {
		s.log.OpError("", "InitConnection", opts, err)
		return nil
	}
	return c
}

// AssignSchema binds a schema-typed collection name on the connection.
// Returns nil on invalid name, schema, or connection.
func (s *DocStore) AssignSchema(name string, schema *store.Schema, c *conn.Connection) store.Collection {
	if c == nil {
		s.log.OpError("", "AssignSchema", name, store.E(store.KindInvalidArgument, "AssignSchema", "nil connection", nil))
		return nil
	}
	coll, err := c.Bind(name, schema)
	if err != nil {
		s.log.OpError(c.ID(), "AssignSchema", name, err)
		return nil
	}
	return coll
}

// ListDocuments returns the matching documents in DTO form. Never nil:
// failures and empty results both come back as an empty slice.
func (s *DocStore) ListDocuments(ctx context.Context, c *conn.Connection, filter map[string]interface{}) []map[string]interface{} {
	docs, err := s.access.List(ctx, c, filter)
	if err != nil {
		s.log.OpError(connID(c), "ListDocuments", filter, err)
		return []map[string]interface{}{}
	}
	if docs == nil {
		return []map[string]interface{}{}
	}
	return docs
}

// GetDocument returns the first match in raw storage form, or nil when
// nothing matches or the lookup fails.
func (s *DocStore) GetDocument(ctx context.Context, c *conn.Connection, filter map[string]interface{}) map[string]interface{} {
	doc, err := s.access.GetOne(ctx, c, filter)
	if err != nil {
		s.log.OpError(connID(c), "GetDocument", filter, err)
		return nil
	}
	return doc
}

// GetDocumentByID fans the lookup out across the connection's bound
// collections and returns the winning DTO, or nil.
func (s *DocStore) GetDocumentByID(ctx context.Context, c *conn.Connection, id string) map[string]interface{} {
	doc, err := s.access.GetByID(ctx, c, id)
	if err != nil {
		s.log.OpError(connID(c), "GetDocumentByID", id, err)
		return nil
	}
	return doc
}

// CreateDocument inserts the document and returns its stored DTO, or
// nil on failure.
func (s *DocStore) CreateDocument(ctx context.Context, c *conn.Connection, doc map[string]interface{}) map[string]interface{} {
	created, err := s.access.Create(ctx, c, doc)
	if err != nil {
		s.log.OpError(connID(c), "CreateDocument", doc, err)
		return nil
	}
	return created
}

// UpdateDocument applies the payload to the document it identifies and
// returns the post-update DTO, or nil on failure.
func (s *DocStore) UpdateDocument(ctx context.Context, c *conn.Connection, doc map[string]interface{}) map[string]interface{} {
	updated, err := s.access.Update(ctx, c, doc)
	if err != nil {
		s.log.OpError(connID(c), "UpdateDocument", doc, err)
		return nil
	}
	return updated
}

// DeleteDocument removes the document the payload identifies. The
// result is tri-state: true removed, false no match, nil the outcome is
// unknown because the operation failed.
func (s *DocStore) DeleteDocument(ctx context.Context, c *conn.Connection, doc map[string]interface{}) *bool {
	removed, err := s.access.Delete(ctx, c, doc)
	if err != nil {
		s.log.OpError(connID(c), "DeleteDocument", doc, err)
		return nil
	}
	return &removed
}

// CloseConnection closes the identified connection's handle. The record
// stays registered so the same target can be reopened later.
func (s *DocStore) CloseConnection(ctx context.Context, id string) bool {
	if err := s.registry.CloseByID(ctx, id); err != nil {
		s.log.OpError(id, "CloseConnection", id, err)
		return false
	}
	return true
}

// CloseAll closes every registered connection's handle.
func (s *DocStore) CloseAll(ctx context.Context) {
	s.registry.CloseAll(ctx)
}

func connID(c *conn.Connection) string {
	if c == nil {
		return ""
	}
	return c.ID()
}
