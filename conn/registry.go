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
	"context"
	"strings"
	"sync"

	"meridian/docstore/shared/logger"
	"meridian/docstore/store"
)

// DialFunc creates an unopened storage handle from forwarded registration
// options. The handle must not connect until Open is called on it.
type DialFunc func(opts map[string]interface{}) (store.Client, error)

// Options describes one registration request. Either URI or the
// BaseURL+Name pair must resolve; Secret is accepted for caller
// convenience but never forwarded to the dialer. Extra entries pass
// through to the dialer untouched.
type Options struct {
	URI     string
	BaseURL string
	Name    string
	Secret  string
	Extra   map[string]interface{}
}

// resolveURL builds the canonical connection string used as the dedup key.
// An explicit URI wins; otherwise BaseURL and Name compose one. Empty
// string means the options are not resolvable.
func (o Options) resolveURL() string {
	if o.URI != "" {
		return o.URI
	}
	if o.BaseURL != "" && o.Name != "" {
		return strings.TrimRight(o.BaseURL, "/") + "/" + o.Name
	}
	return ""
}

// forwarded returns the option map passed to the dialer, with Secret
// deliberately excluded.
func (o Options) forwarded() map[string]interface{} {
	out := make(map[string]interface{}, len(o.Extra)+1)
	for k, v := range o.Extra {
		out[k] = v
	}
	if o.Name != "" {
		out["database"] = o.Name
	}
	return out
}

// Registry owns every live connection record, keyed by handle identity and
// by canonical URL. All mutation is safe under concurrent invocation; the
// dedup check-then-insert in Register runs atomically under the write
// lock, so two callers racing on the same URL get the same record.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Connection
	byURL map[string]*Connection
	order []*Connection

	dial DialFunc
	log  *logger.Logger
}

// NewRegistry creates an empty registry that dials new handles through
// the given function.
func NewRegistry(dial DialFunc, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.New("registry")
	}
	return &Registry{
		byID:  make(map[string]*Connection),
		byURL: make(map[string]*Connection),
		dial:  dial,
		log:   log,
	}
}

// Register resolves the target URL and returns the record for it,
// creating a new unopened handle only when the URL is not yet known.
// Registration is idempotent per URL: a second call returns the existing
// record unchanged and creates nothing.
func (r *Registry) Register(opts Options) (*Connection, error) {
	url := opts.resolveURL()
	if url == "" {
		return nil, store.E(store.KindInvalidArgument, "Register",
			"neither URI nor base URL and name resolvable", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byURL[url]; ok {
		return existing, nil
	}

	client, err := r.dial(opts.forwarded())
	if err != nil {
		return nil, store.E(store.KindConnectionOpenFailed, "Register",
			"failed to create storage handle", err)
	}

	record := newConnection(url, client)
	r.byID[record.ID()] = record
	r.byURL[url] = record
	r.order = append(r.order, record)

	// Lifecycle observer, logging only: transitions never steer control
	// flow here.
	id := record.ID()
	client.Subscribe(func(ev store.Event) {
		r.log.Info(id, "lifecycle", string(ev), nil)
	})

	r.log.Info(id, "Register", "connection registered", map[string]interface{}{"url": url})
	return record, nil
}

// Lookup returns the record with the given handle identity, or nil.
func (r *Registry) Lookup(id string) *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// LookupByURL returns the record registered under the given canonical
// URL, or nil.
func (r *Registry) LookupByURL(url string) *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byURL[url]
}

// Default returns the first-registered record, or nil when the registry
// is empty.
func (r *Registry) Default() *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil
	}
	return r.order[0]
}

// All returns a snapshot of every record in registration order.
func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered records.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// CloseByID closes the handle of the record with the given identity. The
// record stays registered: reopening the same URL later reuses it rather
// than re-registering.
func (r *Registry) CloseByID(ctx context.Context, id string) error {
	record := r.Lookup(id)
	if record == nil {
		return store.E(store.KindInvalidArgument, "CloseByID", "unknown connection id "+id, nil)
	}

	if err := record.client.Close(ctx); err != nil {
		r.log.OpError(id, "CloseByID", nil, err)
		return err
	}
	return nil
}

// CloseAll closes every registered handle in registration order. Close
// failures are logged and do not stop the sweep.
func (r *Registry) CloseAll(ctx context.Context) {
	for _, record := range r.All() {
		if err := r.CloseByID(ctx, record.ID()); err != nil {
			continue
		}
	}
}
