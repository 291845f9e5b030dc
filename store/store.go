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

package store

import (
	"context"
)

// State is the lifecycle state of a storage client. The numeric values of
// the first four states match what the underlying driver reports; Disconnected
// is the settled "was closed / never opened" state and is treated the same as
// Uninitialized when deciding whether a reopen is needed.
type State int32

const (
	Uninitialized State = 0
	Connected     State = 1
	Connecting    State = 2
	Disconnecting State = 3
	Disconnected  State = 4
)

// String returns the lowercase state name used in logs and health output.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Connected:
		return "connected"
	case Connecting:
		return "connecting"
	case Disconnecting:
		return "disconnecting"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Transitional reports whether the state is one the client is expected to
// leave on its own (an open or close currently in flight).
func (s State) Transitional() bool {
	return s == Connecting || s == Disconnecting
}

// Settled reports whether an application-level operation may proceed from
// this state without waiting.
func (s State) Settled() bool {
	return !s.Transitional()
}

// Event is a lifecycle transition notification emitted by a Client.
type Event string

const (
	EventConnecting    Event = "connecting"
	EventConnected     Event = "connected"
	EventDisconnecting Event = "disconnecting"
	EventDisconnected  Event = "disconnected"
	EventClose         Event = "close"
	EventReconnected   Event = "reconnected"
)

// Client is the opaque storage engine handle consumed by the connection
// layer. Implementations own the wire protocol, query execution, and
// validation engine; callers only drive the lifecycle and obtain collections.
type Client interface {
	// ID returns the client-assigned identity, unique per handle.
	ID() string

	// Open establishes the connection to the given URI. It must be safe to
	// call again after Close; implementations report progress through the
	// state accessor and the subscribed listeners.
	Open(ctx context.Context, uri string) error

	// Close tears the connection down. The handle stays usable for a later
	// Open with the same URI.
	Close(ctx context.Context) error

	// State returns the current lifecycle state.
	State() State

	// Subscribe registers a listener for lifecycle transitions. Listeners
	// are for observability only and must not influence control flow.
	Subscribe(fn func(Event))

	// Collection returns a handle for the named collection bound to the
	// given schema. The schema is passed through to the engine's model
	// binding and is never introspected by callers.
	Collection(name string, schema *Schema) Collection
}

// CreateOptions controls validation behavior on Create.
type CreateOptions struct {
	// RunValidators enables per-field validator functions.
	RunValidators bool
	// PreSave enables the schema's pre-save hook.
	PreSave bool
}

// UpdateOptions controls FindOneAndUpdate behavior.
type UpdateOptions struct {
	// Upsert inserts a new document when the filter matches nothing.
	Upsert bool
	// ReturnNew returns the post-update document instead of the original.
	ReturnNew bool
	// SetDefaults applies schema defaults to documents created by an upsert.
	SetDefaults bool
	// RunValidators enables per-field validator functions.
	RunValidators bool
}

// Collection is a named, schema-bound document collection on one client.
type Collection interface {
	// Name returns the collection name as registered.
	Name() string

	// Schema returns the schema this collection was bound with.
	Schema() *Schema

	// Find returns all documents matching the filter, in storage order.
	// A nil result with a nil error means no matches.
	Find(ctx context.Context, filter map[string]interface{}) ([]map[string]interface{}, error)

	// FindOne returns the first document matching the filter, or nil with a
	// nil error when nothing matches.
	FindOne(ctx context.Context, filter map[string]interface{}) (map[string]interface{}, error)

	// FindByID returns the document whose identifier equals id, or nil with
	// a nil error when absent.
	FindByID(ctx context.Context, id string) (map[string]interface{}, error)

	// Create inserts the document and returns it as stored, including any
	// schema defaulting applied by the engine.
	Create(ctx context.Context, doc map[string]interface{}, opts CreateOptions) (map[string]interface{}, error)

	// FindOneAndUpdate applies doc to the first document matching filter.
	FindOneAndUpdate(ctx context.Context, filter, doc map[string]interface{}, opts UpdateOptions) (map[string]interface{}, error)

	// DeleteOne removes the first document matching the filter and returns
	// the number of documents removed (0 or 1).
	DeleteOne(ctx context.Context, filter map[string]interface{}) (int64, error)
}
