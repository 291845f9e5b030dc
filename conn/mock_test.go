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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"meridian/docstore/store"
)

var mockSeq atomic.Int64

// mockClient implements store.Client for testing. State is settable from
// the test to simulate transitional phases.
type mockClient struct {
	id        string
	state     atomic.Int32
	openErr   error
	openDelay time.Duration
	openCount atomic.Int32
	lastURI   string

	mu        sync.Mutex
	listeners []func(store.Event)
}

func newMockClient() *mockClient {
	m := &mockClient{id: fmt.Sprintf("mock-%d", mockSeq.Add(1))}
	m.state.Store(int32(store.Uninitialized))
	return m
}

func (m *mockClient) ID() string { return m.id }

func (m *mockClient) State() store.State {
	return store.State(m.state.Load())
}

func (m *mockClient) setState(s store.State) {
	m.state.Store(int32(s))
}

func (m *mockClient) Open(ctx context.Context, uri string) error {
	m.openCount.Add(1)
	if m.openErr != nil {
		return m.openErr
	}
	if m.openDelay > 0 {
		m.setState(store.Connecting)
		time.Sleep(m.openDelay)
	}
	m.lastURI = uri
	m.setState(store.Connected)
	return nil
}

func (m *mockClient) Close(ctx context.Context) error {
	m.setState(store.Disconnected)
	m.emit(store.EventClose)
	return nil
}

func (m *mockClient) Subscribe(fn func(store.Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *mockClient) emit(ev store.Event) {
	m.mu.Lock()
	listeners := append([]func(store.Event){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (m *mockClient) Collection(name string, schema *store.Schema) store.Collection {
	return &mockCollection{name: name, schema: schema}
}

// mockCollection is a minimal store.Collection; conn tests only need
// identity, not behavior.
type mockCollection struct {
	name   string
	schema *store.Schema
}

func (m *mockCollection) Name() string          { return m.name }
func (m *mockCollection) Schema() *store.Schema { return m.schema }

func (m *mockCollection) Find(ctx context.Context, filter map[string]interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (m *mockCollection) FindOne(ctx context.Context, filter map[string]interface{}) (map[string]interface{}, error) {
	return nil, nil
}

func (m *mockCollection) FindByID(ctx context.Context, id string) (map[string]interface{}, error) {
	return nil, nil
}

func (m *mockCollection) Create(ctx context.Context, doc map[string]interface{}, opts store.CreateOptions) (map[string]interface{}, error) {
	return doc, nil
}

func (m *mockCollection) FindOneAndUpdate(ctx context.Context, filter, doc map[string]interface{}, opts store.UpdateOptions) (map[string]interface{}, error) {
	return doc, nil
}

func (m *mockCollection) DeleteOne(ctx context.Context, filter map[string]interface{}) (int64, error) {
	return 0, nil
}

// mockDialer returns a DialFunc handing out the provided clients in
// order, tracking how often it was invoked.
type mockDialer struct {
	clients []*mockClient
	calls   atomic.Int32
}

func (d *mockDialer) dial(opts map[string]interface{}) (store.Client, error) {
	n := int(d.calls.Add(1)) - 1
	if n < len(d.clients) {
		return d.clients[n], nil
	}
	return newMockClient(), nil
}
