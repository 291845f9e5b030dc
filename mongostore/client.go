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

package mongostore

import (
	"context"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"meridian/docstore/store"
)

const (
	// DefaultTimeout is the default operation timeout
	DefaultTimeout = 30 * time.Second
	// DefaultConnectTimeout is the default connection timeout
	DefaultConnectTimeout = 10 * time.Second
	// DefaultMaxPoolSize is the default maximum connection pool size
	DefaultMaxPoolSize = 100
	// DefaultMinPoolSize is the default minimum connection pool size
	DefaultMinPoolSize = 10
	// DefaultDatabase is used when neither the options nor the URI name one.
	DefaultDatabase = "test"
)

// Client implements store.Client on top of the official MongoDB driver.
// The driver does not surface transitional ready states, so the client
// tracks the lifecycle state machine itself and publishes transitions to
// subscribed listeners.
type Client struct {
	id      string
	opts    map[string]interface{}
	timeout time.Duration

	state  atomic.Int32
	opened atomic.Bool // at least one successful Open, drives the reconnected event

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
	dbName string

	listenerMu sync.RWMutex
	listeners  []func(store.Event)

	logger *log.Logger
}

// Dial creates an unopened client handle. The opts map carries driver
// options (pool sizes, timeouts, database name); the connection URI is
// supplied later through Open.
func Dial(opts map[string]interface{}) (store.Client, error) {
	return NewClient(opts), nil
}

// NewClient creates an unopened client with the given driver options.
func NewClient(opts map[string]interface{}) *Client {
	if opts == nil {
		opts = map[string]interface{}{}
	}
	c := &Client{
		id:      uuid.NewString(),
		opts:    opts,
		timeout: DefaultTimeout,
		logger:  log.New(os.Stdout, "[DOCSTORE_MONGO] ", log.LstdFlags),
	}
	if val, ok := opts["timeout"].(string); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.timeout = d
		}
	}
	c.state.Store(int32(store.Uninitialized))
	return c
}

// ID returns the handle identity assigned at creation.
func (c *Client) ID() string {
	return c.id
}

// State returns the current lifecycle state.
func (c *Client) State() store.State {
	return store.State(c.state.Load())
}

// Subscribe registers a lifecycle listener. Listeners run synchronously on
// the transitioning goroutine and must not block.
func (c *Client) Subscribe(fn func(store.Event)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Client) emit(ev store.Event) {
	c.listenerMu.RLock()
	listeners := make([]func(store.Event), len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

func (c *Client) setState(s store.State, ev store.Event) {
	c.state.Store(int32(s))
	c.emit(ev)
}

// Open connects to MongoDB at the given URI and verifies the connection
// with a ping. Reopening a closed handle is supported; the second and
// later successful opens publish a reconnected event.
func (c *Client) Open(ctx context.Context, uri string) error {
	if uri == "" {
		return store.E(store.KindInvalidArgument, "Open", "empty connection URI", nil)
	}

	c.setState(store.Connecting, store.EventConnecting)

	clientOpts := options.Client().ApplyURI(uri)

	maxPoolSize := uint64(DefaultMaxPoolSize)
	minPoolSize := uint64(DefaultMinPoolSize)
	if val, ok := c.opts["max_pool_size"].(float64); ok {
		maxPoolSize = uint64(val)
	}
	if val, ok := c.opts["min_pool_size"].(float64); ok {
		minPoolSize = uint64(val)
	}
	clientOpts.SetMaxPoolSize(maxPoolSize)
	clientOpts.SetMinPoolSize(minPoolSize)

	connectTimeout := DefaultConnectTimeout
	if val, ok := c.opts["connect_timeout"].(string); ok {
		if d, err := time.ParseDuration(val); err == nil {
			connectTimeout = d
		}
	}
	clientOpts.SetConnectTimeout(connectTimeout)

	if val, ok := c.opts["server_selection_timeout"].(string); ok {
		if d, err := time.ParseDuration(val); err == nil {
			clientOpts.SetServerSelectionTimeout(d)
		}
	}

	appName := "meridian-docstore"
	if name, ok := c.opts["app_name"].(string); ok {
		appName = name
	}
	clientOpts.SetAppName(appName)
	clientOpts.SetRetryWrites(true)
	clientOpts.SetRetryReads(true)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		c.setState(store.Disconnected, store.EventDisconnected)
		return store.E(store.KindConnectionOpenFailed, "Open", "failed to connect to MongoDB", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		c.setState(store.Disconnected, store.EventDisconnected)
		return store.E(store.KindConnectionOpenFailed, "Open", "failed to ping MongoDB", err)
	}

	dbName := databaseName(c.opts, uri)

	c.mu.Lock()
	prev := c.client
	c.client = client
	c.dbName = dbName
	c.db = client.Database(dbName)
	c.mu.Unlock()

	// A repeated Open must not leak the previous driver pool.
	if prev != nil {
		_ = prev.Disconnect(ctx)
	}

	if c.opened.Swap(true) {
		c.setState(store.Connected, store.EventReconnected)
	} else {
		c.setState(store.Connected, store.EventConnected)
	}

	c.logger.Printf("Connected to MongoDB (database=%s, max_pool=%d)", dbName, maxPoolSize)
	return nil
}

// Close disconnects the driver client. The handle remains reusable: a
// later Open brings it back to connected.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.db = nil
	c.mu.Unlock()

	if client == nil {
		c.setState(store.Disconnected, store.EventDisconnected)
		c.emit(store.EventClose)
		return nil
	}

	c.setState(store.Disconnecting, store.EventDisconnecting)

	disconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := client.Disconnect(disconnectCtx)
	c.setState(store.Disconnected, store.EventDisconnected)
	c.emit(store.EventClose)

	if err != nil {
		return store.E(store.KindStorageFailed, "Close", "failed to disconnect", err)
	}
	c.logger.Printf("Disconnected from MongoDB (database=%s)", c.dbName)
	return nil
}

// Collection returns a schema-bound collection handle. The handle is valid
// across reopen cycles; it resolves the driver collection per call.
func (c *Client) Collection(name string, schema *store.Schema) store.Collection {
	return &Collection{client: c, name: name, schema: schema}
}

func (c *Client) database() *mongo.Database {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// databaseName resolves the database from explicit options first and the
// URI path second.
func databaseName(opts map[string]interface{}, uri string) string {
	if name, ok := opts["database"].(string); ok && name != "" {
		return name
	}
	if u, err := url.Parse(uri); err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return DefaultDatabase
}
