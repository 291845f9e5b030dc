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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meridian/docstore/store"
)

// quickPolicy keeps lifecycle tests fast; production defaults poll at
// one-second granularity.
func quickPolicy() WaitPolicy {
	return WaitPolicy{PollInterval: 5 * time.Millisecond, MaxWait: 250 * time.Millisecond}
}

func TestAcquire_NoDefault(t *testing.T) {
	r := NewRegistry((&mockDialer{}).dial, nil)

	_, err := r.Acquire(context.Background(), nil, quickPolicy())
	require.Error(t, err)
	assert.True(t, store.IsKind(err, store.KindConnectionUnavailable))
}

func TestAcquire_NilUsesDefault(t *testing.T) {
	client := newMockClient()
	client.setState(store.Connected)
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{URI: "mongodb://db/primary"})
	require.NoError(t, err)

	got, err := r.Acquire(context.Background(), nil, quickPolicy())
	require.NoError(t, err)
	assert.Same(t, rec, got)
}

func TestAcquire_ConnectedReturnsImmediately(t *testing.T) {
	client := newMockClient()
	client.setState(store.Connected)
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{URI: "mongodb://db/app"})
	require.NoError(t, err)

	got, err := r.Acquire(context.Background(), rec, quickPolicy())
	require.NoError(t, err)
	assert.Same(t, rec, got)
	assert.Equal(t, int32(0), client.openCount.Load(), "connected handle must not be reopened")
}

func TestAcquire_ReopensWithRecordURL(t *testing.T) {
	client := newMockClient()
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{BaseURL: "mongodb://db", Name: "app"})
	require.NoError(t, err)
	client.setState(store.Disconnected)

	got, err := r.Acquire(context.Background(), rec, quickPolicy())
	require.NoError(t, err)
	assert.Same(t, rec, got)
	assert.Equal(t, int32(1), client.openCount.Load())
	assert.Equal(t, rec.URL(), client.lastURI)
	assert.Equal(t, store.Connected, client.State())
}

func TestAcquire_OpenFailureWrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	client := newMockClient()
	client.openErr = cause
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{URI: "mongodb://unreachable/app"})
	require.NoError(t, err)

	_, err = r.Acquire(context.Background(), rec, quickPolicy())
	require.Error(t, err)
	assert.True(t, store.IsKind(err, store.KindConnectionOpenFailed))
	assert.True(t, errors.Is(err, cause))
}

func TestAcquire_WaitsOutTransitionalState(t *testing.T) {
	client := newMockClient()
	client.setState(store.Connecting)
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{URI: "mongodb://db/app"})
	require.NoError(t, err)

	// Flip to connected after a few poll intervals have elapsed.
	go func() {
		time.Sleep(25 * time.Millisecond)
		client.setState(store.Connected)
	}()

	start := time.Now()
	got, err := r.Acquire(context.Background(), rec, quickPolicy())
	require.NoError(t, err)
	assert.Same(t, rec, got)
	assert.Equal(t, int32(0), client.openCount.Load(), "settled-connected handle must not be reopened")
	assert.Less(t, time.Since(start), 200*time.Millisecond, "should return promptly once settled")
}

func TestAcquire_TransitionalSettlesDisconnected(t *testing.T) {
	client := newMockClient()
	client.setState(store.Disconnecting)
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{URI: "mongodb://db/app"})
	require.NoError(t, err)

	go func() {
		time.Sleep(15 * time.Millisecond)
		client.setState(store.Disconnected)
	}()

	// Settling into disconnected triggers a reopen.
	_, err = r.Acquire(context.Background(), rec, quickPolicy())
	require.NoError(t, err)
	assert.Equal(t, int32(1), client.openCount.Load())
	assert.Equal(t, rec.URL(), client.lastURI)
}

func TestAcquire_ConcurrentCallersOpenOnce(t *testing.T) {
	client := newMockClient()
	client.setState(store.Disconnected)
	client.openDelay = 30 * time.Millisecond
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{URI: "mongodb://db/app"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Acquire(context.Background(), rec, quickPolicy())
			assert.NoError(t, err)
			assert.Same(t, rec, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), client.openCount.Load(), "one record gets exactly one open")
	assert.Equal(t, store.Connected, client.State())
}

func TestAcquire_MaxWaitExpires(t *testing.T) {
	client := newMockClient()
	client.setState(store.Connecting)
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{URI: "mongodb://db/app"})
	require.NoError(t, err)

	policy := WaitPolicy{PollInterval: 5 * time.Millisecond, MaxWait: 30 * time.Millisecond}
	_, err = r.Acquire(context.Background(), rec, policy)
	require.Error(t, err)
	assert.True(t, store.IsKind(err, store.KindConnectionUnavailable))
}

func TestAcquire_ContextCancellation(t *testing.T) {
	client := newMockClient()
	client.setState(store.Connecting)
	d := &mockDialer{clients: []*mockClient{client}}
	r := NewRegistry(d.dial, nil)

	rec, err := r.Register(Options{URI: "mongodb://db/app"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	// Unbounded MaxWait; only the ctx can end the wait.
	policy := WaitPolicy{PollInterval: 5 * time.Millisecond, MaxWait: 0}
	_, err = r.Acquire(ctx, rec, policy)
	require.Error(t, err)
	assert.True(t, store.IsKind(err, store.KindConnectionUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWaitPolicy_Normalized(t *testing.T) {
	p := WaitPolicy{}.normalized()
	assert.Equal(t, DefaultPollInterval, p.PollInterval)
	assert.Equal(t, time.Duration(0), p.MaxWait, "zero MaxWait stays unbounded")

	p = WaitPolicy{PollInterval: 2 * time.Second, MaxWait: time.Minute}.normalized()
	assert.Equal(t, 2*time.Second, p.PollInterval)
	assert.Equal(t, time.Minute, p.MaxWait)
}
