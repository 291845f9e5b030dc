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
	"time"

	"meridian/docstore/store"
)

const (
	// DefaultPollInterval is how often a transitional state is re-checked.
	DefaultPollInterval = 1 * time.Second
	// DefaultMaxWait bounds the total time spent waiting out transitional
	// states before Acquire gives up.
	DefaultMaxWait = 30 * time.Second
)

// WaitPolicy controls how Acquire waits out a connection stuck in a
// transitional state. A zero MaxWait means wait without bound (the ctx
// deadline still applies).
type WaitPolicy struct {
	PollInterval time.Duration
	MaxWait      time.Duration
}

// DefaultWaitPolicy returns the standard poll interval and deadline.
func DefaultWaitPolicy() WaitPolicy {
	return WaitPolicy{PollInterval: DefaultPollInterval, MaxWait: DefaultMaxWait}
}

func (p WaitPolicy) normalized() WaitPolicy {
	if p.PollInterval <= 0 {
		p.PollInterval = DefaultPollInterval
	}
	return p
}

// Acquire brings a connection into a usable state and returns it. With a
// nil connection the registry default is used; no default at all is a
// ConnectionUnavailable failure.
//
// A handle mid-transition (connecting or disconnecting) is polled at the
// policy interval until it settles, bounded by the policy MaxWait and by
// ctx. A connected handle returns immediately. A disconnected or
// never-opened handle is opened with the record's own resolved URL,
// awaited to completion; open failures come back as ConnectionOpenFailed
// wrapping the driver cause.
func (r *Registry) Acquire(ctx context.Context, c *Connection, policy WaitPolicy) (*Connection, error) {
	if c == nil {
		c = r.Default()
	}
	if c == nil {
		return nil, store.E(store.KindConnectionUnavailable, "Acquire",
			"no connection supplied and no default registered", nil)
	}

	policy = policy.normalized()

	if c.State().Transitional() {
		start := time.Now()
		err := waitSettled(ctx, c, policy)
		promLifecycleWait.Observe(float64(time.Since(start).Milliseconds()))
		if err != nil {
			return nil, err
		}
	}

	if c.State() == store.Connected {
		return c, nil
	}

	// Disconnected or uninitialized: reopen with the record's own URL.
	// The record mutex serializes racing callers; the losers block here
	// and find the handle already connected on recheck.
	c.openMu.Lock()
	defer c.openMu.Unlock()
	if c.State() == store.Connected {
		return c, nil
	}

	if err := c.client.Open(ctx, c.url); err != nil {
		promConnectionOpens.WithLabelValues("error").Inc()
		if store.IsKind(err, store.KindConnectionOpenFailed) {
			return nil, err
		}
		return nil, store.E(store.KindConnectionOpenFailed, "Acquire", "open failed", err)
	}
	promConnectionOpens.WithLabelValues("success").Inc()
	return c, nil
}

// waitSettled polls until the handle leaves its transitional state.
func waitSettled(ctx context.Context, c *Connection, policy WaitPolicy) error {
	var deadline <-chan time.Time
	if policy.MaxWait > 0 {
		timer := time.NewTimer(policy.MaxWait)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(policy.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return store.E(store.KindConnectionUnavailable, "Acquire",
				"canceled while waiting for state "+c.State().String(), ctx.Err())
		case <-deadline:
			return store.E(store.KindConnectionUnavailable, "Acquire",
				"gave up waiting for transitional state "+c.State().String(), nil)
		case <-ticker.C:
			if c.State().Settled() {
				return nil
			}
		}
	}
}
