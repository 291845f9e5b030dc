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

// Package rediscache provides a redis-backed DTO cache for id lookups.
// Entries are JSON-encoded and expire after a configurable TTL; the
// access layer treats every cache failure as a miss, so a flaky redis
// degrades to uncached reads instead of failed ones.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"meridian/docstore/document"
)

// DefaultTTL is how long a cached DTO stays valid without invalidation.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "docstore:dto:"

// Cache implements document.Cache on a redis connection pool.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ document.Cache = (*Cache)(nil)

// New connects to the redis instance at redisURL (redis://host:port/db)
// and verifies it with a ping. A non-positive ttl falls back to
// DefaultTTL.
func New(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Get returns the cached DTO for id, reporting whether it was present.
func (c *Cache) Get(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var dto map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return nil, false, err
	}
	return dto, true, nil
}

// Set stores the DTO under id for the configured TTL.
func (c *Cache) Set(ctx context.Context, id string, dto map[string]interface{}) error {
	data, err := json.Marshal(dto)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+id, data, c.ttl).Err()
}

// Invalidate drops the cached DTO for id, if any.
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, keyPrefix+id).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
