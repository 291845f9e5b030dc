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

// Package main is the entry point for the docstore service.
//
// docstored serves the document-store REST API over the connections and
// schemas declared in its configuration file:
// - Registers each configured connection in the registry
// - Binds the declared collections with their schemas
// - Optionally attaches a redis DTO cache for id lookups
// - Serves documents, connection health, and metrics over HTTP
//
// Usage:
//
//	./docstored -config /etc/docstore/docstore.yaml
//
// Environment variables referenced in the config file with ${VAR} or
// ${VAR:-default} are expanded at load time.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"meridian/docstore"
	"meridian/docstore/api"
	"meridian/docstore/config"
	"meridian/docstore/conn"
	"meridian/docstore/rediscache"
	"meridian/docstore/shared/logger"
	"meridian/docstore/store"
)

const defaultPort = 8080

func main() {
	configPath := flag.String("config", "docstore.yaml", "path to the configuration file")
	flag.Parse()

	log := logger.New("docstored")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("", "main", "failed to load configuration", map[string]interface{}{
			"path":  *configPath,
			"error": err.Error(),
		})
		os.Exit(1)
	}

	opts := []docstore.Option{docstore.WithLogger(log)}

	if cfg.Lifecycle.PollIntervalMs > 0 || cfg.Lifecycle.MaxWaitMs > 0 {
		opts = append(opts, docstore.WithWaitPolicy(conn.WaitPolicy{
			PollInterval: time.Duration(cfg.Lifecycle.PollIntervalMs) * time.Millisecond,
			MaxWait:      time.Duration(cfg.Lifecycle.MaxWaitMs) * time.Millisecond,
		}))
	}

	if cfg.Cache.Enabled {
		cache, err := rediscache.New(cfg.Cache.RedisURL, cfg.Cache.TTL())
		if err != nil {
			log.Error("", "main", "failed to connect to redis cache", map[string]interface{}{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		defer cache.Close()
		opts = append(opts, docstore.WithCache(cache))
	}

	s := docstore.New(opts...)
	defer s.CloseAll(context.Background())

	if err := registerConnections(s, cfg, log); err != nil {
		log.Error("", "main", "failed to set up connections", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	if len(cfg.Connections) == 0 {
		log.Warn("", "main", "no connections configured, serving an empty registry", nil)
	}

	port := cfg.Server.Port
	if port == 0 {
		port = defaultPort
	}

	server := api.NewServer(s, log, cfg.Server.AllowedOrigins)
	if err := server.ListenAndServe(port); err != nil {
		log.Error("", "main", "server exited", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

// connectionOrder returns the configured connection names with the
// default-flagged one first and the rest sorted. The registry treats
// the first registration as its default, so registration order must be
// deterministic and must honor the flag.
func connectionOrder(conns map[string]config.ConnConfig) []string {
	names := make([]string, 0, len(conns))
	for name := range conns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		di, dj := conns[names[i]].Default, conns[names[j]].Default
		if di != dj {
			return di
		}
		return names[i] < names[j]
	})
	return names
}

// registerConnections registers every configured connection and binds
// its declared collections.
func registerConnections(s *docstore.DocStore, cfg *config.File, log *logger.Logger) error {
	for _, name := range connectionOrder(cfg.Connections) {
		cc := cfg.Connections[name]
		c := s.InitConnection(conn.Options{
			URI:     cc.URL,
			BaseURL: cc.BaseURL,
			Name:    cc.Database,
			Secret:  cc.Secret,
			Extra:   cc.Options,
		})
		if c == nil {
			return fmt.Errorf("failed to register connection %q", name)
		}
		for _, collName := range cc.Collections {
			schema := schemaFromConfig(cfg.Schemas[collName])
			if s.AssignSchema(collName, schema, c) == nil {
				return fmt.Errorf("failed to bind collection %q on connection %q", collName, name)
			}
		}
		log.Info(c.ID(), "main", "connection registered", map[string]interface{}{
			"connection":  name,
			"collections": len(cc.Collections),
		})
	}
	return nil
}

func schemaFromConfig(sc config.SchemaConfig) *store.Schema {
	return &store.Schema{
		Required: sc.Required,
		Defaults: sc.Defaults,
	}
}
