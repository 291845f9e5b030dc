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

// Package docstore is a multi-connection document-store access layer.
// It manages a registry of named connections, resolves document types to
// schema-bound collections, and exposes a deliberately forgiving CRUD
// surface: operations log their failure and return nil rather than
// propagate errors, so callers treat "absent" and "failed" the same way.
//
// The layered packages underneath keep full error fidelity:
//
//	store      storage-neutral interfaces, states, typed errors
//	mongostore the MongoDB implementation of store
//	conn       the connection registry and lifecycle waiting
//	document   type resolution, fan-out id lookup, DTO shaping
//
// A minimal session:
//
//	s := docstore.New()
//	c := s.InitConnection(conn.Options{URI: "mongodb://localhost/app"})
//	s.AssignSchema("user", &store.Schema{Required: []string{"name"}}, c)
//	created := s.CreateDocument(ctx, c, map[string]interface{}{
//		"type": "user",
//		"name": "ada",
//	})
package docstore
