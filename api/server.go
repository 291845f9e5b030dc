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

// Package api exposes the document store over HTTP. The JSON surface
// mirrors the facade's forgiving semantics: a failed lookup and a
// missing document are both a 404, never a 500 with a driver error in
// the body.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"meridian/docstore"
	"meridian/docstore/conn"
	"meridian/docstore/shared/logger"
)

// Server serves the REST surface over a DocStore.
type Server struct {
	store *docstore.DocStore
	log   *logger.Logger

	allowedOrigins []string
}

// NewServer wires the HTTP surface over the store. origins defaults to
// a wildcard when empty.
func NewServer(store *docstore.DocStore, log *logger.Logger, origins []string) *Server {
	if log == nil {
		log = logger.New("api")
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{store: store, log: log, allowedOrigins: origins}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/api/v1/documents", s.listDocumentsHandler).Methods("GET")
	r.HandleFunc("/api/v1/documents", s.createDocumentHandler).Methods("POST")
	r.HandleFunc("/api/v1/documents/search", s.getDocumentHandler).Methods("POST")
	r.HandleFunc("/api/v1/documents/{id}", s.getDocumentByIDHandler).Methods("GET")
	r.HandleFunc("/api/v1/documents/{id}", s.updateDocumentHandler).Methods("PUT")
	r.HandleFunc("/api/v1/documents/{id}", s.deleteDocumentHandler).Methods("DELETE")

	r.HandleFunc("/api/v1/connections", s.listConnectionsHandler).Methods("GET")
	r.HandleFunc("/api/v1/connections/{id}/close", s.closeConnectionHandler).Methods("POST")

	return r
}

// Handler wraps the router with CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(s.Router())
}

// ListenAndServe blocks serving the API on the given port.
func (s *Server) ListenAndServe(port int) error {
	s.log.Info("", "ListenAndServe", "docstore API listening", map[string]interface{}{"port": port})
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.Handler())
}

// connFromRequest picks the registry record the "connection" query
// parameter names; absent means the registry default (nil here, the
// facade resolves it).
func (s *Server) connFromRequest(r *http.Request) *conn.Connection {
	if id := r.URL.Query().Get("connection"); id != "" {
		return s.store.Registry().Lookup(id)
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	connections := map[string]string{}
	for _, c := range s.store.Registry().All() {
		connections[c.ID()] = c.State().String()
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"service":     "docstore",
		"timestamp":   time.Now().UTC(),
		"connections": connections,
	})
}

func (s *Server) listDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	filter := map[string]interface{}{}
	for key, values := range r.URL.Query() {
		if key == "connection" || len(values) == 0 {
			continue
		}
		filter[key] = values[0]
	}
	docs := s.store.ListDocuments(r.Context(), s.connFromRequest(r), filter)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *Server) getDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var filter map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	doc := s.store.GetDocument(r.Context(), s.connFromRequest(r), filter)
	if doc == nil {
		s.writeError(w, http.StatusNotFound, "document not found")
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) getDocumentByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	doc := s.store.GetDocumentByID(r.Context(), s.connFromRequest(r), id)
	if doc == nil {
		s.writeError(w, http.StatusNotFound, "document not found")
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) createDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var doc map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created := s.store.CreateDocument(r.Context(), s.connFromRequest(r), doc)
	if created == nil {
		s.writeError(w, http.StatusBadRequest, "document could not be created")
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var doc map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	doc["id"] = mux.Vars(r)["id"]
	updated := s.store.UpdateDocument(r.Context(), s.connFromRequest(r), doc)
	if updated == nil {
		s.writeError(w, http.StatusBadRequest, "document could not be updated")
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc := map[string]interface{}{
		"id":   mux.Vars(r)["id"],
		"type": r.URL.Query().Get("type"),
	}
	removed := s.store.DeleteDocument(r.Context(), s.connFromRequest(r), doc)
	if removed == nil {
		s.writeError(w, http.StatusBadRequest, "document could not be deleted")
		return
	}
	if !*removed {
		s.writeError(w, http.StatusNotFound, "document not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

func (s *Server) listConnectionsHandler(w http.ResponseWriter, r *http.Request) {
	type connInfo struct {
		ID          string   `json:"id"`
		URL         string   `json:"url"`
		State       string   `json:"state"`
		Collections []string `json:"collections"`
	}
	var out []connInfo
	for _, c := range s.store.Registry().All() {
		var names []string
		for _, coll := range c.Collections() {
			names = append(names, coll.Name())
		}
		out = append(out, connInfo{
			ID:          c.ID(),
			URL:         c.URL(),
			State:       c.State().String(),
			Collections: names,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"connections": out})
}

func (s *Server) closeConnectionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.CloseConnection(r.Context(), id) {
		s.writeError(w, http.StatusNotFound, "unknown connection id")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"closed": id})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("", "writeJSON", "failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{"error": message})
}
