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

package document

// toDTO copies a stored document into its outward shape: the storage
// "_id" becomes "id", and internal bookkeeping fields never leave the
// access layer.
func toDTO(doc map[string]interface{}) map[string]interface{} {
	if doc == nil {
		return nil
	}
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		switch k {
		case "_id", "__v", "active", "type":
			continue
		}
		out[k] = v
	}
	if id, ok := doc["_id"]; ok {
		out["id"] = id
	}
	return out
}

func toDTOs(docs []map[string]interface{}) []map[string]interface{} {
	if docs == nil {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDTO(doc))
	}
	return out
}

// documentType pulls the collection-selecting type field out of a
// filter or payload.
func documentType(m map[string]interface{}) string {
	if m == nil {
		return ""
	}
	if t, ok := m["type"].(string); ok {
		return t
	}
	return ""
}

// documentID accepts both the outward "id" and the storage-form "_id"
// key; the outward form wins when both are present.
func documentID(m map[string]interface{}) string {
	if m == nil {
		return ""
	}
	if v, ok := m["id"].(string); ok && v != "" {
		return v
	}
	if v, ok := m["_id"].(string); ok && v != "" {
		return v
	}
	return ""
}
