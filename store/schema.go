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

// FieldValidator checks a single field value before a write.
type FieldValidator func(value interface{}) error

// PreSaveHook runs against the full internal document before it is stored.
// It may mutate the document in place.
type PreSaveHook func(doc map[string]interface{}) error

// Schema describes the shape of documents in a collection. The connection
// and document layers treat it as an opaque value (identity check only);
// the storage implementation consumes it for defaulting and validation.
type Schema struct {
	// Required lists fields that must be present and non-nil on create.
	Required []string

	// Defaults maps field names to values applied when the field is absent
	// on create or on upsert-insert.
	Defaults map[string]interface{}

	// Validators maps field names to per-field validator functions, run
	// when write options enable them.
	Validators map[string]FieldValidator

	// PreSave is invoked before create when enabled by write options.
	PreSave PreSaveHook
}
