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
	"meridian/docstore/store"
)

// applyDefaults fills absent fields from the schema defaults, in place.
func applyDefaults(doc map[string]interface{}, schema *store.Schema) {
	if schema == nil {
		return
	}
	for field, value := range schema.Defaults {
		if _, present := doc[field]; !present {
			doc[field] = value
		}
	}
}

// checkRequired verifies every required field is present and non-nil.
// Only full documents are checked; partial update payloads skip this.
func checkRequired(doc map[string]interface{}, schema *store.Schema) error {
	if schema == nil {
		return nil
	}
	for _, field := range schema.Required {
		if v, present := doc[field]; !present || v == nil {
			return store.E(store.KindInvalidArgument, "validate",
				"missing required field "+field, nil)
		}
	}
	return nil
}

// runFieldValidators runs per-field validators over the fields present in
// doc. Absent fields are not validated, which keeps partial updates legal.
func runFieldValidators(doc map[string]interface{}, schema *store.Schema) error {
	if schema == nil {
		return nil
	}
	for field, validate := range schema.Validators {
		value, present := doc[field]
		if !present {
			continue
		}
		if err := validate(value); err != nil {
			return store.E(store.KindInvalidArgument, "validate",
				"field "+field+" rejected", err)
		}
	}
	return nil
}

// runPreSave invokes the schema's pre-save hook, which may mutate doc.
func runPreSave(doc map[string]interface{}, schema *store.Schema) error {
	if schema == nil || schema.PreSave == nil {
		return nil
	}
	if err := schema.PreSave(doc); err != nil {
		return store.E(store.KindInvalidArgument, "validate", "pre-save hook rejected document", err)
	}
	return nil
}
