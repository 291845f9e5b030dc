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

import (
	"meridian/docstore/conn"
	"meridian/docstore/store"
)

// Resolve maps a document type name to the collection bound under that
// name on the given connection. Matching is case-insensitive and the
// earliest binding wins, mirroring Connection.Collection.
func Resolve(typeName string, c *conn.Connection) (store.Collection, error) {
	if typeName == "" {
		return nil, store.E(store.KindInvalidArgument, "Resolve", "empty document type", nil)
	}
	if c == nil {
		return nil, store.E(store.KindInvalidArgument, "Resolve", "nil connection", nil)
	}
	coll, ok := c.Collection(typeName)
	if !ok {
		return nil, store.E(store.KindUnsupportedType, "Resolve",
			"no collection bound for type "+typeName, nil)
	}
	return coll, nil
}
