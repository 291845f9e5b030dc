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

// Package document implements type-driven document operations on top of
// the connection registry. A document's "type" field selects which bound
// collection it lives in; id lookups that carry no type fan out across
// every collection on the connection and pick the earliest-bound match.
//
// Operations return documents as map DTOs with the storage "_id"
// surfaced as "id" and internal fields stripped. Errors are typed
// (package store); this layer never swallows them.
package document
