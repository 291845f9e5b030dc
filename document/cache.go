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

import "context"

// Cache is an optional read-through DTO cache for id lookups. A nil
// Cache on Access disables caching entirely; cache errors are treated
// as misses and never fail the operation.
type Cache interface {
	Get(ctx context.Context, id string) (map[string]interface{}, bool, error)
	Set(ctx context.Context, id string, dto map[string]interface{}) error
	Invalidate(ctx context.Context, id string) error
}
