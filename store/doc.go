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

/*
Package store defines the capability surface the document layer consumes
from a storage engine: the Client lifecycle handle, schema-bound Collection
operations, the opaque Schema descriptor, and the typed Error taxonomy.

# Client Lifecycle

A Client moves through the states

	uninitialized -> connecting -> connected -> disconnecting -> disconnected

and may be reopened from disconnected without creating a new handle.
Connecting and disconnecting are transitional; callers are expected to wait
them out rather than issue operations. Lifecycle transitions are published
to subscribed listeners, which exist for observability only.

# Errors

All failures below the public surface are carried as *Error values
classified by Kind. The outer boundary logs them and coerces them to the
soft nil results callers of the historical API expect; callers holding the
typed error can branch with IsKind or errors.As.

The production implementation backed by MongoDB lives in package
mongostore. Tests use lightweight in-memory fakes of these interfaces.
*/
package store
