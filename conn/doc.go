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
Package conn manages the lifecycle of the process's storage connections.

# Registry

The Registry is the single owner of connection records. Records are keyed
by canonical URL for deduplication and by handle identity for lookup, and
kept in registration order (the first record is the default). There is no
ambient global table: callers hold a *Registry and pass *Connection
handles explicitly.

Registration is idempotent per URL and atomic with respect to the
check-then-insert, so callers racing to register the same target during a
suspension point cannot create duplicate handles.

Closing a connection transitions its handle but deliberately keeps the
record registered. Reopening the same URL therefore works without
re-registration; Acquire performs the reopen lazily.

# Acquire

Acquire is the gate every document operation passes through. It waits out
in-flight transitions by bounded polling (WaitPolicy sets the interval and
the deadline; ctx cancellation is honored throughout), returns immediately
for a connected handle, and lazily opens a disconnected one using the URL
resolved at registration time.
*/
package conn
