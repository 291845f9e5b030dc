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

// Package mongostore implements the store.Client and store.Collection
// capabilities on top of the official MongoDB Go driver.
//
// The driver exposes no transitional ready states, so the client keeps the
// lifecycle state machine itself: Open moves the handle through connecting
// to connected (publishing events along the way), Close through
// disconnecting to disconnected, and a closed handle can be reopened
// without being recreated.
//
// Schema enforcement (required fields, defaults, per-field validators, the
// pre-save hook) runs client-side before writes reach the server, which is
// where the delegated validation engine of the document layer lives.
package mongostore
