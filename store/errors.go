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

import "errors"

// Kind classifies an Error for callers that branch on failure class rather
// than message text.
type Kind int

const (
	// KindInvalidArgument covers missing or malformed identifiers, types,
	// schemas, and connection handles.
	KindInvalidArgument Kind = iota
	// KindUnsupportedType means no registered collection matched the
	// requested logical type.
	KindUnsupportedType
	// KindConnectionUnavailable means no connection could be resolved at
	// all (none supplied, none registered).
	KindConnectionUnavailable
	// KindConnectionOpenFailed means an open attempt was made and failed.
	KindConnectionOpenFailed
	// KindStorageFailed wraps an underlying query or write error.
	KindStorageFailed
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnsupportedType:
		return "unsupported_type"
	case KindConnectionUnavailable:
		return "connection_unavailable"
	case KindConnectionOpenFailed:
		return "connection_open_failed"
	case KindStorageFailed:
		return "storage_failed"
	default:
		return "unknown"
	}
}

// Error is the typed failure carried from the inner layers up to the
// logging boundary. The public surface coerces it to its historical nil
// return; nothing below the boundary discards the cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Cause != nil {
		msg += " (cause: " + e.Cause.Error() + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// E builds an Error.
func E(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
