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

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

// TestNew tests logger initialization
func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		component      string
		instanceID     string
		expectedComp   string
		expectedInstID string
	}{
		{
			name:           "with instance ID set",
			component:      "test-component",
			instanceID:     "instance-123",
			expectedComp:   "test-component",
			expectedInstID: "instance-123",
		},
		{
			name:           "without instance ID",
			component:      "docstore",
			instanceID:     "",
			expectedComp:   "docstore",
			expectedInstID: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.instanceID != "" {
				if err := os.Setenv("INSTANCE_ID", tt.instanceID); err != nil {
					t.Fatalf("Failed to set INSTANCE_ID: %v", err)
				}
				defer func() {
					if err := os.Unsetenv("INSTANCE_ID"); err != nil {
						t.Errorf("Failed to unset INSTANCE_ID: %v", err)
					}
				}()
			} else {
				if err := os.Unsetenv("INSTANCE_ID"); err != nil {
					t.Fatalf("Failed to unset INSTANCE_ID: %v", err)
				}
			}

			logger := New(tt.component)

			if logger.Component != tt.expectedComp {
				t.Errorf("Expected component %s, got %s", tt.expectedComp, logger.Component)
			}

			if logger.InstanceID != tt.expectedInstID {
				t.Errorf("Expected instance ID %s, got %s", tt.expectedInstID, logger.InstanceID)
			}

			if logger.Container == "" {
				t.Error("Expected container to be set from hostname")
			}
		})
	}
}

// captureEntry runs fn with log output captured and returns the parsed entry
func captureEntry(t *testing.T, fn func()) LogEntry {
	t.Helper()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	fn()

	output := buf.String()
	jsonStart := strings.Index(output, "{")
	if jsonStart == -1 {
		t.Fatalf("No JSON found in log output: %s", output)
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(output[jsonStart:])), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v\nOutput: %s", err, output)
	}
	return entry
}

// TestLogLevels tests all log level methods
func TestLogLevels(t *testing.T) {
	tests := []struct {
		name       string
		logFunc    func(*Logger, string, string, string, map[string]interface{})
		level      LogLevel
		message    string
		connection string
		op         string
		fields     map[string]interface{}
	}{
		{
			name:       "Info log",
			logFunc:    (*Logger).Info,
			level:      INFO,
			message:    "connection registered",
			connection: "conn-123",
			op:         "Register",
			fields:     map[string]interface{}{"url": "mongodb://localhost/app"},
		},
		{
			name:       "Error log",
			logFunc:    (*Logger).Error,
			level:      ERROR,
			message:    "create failed",
			connection: "conn-789",
			op:         "CreateDocument",
			fields:     map[string]interface{}{"type": "user"},
		},
		{
			name:       "Warn log",
			logFunc:    (*Logger).Warn,
			level:      WARN,
			message:    "acquire wait exceeded one poll",
			connection: "conn-abc",
			op:         "Acquire",
			fields:     nil,
		},
		{
			name:       "Debug log",
			logFunc:    (*Logger).Debug,
			level:      DEBUG,
			message:    "fan-out probe",
			connection: "conn-xyz",
			op:         "GetByID",
			fields:     map[string]interface{}{"collections": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New("test-component")
			entry := captureEntry(t, func() {
				tt.logFunc(logger, tt.connection, tt.op, tt.message, tt.fields)
			})

			if entry.Level != tt.level {
				t.Errorf("Expected level %s, got %s", tt.level, entry.Level)
			}
			if entry.Message != tt.message {
				t.Errorf("Expected message '%s', got '%s'", tt.message, entry.Message)
			}
			if entry.Connection != tt.connection {
				t.Errorf("Expected connection '%s', got '%s'", tt.connection, entry.Connection)
			}
			if entry.Op != tt.op {
				t.Errorf("Expected op '%s', got '%s'", tt.op, entry.Op)
			}
			if entry.Component != "test-component" {
				t.Errorf("Expected component 'test-component', got '%s'", entry.Component)
			}

			if _, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err != nil {
				t.Errorf("Invalid timestamp format: %s", entry.Timestamp)
			}

			for key := range tt.fields {
				if _, ok := entry.Fields[key]; !ok {
					t.Errorf("Expected field '%s' not found", key)
				}
			}
		})
	}
}

// TestOpError tests the soft-nil boundary logging hook
func TestOpError(t *testing.T) {
	logger := New("docstore")
	entry := captureEntry(t, func() {
		logger.OpError("conn-1", "GetDocumentByID", map[string]interface{}{"id": ""}, errors.New("empty id"))
	})

	if entry.Level != ERROR {
		t.Errorf("Expected ERROR level, got %s", entry.Level)
	}
	if entry.Op != "GetDocumentByID" {
		t.Errorf("Expected op GetDocumentByID, got %s", entry.Op)
	}
	if entry.Fields["error"] != "empty id" {
		t.Errorf("Expected error field, got %v", entry.Fields["error"])
	}
	if _, ok := entry.Fields["input"]; !ok {
		t.Error("Expected offending input to be recorded")
	}
}

// TestInfoWithDuration tests the duration convenience helper
func TestInfoWithDuration(t *testing.T) {
	logger := New("docstore")
	entry := captureEntry(t, func() {
		logger.InfoWithDuration("conn-1", "List", "list complete", 12.5, nil)
	})

	if entry.Fields["duration_ms"] != 12.5 {
		t.Errorf("Expected duration_ms 12.5, got %v", entry.Fields["duration_ms"])
	}
}
