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
	"encoding/json"
	"log"
	"os"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// Logger provides structured logging for document-store components
type Logger struct {
	Component  string
	InstanceID string
	Container  string
}

// LogEntry represents a structured log entry. Connection carries the
// connection id an operation ran against, Op the operation name.
type LogEntry struct {
	Timestamp  string                 `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Component  string                 `json:"component"`
	InstanceID string                 `json:"instance_id"`
	Container  string                 `json:"container"`
	Connection string                 `json:"connection,omitempty"`
	Op         string                 `json:"op,omitempty"`
	Message    string                 `json:"message"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new Logger for the specified component
func New(component string) *Logger {
	// Get instance ID from environment (set during deployment)
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}

	// Get container name from hostname
	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
	}
}

// Log creates a structured log entry and writes it to stdout
func (l *Logger) Log(level LogLevel, connection, op, message string, fields map[string]interface{}) {
	entry := LogEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Level:      level,
		Component:  l.Component,
		InstanceID: l.InstanceID,
		Container:  l.Container,
		Connection: connection,
		Op:         op,
		Message:    message,
		Fields:     fields,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		log.Printf("ERROR: Failed to marshal log entry: %v", err)
		return
	}

	// Write JSON log to stdout (Docker will capture this)
	log.Println(string(jsonBytes))
}

// Info logs an informational message
func (l *Logger) Info(connection, op, message string, fields map[string]interface{}) {
	l.Log(INFO, connection, op, message, fields)
}

// Error logs an error message
func (l *Logger) Error(connection, op, message string, fields map[string]interface{}) {
	l.Log(ERROR, connection, op, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(connection, op, message string, fields map[string]interface{}) {
	l.Log(WARN, connection, op, message, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(connection, op, message string, fields map[string]interface{}) {
	l.Log(DEBUG, connection, op, message, fields)
}

// OpError logs a failed operation together with its offending input and
// the underlying cause. This is the soft-nil boundary's logging hook.
func (l *Logger) OpError(connection, op string, input interface{}, err error) {
	fields := map[string]interface{}{}
	if input != nil {
		fields["input"] = input
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(connection, op, "operation failed", fields)
}

// InfoWithDuration logs an info message with duration field
func (l *Logger) InfoWithDuration(connection, op, message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(connection, op, message, fields)
}
