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
Package logger provides structured JSON logging for document-store
components.

# Overview

The logger outputs one JSON object per line to stdout, making logs easily
consumable by CloudWatch, ELK stack, or other log aggregation systems.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (docstore, api, registry)
  - Instance ID and container name (for distributed tracing)
  - Connection id (which registered connection an operation ran against)
  - Operation name (for correlating soft-nil failures with their cause)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("docstore")

Log a failed operation at the soft-nil boundary:

	log.OpError(conn.ID(), "CreateDocument", doc, err)

The public API surface never hard-fails; OpError is where the typed error
and the offending input get recorded before the historical nil return.
*/
package logger
