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

// Package config loads docstore service configuration from YAML files.
// Environment variable references in the file, ${VAR} or ${VAR:-default}
// or plain $VAR, are expanded before parsing.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the root structure of a configuration file.
type File struct {
	Version     string                  `yaml:"version"`
	Server      ServerConfig            `yaml:"server,omitempty"`
	Cache       CacheConfig             `yaml:"cache,omitempty"`
	Lifecycle   LifecycleConfig         `yaml:"lifecycle,omitempty"`
	Connections map[string]ConnConfig   `yaml:"connections,omitempty"`
	Schemas     map[string]SchemaConfig `yaml:"schemas,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// CacheConfig configures the optional redis DTO cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	RedisURL   string `yaml:"redis_url,omitempty"`
	TTLSeconds int    `yaml:"ttl_seconds,omitempty"`
}

// TTL returns the configured entry lifetime, zero meaning "use the
// cache default".
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// LifecycleConfig bounds how long operations wait out transitional
// connection states.
type LifecycleConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms,omitempty"`
	MaxWaitMs      int `yaml:"max_wait_ms,omitempty"`
}

// ConnConfig describes one registry target. Either a full URL, or a
// base URL plus database name; the secret never appears in the resolved
// connection string.
type ConnConfig struct {
	URL         string                 `yaml:"url,omitempty"`
	BaseURL     string                 `yaml:"base_url,omitempty"`
	Database    string                 `yaml:"database,omitempty"`
	Secret      string                 `yaml:"secret,omitempty"`
	Default     bool                   `yaml:"default,omitempty"`
	Collections []string               `yaml:"collections,omitempty"`
	Options     map[string]interface{} `yaml:"options,omitempty"`
}

// SchemaConfig is the declarative subset of a collection schema: which
// fields must be present and which get defaulted. Validators and
// pre-save hooks are code, not configuration.
type SchemaConfig struct {
	Required []string               `yaml:"required,omitempty"`
	Defaults map[string]interface{} `yaml:"defaults,omitempty"`
}

// Load reads, env-expands, parses, and validates the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var f File
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the structural invariants a loaded file must satisfy.
func (f *File) Validate() error {
	if f.Version == "" {
		return fmt.Errorf("config file must specify a version")
	}
	defaults := 0
	for name, cc := range f.Connections {
		if cc.URL == "" && cc.BaseURL == "" {
			return fmt.Errorf("connection '%s' must specify url or base_url", name)
		}
		if cc.Default {
			defaults++
		}
		for _, coll := range cc.Collections {
			if _, ok := f.Schemas[coll]; !ok {
				return fmt.Errorf("connection '%s' references undefined schema '%s'", name, coll)
			}
		}
	}
	if defaults > 1 {
		return fmt.Errorf("at most one connection may be marked default")
	}
	return nil
}

// envVarRegex matches ${VAR_NAME} or $VAR_NAME patterns
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		// Handle default values: ${VAR_NAME:-default}
		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultVal
	})
}
