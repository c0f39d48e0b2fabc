// Package config provides environment-variable configuration loading and
// validation utilities shared by the services that sit outside the knowledge-graph
// mapping core (bootstrap scripts, ingestion workers, server processes). The core
// mapping package never reads the environment itself; callers use this package to
// assemble the explicit config structs the core accepts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfig provides utilities for loading configuration from environment variables.
type EnvConfig struct {
	prefix string // Optional prefix for all environment variables
}

// NewEnvConfig creates a new environment configuration loader.
func NewEnvConfig(prefix string) *EnvConfig {
	return &EnvConfig{prefix: prefix}
}

// GetString retrieves a string value from environment with optional default.
func (ec *EnvConfig) GetString(key, defaultValue string) string {
	fullKey := ec.buildKey(key)
	if value := os.Getenv(fullKey); value != "" {
		return value
	}
	return defaultValue
}

// MustGetString retrieves a required string value from environment or panics.
func (ec *EnvConfig) MustGetString(key string) string {
	fullKey := ec.buildKey(key)
	value := os.Getenv(fullKey)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s not set", fullKey))
	}
	return value
}

// GetInt retrieves an integer value from environment with optional default.
func (ec *EnvConfig) GetInt(key string, defaultValue int) int {
	fullKey := ec.buildKey(key)
	if value := os.Getenv(fullKey); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from environment with optional default.
func (ec *EnvConfig) GetBool(key string, defaultValue bool) bool {
	fullKey := ec.buildKey(key)
	if value := os.Getenv(fullKey); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetDuration retrieves a duration value from environment with optional default.
func (ec *EnvConfig) GetDuration(key string, defaultValue time.Duration) time.Duration {
	fullKey := ec.buildKey(key)
	if value := os.Getenv(fullKey); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func (ec *EnvConfig) buildKey(key string) string {
	if ec.prefix != "" {
		return ec.prefix + "_" + key
	}
	return key
}

// GraphConfig mirrors the fields graphdb.Config needs to dial the database. It is
// intentionally a plain struct (not graphdb.Config itself) so this package does
// not have to import the core to stay a pure outer-layer concern; graphdb's
// ConfigFromEnv adapts one of these into its own Config.
type GraphConfig struct {
	URI                  string
	Username             string
	Password             string
	EmbeddingDimensions  int
	EffectiveSearchRatio int
	RootSpaceID          string
}

// LoadGraphConfig loads the Neo4j connection parameters an outer layer (a CLI
// bootstrap, an ingestion worker) needs to construct a graphdb.Driver. Defaults
// match a local development Neo4j instance.
func LoadGraphConfig(prefix string) GraphConfig {
	env := NewEnvConfig(prefix)
	return GraphConfig{
		URI:                  env.GetString("NEO4J_URI", "bolt://localhost:7687"),
		Username:             env.GetString("NEO4J_USER", "neo4j"),
		Password:             env.GetString("NEO4J_PASSWORD", "password"),
		EmbeddingDimensions:  env.GetInt("EMBEDDING_DIMENSIONS", 384),
		EffectiveSearchRatio: env.GetInt("EFFECTIVE_SEARCH_RATIO", 10),
		RootSpaceID:          env.GetString("ROOT_SPACE_ID", "root"),
	}
}

// Validator provides configuration validation utilities.
type Validator struct {
	errors []string
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{errors: make([]string, 0)}
}

// RequireString validates that a string field is not empty.
func (v *Validator) RequireString(field, value string) {
	if value == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required", field))
	}
}

// RequirePositiveInt validates that an integer field is positive.
func (v *Validator) RequirePositiveInt(field string, value int) {
	if value <= 0 {
		v.errors = append(v.errors, fmt.Sprintf("%s must be positive", field))
	}
}

// RequireURL validates that a string looks like a connection URL.
func (v *Validator) RequireURL(field, value string, schemes ...string) {
	if value == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required", field))
		return
	}
	for _, scheme := range schemes {
		if strings.HasPrefix(value, scheme) {
			return
		}
	}
	v.errors = append(v.errors, fmt.Sprintf("%s must start with one of %v", field, schemes))
}

// IsValid returns true if there are no validation errors.
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []string {
	return v.errors
}

// Validate runs validation and returns an error if invalid.
func (v *Validator) Validate() error {
	if !v.IsValid() {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(v.errors, "; "))
	}
	return nil
}

// Validate checks a GraphConfig for obviously missing fields. Outer layers call
// this before constructing a graphdb.Driver.
func (c GraphConfig) Validate() error {
	v := NewValidator()
	v.RequireURL("NEO4J_URI", c.URI, "bolt://", "bolt+s://", "neo4j://", "neo4j+s://")
	v.RequireString("NEO4J_USER", c.Username)
	v.RequirePositiveInt("EMBEDDING_DIMENSIONS", c.EmbeddingDimensions)
	v.RequirePositiveInt("EFFECTIVE_SEARCH_RATIO", c.EffectiveSearchRatio)
	v.RequireString("ROOT_SPACE_ID", c.RootSpaceID)
	return v.Validate()
}
