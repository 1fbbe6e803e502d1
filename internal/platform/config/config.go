// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into strongly-typed
Go structs, providing early validation and default values.

Usage:

	cfg, err := config.LoadPortal()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (session store, API client) via constructors.
  - Zero Hidden State: No global variables are used to store config.

Two schemas live here because the module ships two programs: the portal
gateway and the stub university API it talks to during development.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Portal Configuration Schema

// Portal holds all runtime configuration for the portal gateway.
type Portal struct {

	// Server settings
	ServerPort  string `env:"PORTAL_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// BackendURL is the base URL of the university API the portal talks to.
	BackendURL string `env:"BACKEND_URL,required"`

	// SessionFile is the path of the durable session store (the local-storage
	// analog). Ignored when SessionRedisURL is set.
	SessionFile string `env:"SESSION_FILE" envDefault:"./univera-session.json"`

	// SessionRedisURL switches session persistence to Redis when non-empty.
	SessionRedisURL string `env:"SESSION_REDIS_URL"`
}

// # Stub API Configuration Schema

// Stub holds all runtime configuration for the stub university API.
type Stub struct {

	// Server settings
	ServerPort  string `env:"STUB_PORT"    envDefault:"8090"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// DatabaseURL enables the PostgreSQL directory store when non-empty.
	// When unset, the stub serves everything from seeded in-memory data.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// SessionSecret signs the HS256 access tokens.
	SessionSecret string `env:"SESSION_SECRET,required"`
}

// # Configuration Loading

// LoadPortal parses environment variables into a [Portal] struct.
func LoadPortal() (*Portal, error) {

	// Initialize an empty config struct
	cfg := &Portal{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// LoadStub parses environment variables into a [Stub] struct.
func LoadStub() (*Stub, error) {
	cfg := &Stub{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the portal is running in development mode.
func (c *Portal) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the portal is running in production mode.
func (c *Portal) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the stub API is running in development mode.
func (c *Stub) IsDevelopment() bool {
	return c.Environment == "development"
}
