// Package config loads idtk settings from the environment.
//
// Every setting has a default, so an empty environment yields a usable
// Config. Command line flags override the values loaded here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/dshills/idtk/pkg/subtoken"
)

const (
	// DefaultDBDir is the default location for the index database
	DefaultDBDir = "~/.idtk"
	// DBFileName is the database file created inside the database directory
	DBFileName = "idtk.db"
)

var validate = validator.New()

// Config holds runtime settings
type Config struct {
	// DBPath is the directory holding the index database. A leading "~" is expanded.
	DBPath string `env:"IDTK_DB_PATH" envDefault:"~/.idtk" validate:"required"`

	// MaxDepth caps generic nesting when parsing type descriptors
	MaxDepth int `env:"IDTK_MAX_DEPTH" envDefault:"64" validate:"gte=1,lte=4096"`

	// CacheSize is the number of parsed descriptors kept in memory. 0 disables caching.
	CacheSize int `env:"IDTK_CACHE_SIZE" envDefault:"10000" validate:"gte=0"`

	// Workers is the number of files indexed concurrently. 0 means one per CPU.
	Workers int `env:"IDTK_WORKERS" envDefault:"0" validate:"gte=0,lte=256"`

	// BatchSize is the number of files written per transaction while indexing
	BatchSize int `env:"IDTK_BATCH_SIZE" envDefault:"20" validate:"gte=1,lte=1000"`

	ExpandContractions bool   `env:"IDTK_EXPAND_CONTRACTIONS" envDefault:"true"`
	SubPolicy          string `env:"IDTK_SUB_POLICY" envDefault:"concatenate" validate:"oneof=concatenate expand"`
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints. Call it again after applying overrides.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Policy returns the configured sub particle policy
func (c *Config) Policy() subtoken.Policy {
	p, err := subtoken.ParsePolicy(c.SubPolicy)
	if err != nil {
		return subtoken.Concatenate
	}
	return p
}

// DBFile returns the database file path, creating its directory if needed
func (c *Config) DBFile() (string, error) {
	dir := c.DBPath
	if dir == "" || dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		if dir == "" {
			dir = DefaultDBDir
		}
		dir = filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(dir, "~"), "/"))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	return filepath.Join(dir, DBFileName), nil
}
