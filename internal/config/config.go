// Package config loads the sessiondoc configuration file.
//
// Configuration is YAML on disk, decoded strictly (unknown fields are
// rejected) and then validated against an embedded CUE schema. A missing
// file is not an error; defaults apply field by field, so a file only
// needs the settings it wants to change.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// ErrInvalidConfig indicates a configuration file that parsed but failed
// schema validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full sessiondoc configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" json:"store"`
	Limits LimitsConfig `yaml:"limits" json:"limits"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// StoreConfig selects and addresses the backing document store.
type StoreConfig struct {
	// URI is a scheme://instance/partition connection string, e.g.
	// memory://local/default or sqlite://var/sessions.
	URI string `yaml:"uri" json:"uri"`
}

// LimitsConfig tunes batching and paging bounds.
type LimitsConfig struct {
	DeleteBatchSize int `yaml:"delete_batch_size" json:"delete_batch_size"`
	EventPageSize   int `yaml:"event_page_size" json:"event_page_size"`
}

// LogConfig controls the process-wide slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store:  StoreConfig{URI: "memory://local/default"},
		Limits: LimitsConfig{DeleteBatchSize: 50, EventPageSize: 100},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads, decodes, and validates the configuration at path. An empty
// path returns Default() unvalidated; a nonexistent file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate unifies a configuration with the embedded CUE schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("schema has no #Config: %w", err)
	}

	unified := def.Unify(ctx.Encode(cfg))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SlogLevel translates the configured level name for handler setup.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
