// Package config loads project configuration from snowduck.yaml, the
// environment, and CLI flags. It is decoupled from command wiring so the
// engine and tooling can load a project without pulling in cobra.
package config

import (
	"fmt"
	"strings"

	"github.com/snowduck-labs/snowduck/internal/adapter"
	"github.com/snowduck-labs/snowduck/pkg/core"
)

// TargetConfig holds the connection settings for one named target.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb

	// Path is the database file for file-based backends. Empty or
	// ":memory:" means an in-memory database.
	Path string `koanf:"path"`

	// Database is the logical database (catalog) name used to qualify
	// relations.
	Database string `koanf:"database"`

	// Schema is the default schema models build into.
	Schema string `koanf:"schema"`

	// Warehouse and Role are carried for targets that understand them
	// and exposed to templates via target.warehouse / target.role.
	Warehouse string `koanf:"warehouse"`
	Role      string `koanf:"role"`

	// Options carries driver-specific settings.
	Options map[string]string `koanf:"options"`
}

// Validate checks the target against the adapter registry.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	for _, name := range adapter.List() {
		if name == strings.ToLower(t.Type) {
			return nil
		}
	}
	return &adapter.UnknownAdapterError{Type: t.Type, Available: adapter.List()}
}

// ToTarget converts the config to the template-facing target under the
// given name.
func (t *TargetConfig) ToTarget(name string) core.Target {
	return core.Target{
		Name:      name,
		Type:      t.Type,
		Database:  t.Database,
		Schema:    t.Schema,
		Warehouse: t.Warehouse,
		Role:      t.Role,
	}
}

// AdapterConfig converts the config to the connection settings the
// adapter layer consumes.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     strings.ToLower(t.Type),
		Path:     t.Path,
		Database: t.Database,
		Schema:   t.Schema,
		Options:  t.Options,
	}
}

// Config is the full project configuration.
type Config struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`

	ModelsDir    string `koanf:"models_dir"`
	SeedsDir     string `koanf:"seeds_dir"`
	SnapshotsDir string `koanf:"snapshots_dir"`
	TestsDir     string `koanf:"tests_dir"`

	// StatePath is the SQLite file holding run history.
	StatePath string `koanf:"state_path"`

	// Environment selects which entry of Targets to run against.
	Environment string `koanf:"environment"`

	// Vars are project variables available to var() in templates.
	Vars map[string]any `koanf:"vars"`

	// Target is the base target; per-environment entries in Targets are
	// merged over it.
	Target  *TargetConfig            `koanf:"target"`
	Targets map[string]*TargetConfig `koanf:"targets"`

	Verbose bool `koanf:"verbose"`

	// ProjectRoot is the directory all relative paths resolve against.
	// Set by the loader, never read from the file.
	ProjectRoot string `koanf:"-"`
}

// ActiveTarget resolves the target for the selected environment: the
// base target merged with the environment's override, with defaults
// applied.
func (c *Config) ActiveTarget() *TargetConfig {
	t := c.Target
	if c.Targets != nil {
		if override, ok := c.Targets[c.Environment]; ok {
			t = MergeTargetConfig(t, override)
		}
	}
	if t == nil {
		t = &TargetConfig{}
	}
	ApplyTargetDefaults(t)
	return t
}

// MergeTargetConfig merges two target configs, with override taking
// precedence field by field.
func MergeTargetConfig(base, override *TargetConfig) *TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Options = make(map[string]string)
	for k, v := range base.Options {
		merged.Options[k] = v
	}

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Path != "" {
		merged.Path = override.Path
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}
	if override.Warehouse != "" {
		merged.Warehouse = override.Warehouse
	}
	if override.Role != "" {
		merged.Role = override.Role
	}
	for k, v := range override.Options {
		merged.Options[k] = v
	}

	return &merged
}
