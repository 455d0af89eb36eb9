package core

import (
	"fmt"
	"time"
)

// NodeStatus tracks the lifecycle of a model within a run.
type NodeStatus string

const (
	NodeStatusPending NodeStatus = "pending"
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
)

// Model represents a named, schema-qualified unit of SQL.
//
// DependsOn and CompiledSQL are recomputed on every run: var and target
// context can change between runs, so they are never cached stale.
type Model struct {
	// UniqueID is stable for the model's lifetime and is the sole foreign
	// key used by RunResult and the docs manifest.
	UniqueID string
	// Name is the model name as referenced by ref().
	Name     string
	Database string
	Schema   string
	// Alias overrides Name in the physical relation name when set.
	Alias string
	// Materialized defines the build strategy for this model.
	Materialized Materialization
	// RawSQL is the templated model body as declared.
	RawSQL string
	// CompiledSQL is the output of the last template compile.
	CompiledSQL string
	// DependsOn holds upstream model names discovered from ref() calls.
	DependsOn []string
	Tags      []string
	// Meta captures every parsed config() key, recognized or not.
	Meta        map[string]any
	Description string

	// Run bookkeeping.
	Status       NodeStatus
	LastError    string
	LastRunAt    time.Time
	ExecutionMS  int64
	RowsAffected int64
}

// RelationName returns the fully-qualified physical name, preferring the
// alias when one is set.
func (m *Model) RelationName() string {
	name := m.Name
	if m.Alias != "" {
		name = m.Alias
	}
	return fmt.Sprintf("%s.%s.%s", m.Database, m.Schema, name)
}

// UniqueKey returns the unique_key config value for incremental models,
// or "" when none was configured.
func (m *Model) UniqueKey() string {
	if m.Meta == nil {
		return ""
	}
	if v, ok := m.Meta["unique_key"].(string); ok {
		return v
	}
	return ""
}

// HasTag reports whether the model carries the given tag.
func (m *Model) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
