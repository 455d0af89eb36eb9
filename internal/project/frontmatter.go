// Package project discovers a project on disk - model SQL files, schema
// YAML, seeds, snapshots and singular tests - and registers everything in
// a catalog for the engine to run.
package project

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// frontmatterPattern matches a /*--- ... ---*/ block at the top of a SQL
// file.
var frontmatterPattern = regexp.MustCompile(`(?s)^\s*/\*---\s*\n(.*?)\s*---\*/`)

// splitFrontmatter separates an embedded YAML config block from the SQL
// that follows it. found is false when the file has no block.
func splitFrontmatter(content string) (yamlPart, sqlPart string, found bool) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) < 2 {
		return "", content, false
	}
	sqlPart = strings.TrimSpace(frontmatterPattern.ReplaceAllString(content, ""))
	return matches[1], sqlPart, true
}

// snapshotConfig is the frontmatter block of a snapshot SQL file.
type snapshotConfig struct {
	Name        string   `yaml:"name"`
	Database    string   `yaml:"database"`
	Schema      string   `yaml:"schema"`
	Strategy    string   `yaml:"strategy"`
	UniqueKey   string   `yaml:"unique_key"`
	UpdatedAt   string   `yaml:"updated_at"`
	CheckCols   []string `yaml:"check_cols"`
	HardDeletes bool     `yaml:"hard_deletes"`
}

// parseSnapshotFile parses a snapshot file into a core.Snapshot. The
// frontmatter block is required: a snapshot without strategy and
// unique_key cannot run.
func parseSnapshotFile(content, defaultName, defaultDatabase string) (*core.Snapshot, error) {
	yamlPart, sqlPart, found := splitFrontmatter(content)
	if !found {
		return nil, fmt.Errorf("snapshot %s has no /*--- ---*/ config block", defaultName)
	}

	var cfg snapshotConfig
	if err := yaml.Unmarshal([]byte(yamlPart), &cfg); err != nil {
		return nil, fmt.Errorf("invalid snapshot config: %w", err)
	}

	s := &core.Snapshot{
		Name:        cfg.Name,
		Database:    cfg.Database,
		Schema:      cfg.Schema,
		Strategy:    core.SnapshotStrategy(cfg.Strategy),
		UniqueKey:   cfg.UniqueKey,
		UpdatedAt:   cfg.UpdatedAt,
		CheckCols:   cfg.CheckCols,
		HardDeletes: cfg.HardDeletes,
		RawSQL:      sqlPart,
	}
	if s.Name == "" {
		s.Name = defaultName
	}
	if s.Database == "" {
		s.Database = defaultDatabase
	}
	if s.Schema == "" {
		s.Schema = "snapshots"
	}
	return s, nil
}

// testConfig is the optional frontmatter block of a singular test file.
type testConfig struct {
	Name     string `yaml:"name"`
	Severity string `yaml:"severity"`
}

// parseSingularTestFile parses a singular test file. The frontmatter
// block is optional; without it the test is named after the file and
// fails with error severity.
func parseSingularTestFile(content, defaultName string) (*core.Test, error) {
	yamlPart, sqlPart, found := splitFrontmatter(content)

	cfg := testConfig{}
	if found {
		if err := yaml.Unmarshal([]byte(yamlPart), &cfg); err != nil {
			return nil, fmt.Errorf("invalid test config: %w", err)
		}
	}

	name := cfg.Name
	if name == "" {
		name = defaultName
	}
	severity := core.SeverityError
	switch strings.ToLower(cfg.Severity) {
	case "":
	case "error":
	case "warn":
		severity = core.SeverityWarn
	default:
		return nil, fmt.Errorf("unknown severity %q in test %s", cfg.Severity, name)
	}

	return &core.Test{
		Name:     name,
		UniqueID: "test." + name,
		Kind:     core.TestKindSingular,
		SQL:      sqlPart,
		Severity: severity,
	}, nil
}
