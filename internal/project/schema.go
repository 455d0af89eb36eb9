package project

// schema.go - Parsing of schema YAML files found alongside models. A
// schema file declares sources, model documentation and column tests.

import (
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// schemaFile mirrors the on-disk YAML layout.
type schemaFile struct {
	Version int         `yaml:"version"`
	Sources []sourceDef `yaml:"sources"`
	Models  []modelDef  `yaml:"models"`
}

type sourceDef struct {
	Name          string        `yaml:"name"`
	Database      string        `yaml:"database"`
	Schema        string        `yaml:"schema"`
	LoadedAtField string        `yaml:"loaded_at_field"`
	Freshness     *freshnessDef `yaml:"freshness"`
	Tables        []tableDef    `yaml:"tables"`
}

type freshnessDef struct {
	WarnAfter  string `yaml:"warn_after"`
	ErrorAfter string `yaml:"error_after"`
}

type tableDef struct {
	Name        string      `yaml:"name"`
	Identifier  string      `yaml:"identifier"`
	Description string      `yaml:"description"`
	Columns     []columnDef `yaml:"columns"`
}

type modelDef struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Columns     []columnDef `yaml:"columns"`
}

type columnDef struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Tests       []testDef `yaml:"tests"`
}

// testDef is one entry of a column's tests list. It accepts both the
// bare string form ("unique") and the parameterized map form
// ({accepted_values: {values: [...]}}).
type testDef struct {
	Kind     string
	Values   []string
	To       string
	Field    string
	Severity string
}

// testDefParams carries the parameterized form's body.
type testDefParams struct {
	Values   []string `yaml:"values"`
	To       string   `yaml:"to"`
	Field    string   `yaml:"field"`
	Severity string   `yaml:"severity"`
}

func (t *testDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&t.Kind)
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: test must be a name or a single-key mapping", node.Line)
	}

	if err := node.Content[0].Decode(&t.Kind); err != nil {
		return err
	}
	var p testDefParams
	if err := node.Content[1].Decode(&p); err != nil {
		return fmt.Errorf("line %d: invalid %s test parameters: %w", node.Line, t.Kind, err)
	}
	t.Values = p.Values
	t.To = p.To
	t.Field = p.Field
	t.Severity = p.Severity
	return nil
}

// parseSchemaFile parses one schema YAML document.
func parseSchemaFile(content []byte) (*schemaFile, error) {
	var f schemaFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	return &f, nil
}

// toSource converts a source declaration, defaulting database and schema
// from the project target.
func (s *sourceDef) toSource(defaultDatabase string) (*core.Source, error) {
	src := &core.Source{
		Name:          s.Name,
		Database:      s.Database,
		Schema:        s.Schema,
		LoadedAtField: s.LoadedAtField,
	}
	if src.Database == "" {
		src.Database = defaultDatabase
	}
	if src.Schema == "" {
		src.Schema = s.Name
	}

	if s.Freshness != nil {
		var err error
		if src.WarnAfter, err = parseFreshness(s.Freshness.WarnAfter); err != nil {
			return nil, fmt.Errorf("source %s: %w", s.Name, err)
		}
		if src.ErrorAfter, err = parseFreshness(s.Freshness.ErrorAfter); err != nil {
			return nil, fmt.Errorf("source %s: %w", s.Name, err)
		}
	}

	for _, t := range s.Tables {
		table := core.SourceTable{
			Name:        t.Name,
			Identifier:  t.Identifier,
			Description: t.Description,
		}
		for _, c := range t.Columns {
			table.Columns = append(table.Columns, core.ColumnDoc{
				Name:        c.Name,
				Description: c.Description,
			})
		}
		src.Tables = append(src.Tables, table)
	}
	return src, nil
}

// parseFreshness parses a freshness window like "12h" or "2h30m".
func parseFreshness(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid freshness window %q: %w", s, err)
	}
	return d, nil
}

// refPattern matches a ref('name') relationship target.
var refPattern = regexp.MustCompile(`^ref\(\s*'([^']+)'\s*\)$`)

// relationshipTarget resolves the "to" field of a relationships test,
// accepting either a bare model name or ref('name').
func relationshipTarget(to string) string {
	if m := refPattern.FindStringSubmatch(to); m != nil {
		return m[1]
	}
	return to
}
