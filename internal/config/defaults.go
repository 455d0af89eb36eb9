package config

// Default configuration values.
const (
	DefaultModelsDir    = "models"
	DefaultSeedsDir     = "seeds"
	DefaultSnapshotsDir = "snapshots"
	DefaultTestsDir     = "tests"
	DefaultStateFile    = "snowduck_state.db"
	DefaultEnvironment  = "dev"
	DefaultDatabase     = "snowduck"
)

// ApplyDefaults fills in defaults for any unset Config fields.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.SeedsDir == "" {
		c.SeedsDir = DefaultSeedsDir
	}
	if c.SnapshotsDir == "" {
		c.SnapshotsDir = DefaultSnapshotsDir
	}
	if c.TestsDir == "" {
		c.TestsDir = DefaultTestsDir
	}
	if c.StatePath == "" {
		c.StatePath = DefaultStateFile
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
}

// ApplyTargetDefaults fills in defaults for any unset TargetConfig
// fields based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = "duckdb"
	}
	if t.Database == "" {
		t.Database = DefaultDatabase
	}
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
}

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	switch dbType {
	case "snowflake":
		return "PUBLIC"
	default:
		return "main"
	}
}
