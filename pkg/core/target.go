package core

// Target describes the connection profile exposed to templates as
// {{ target.* }}. Credentials are deliberately not part of this type.
type Target struct {
	Name      string
	Type      string
	Database  string
	Schema    string
	Warehouse string
	Role      string
}

// DefaultTarget returns the target used when none is configured.
func DefaultTarget() *Target {
	return &Target{
		Name:     "dev",
		Type:     "duckdb",
		Database: "snowduck",
		Schema:   "main",
	}
}

// Field resolves a target.<field> template reference.
// Unknown fields resolve to "" and the second return value is false.
func (t *Target) Field(name string) (string, bool) {
	switch name {
	case "name":
		return t.Name, true
	case "type":
		return t.Type, true
	case "database":
		return t.Database, true
	case "schema":
		return t.Schema, true
	case "warehouse":
		return t.Warehouse, true
	case "role":
		return t.Role, true
	default:
		return "", false
	}
}
