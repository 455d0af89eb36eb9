package translate

import "strings"

// typeNames maps bare Snowflake type tokens to DuckDB types. Matching is
// whole-token, which removes the longest-match-first and lookahead hazards
// of substring rewriting: INT never matches inside INTEGER, TIMESTAMP
// never matches inside TIMESTAMP_NTZ.
var typeNames = map[string]string{
	"TIMESTAMP_NTZ": "TIMESTAMP",
	"TIMESTAMP_LTZ": "TIMESTAMPTZ",
	"TIMESTAMP_TZ":  "TIMESTAMPTZ",
	"DATETIME":      "TIMESTAMP",
	"NUMBER":        "DECIMAL(38,0)",
	"BYTEINT":       "TINYINT",
	"FLOAT4":        "FLOAT",
	"FLOAT8":        "DOUBLE",
	"STRING":        "VARCHAR",
	"TEXT":          "VARCHAR",
	"CHAR":          "VARCHAR",
	"CHARACTER":     "VARCHAR",
	"VARIANT":       "JSON",
	"OBJECT":        "JSON",
	"BINARY":        "BLOB",
	"VARBINARY":     "BLOB",
}

// typeCalls rewrites parameterized type expressions. Precision is carried
// through where DuckDB supports it and dropped where it does not.
var typeCalls = map[string]func(args []string) string{
	"NUMBER": func(args []string) string {
		switch len(args) {
		case 1:
			return "DECIMAL(" + args[0] + ",0)"
		case 2:
			return "DECIMAL(" + args[0] + "," + args[1] + ")"
		default:
			return "DECIMAL(38,0)"
		}
	},
	"NUMERIC": func(args []string) string {
		return "DECIMAL(" + strings.Join(args, ",") + ")"
	},
	"VARCHAR": func(args []string) string {
		return "VARCHAR(" + strings.Join(args, ",") + ")"
	},
	"CHAR": func(args []string) string {
		return "VARCHAR(" + strings.Join(args, ",") + ")"
	},
	"CHARACTER": func(args []string) string {
		return "VARCHAR(" + strings.Join(args, ",") + ")"
	},
	// DuckDB timestamps have no declarable precision.
	"TIMESTAMP_NTZ": func([]string) string { return "TIMESTAMP" },
	"TIMESTAMP_LTZ": func([]string) string { return "TIMESTAMPTZ" },
	"TIMESTAMP_TZ":  func([]string) string { return "TIMESTAMPTZ" },
	"DATETIME":      func([]string) string { return "TIMESTAMP" },
}
