package compile

import (
	"fmt"
	"strings"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// Compile resolves all template directives in sql and returns plain SQL.
// model may be nil (ad-hoc preview); when set, recognized config() keys
// are applied to it before any reference resolution, because later steps
// read fields config just set (schema, alias).
func Compile(sql string, model *core.Model, ctx *Context) string {
	return compileSQL(sql, model, ctx, nil)
}

// compileSQL is the recursive core of Compile. inlining carries the
// ephemeral models currently being expanded, so a ref cycle through
// ephemerals terminates instead of recursing forever.
func compileSQL(sql string, model *core.Model, ctx *Context, inlining map[string]bool) string {
	// 1. Extract and apply config() blocks.
	sql = extractConfig(sql, model, ctx)

	// 2. this
	if model != nil {
		sql = replaceExpressions(sql, func(inner string) (string, bool) {
			if inner == "this" {
				return model.RelationName(), true
			}
			return "", false
		})
	}

	// 3. ref()
	sql = replaceExpressions(sql, func(inner string) (string, bool) {
		name, args, ok := parseCall(inner)
		if !ok || name != "ref" {
			return "", false
		}
		return resolveRef(args, ctx, inlining), true
	})

	// 4. source()
	sql = replaceExpressions(sql, func(inner string) (string, bool) {
		name, args, ok := parseCall(inner)
		if !ok || name != "source" {
			return "", false
		}
		return resolveSource(args, ctx), true
	})

	// 5. var()
	sql = replaceExpressions(sql, func(inner string) (string, bool) {
		name, args, ok := parseCall(inner)
		if !ok || name != "var" {
			return "", false
		}
		return resolveVar(args, ctx), true
	})

	// 6. target.<field>
	sql = replaceExpressions(sql, func(inner string) (string, bool) {
		field, ok := strings.CutPrefix(inner, "target.")
		if !ok {
			return "", false
		}
		if v, ok := ctx.target().Field(strings.TrimSpace(field)); ok {
			return v, true
		}
		return "", false
	})

	// 7. env_var()
	sql = replaceExpressions(sql, func(inner string) (string, bool) {
		name, args, ok := parseCall(inner)
		if !ok || name != "env_var" {
			return "", false
		}
		return resolveEnvVar(args, ctx), true
	})

	// 8. {% if %} blocks.
	sql = evalConditionals(sql, model, ctx)

	// 9. Built-in macros.
	sql = expandBuiltins(sql, model, ctx)

	// 10. Strip whatever is left.
	sql = stripRemaining(sql, ctx)

	return strings.TrimSpace(sql)
}

// replaceExpressions walks every {{ ... }} region and offers its trimmed
// inner text to fn. When fn declines, the region is kept verbatim for a
// later pass.
func replaceExpressions(sql string, fn func(inner string) (string, bool)) string {
	var b strings.Builder
	for {
		i := strings.Index(sql, "{{")
		if i < 0 {
			b.WriteString(sql)
			break
		}
		j := strings.Index(sql[i:], "}}")
		if j < 0 {
			b.WriteString(sql)
			break
		}
		inner := strings.TrimSpace(sql[i+2 : i+j])
		b.WriteString(sql[:i])
		if repl, ok := fn(inner); ok {
			b.WriteString(repl)
		} else {
			b.WriteString(sql[i : i+j+2])
		}
		sql = sql[i+j+2:]
	}
	return b.String()
}

// parseCall splits "name(args)" into the call name and raw argument list.
func parseCall(inner string) (string, []string, bool) {
	inner = strings.TrimSpace(inner)
	open := strings.Index(inner, "(")
	if open < 0 || !strings.HasSuffix(inner, ")") {
		return "", nil, false
	}
	name := strings.TrimSpace(inner[:open])
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return "", nil, false
	}
	args := splitCallArgs(inner[open+1 : len(inner)-1])
	return name, args, true
}

// resolveRef resolves ref(name) / ref(project, name). Ephemeral targets
// expand to their compiled SQL; nothing ever materializes them. Unknown
// names degrade to a best-guess identifier in the default namespace.
func resolveRef(args []string, ctx *Context, inlining map[string]bool) string {
	if len(args) == 0 {
		return ""
	}
	name := unquote(args[len(args)-1])
	if m, ok := ctx.Models[name]; ok {
		if m.Materialized == core.MaterializationEphemeral {
			return inlineEphemeral(m, ctx, inlining)
		}
		return m.RelationName()
	}
	ctx.logger().Warn("unresolved ref, using default namespace", "name", name)
	return fmt.Sprintf("%s.%s.%s", ctx.DefaultDatabase, ctx.DefaultSchema, strings.ToUpper(name))
}

// inlineEphemeral substitutes an ephemeral model's compiled SQL for the
// ref as a parenthesized subquery. A cycle falls back to the relation
// name, which at least names the problem in the failing statement.
func inlineEphemeral(m *core.Model, ctx *Context, inlining map[string]bool) string {
	if inlining[m.Name] {
		ctx.logger().Warn("ref cycle through ephemeral model, using relation name", "model", m.Name)
		return m.RelationName()
	}
	next := make(map[string]bool, len(inlining)+1)
	for k := range inlining {
		next[k] = true
	}
	next[m.Name] = true
	return "(" + compileSQL(m.RawSQL, m, ctx, next) + ")"
}

// resolveSource resolves source(sourceName, tableName).
func resolveSource(args []string, ctx *Context) string {
	if len(args) != 2 {
		return ""
	}
	srcName := unquote(args[0])
	tblName := unquote(args[1])

	src, ok := ctx.Sources[srcName]
	if !ok {
		for k, s := range ctx.Sources {
			if strings.EqualFold(k, srcName) {
				src, ok = s, true
				break
			}
		}
	}
	if !ok {
		ctx.logger().Warn("unknown source, assuming raw schema", "source", srcName, "table", tblName)
		return fmt.Sprintf("%s.RAW.%s", ctx.DefaultDatabase, strings.ToUpper(tblName))
	}

	if t, ok := src.Table(tblName); ok {
		return src.RelationName(t)
	}
	// Declared source, undeclared table: trust the caller's name.
	return fmt.Sprintf("%s.%s.%s", src.Database, src.Schema, tblName)
}

// resolveVar resolves var(name) / var(name, default). A missing var with
// no default becomes NULL with an inline diagnostic, never an error.
func resolveVar(args []string, ctx *Context) string {
	if len(args) == 0 {
		return ""
	}
	name := unquote(args[0])
	if v, ok := ctx.Vars[name]; ok {
		return formatVarValue(v)
	}
	if len(args) > 1 {
		return args[1]
	}
	ctx.logger().Warn("undefined var with no default", "name", name)
	return fmt.Sprintf("NULL /* undefined var: %s */", name)
}

func resolveEnvVar(args []string, ctx *Context) string {
	if len(args) == 0 {
		return ""
	}
	name := unquote(args[0])
	if v, ok := ctx.lookupEnv(name); ok {
		return v
	}
	if len(args) > 1 {
		return unquote(args[1])
	}
	return ""
}

// formatVarValue renders a var value for substitution into SQL text.
func formatVarValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		// YAML/JSON numbers arrive as float64; keep integers clean.
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%v", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
