package compile

import (
	"regexp"
	"strings"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// ifBlock is one {% if %} ... {% endif %} region of a template.
type ifBlock struct {
	start, end int
	cond       string
	ifBody     string
	elseBody   string
}

// evalConditionals resolves {% if COND %} A {% else %} B {% endif %}
// blocks, innermost blocks on later iterations. A condition that fails to
// evaluate keeps the if-branch (documented bias).
func evalConditionals(sql string, model *core.Model, ctx *Context) string {
	for {
		blk, ok := findIfBlock(sql)
		if !ok {
			return sql
		}

		cond := substituteCondVars(blk.cond, model, ctx)
		include := true
		if v, err := EvalBool(cond); err == nil {
			include = v
		} else {
			ctx.logger().Warn("condition failed to evaluate, keeping if-branch",
				"condition", blk.cond, "error", err)
		}

		body := blk.ifBody
		if !include {
			body = blk.elseBody
		}
		sql = sql[:blk.start] + body + sql[blk.end:]
	}
}

// findIfBlock locates the first if-block and its matching endif, tracking
// nesting depth so inner blocks stay intact for later passes.
func findIfBlock(sql string) (ifBlock, bool) {
	pos := 0
	for {
		i := strings.Index(sql[pos:], "{%")
		if i < 0 {
			return ifBlock{}, false
		}
		i += pos
		j := strings.Index(sql[i:], "%}")
		if j < 0 {
			return ifBlock{}, false
		}
		tag := strings.TrimSpace(sql[i+2 : i+j])
		tagEnd := i + j + 2
		if cond, ok := strings.CutPrefix(tag, "if "); ok {
			return matchEndif(sql, i, tagEnd, strings.TrimSpace(cond))
		}
		pos = tagEnd
	}
}

func matchEndif(sql string, start, bodyStart int, cond string) (ifBlock, bool) {
	depth := 1
	pos := bodyStart
	elseStart, elseBodyStart := -1, -1

	for {
		i := strings.Index(sql[pos:], "{%")
		if i < 0 {
			return ifBlock{}, false
		}
		i += pos
		j := strings.Index(sql[i:], "%}")
		if j < 0 {
			return ifBlock{}, false
		}
		tag := strings.TrimSpace(sql[i+2 : i+j])
		tagEnd := i + j + 2

		switch {
		case strings.HasPrefix(tag, "if "):
			depth++
		case tag == "endif":
			depth--
			if depth == 0 {
				blk := ifBlock{start: start, end: tagEnd, cond: cond}
				if elseStart >= 0 {
					blk.ifBody = sql[bodyStart:elseStart]
					blk.elseBody = sql[elseBodyStart:i]
				} else {
					blk.ifBody = sql[bodyStart:i]
				}
				return blk, true
			}
		case tag == "else" && depth == 1:
			elseStart = i
			elseBodyStart = tagEnd
		}
		pos = tagEnd
	}
}

var condVarRe = regexp.MustCompile(`var\(\s*'([^']*)'(?:\s*,\s*([^()]*))?\)`)

// substituteCondVars replaces var('k') references and is_incremental()
// inside a condition with literal values before evaluation. Only the var
// map can flow into the evaluator; no host code ever runs.
func substituteCondVars(cond string, model *core.Model, ctx *Context) string {
	cond = condVarRe.ReplaceAllStringFunc(cond, func(match string) string {
		groups := condVarRe.FindStringSubmatch(match)
		name := groups[1]
		if v, ok := ctx.Vars[name]; ok {
			return quoteCondValue(v)
		}
		if groups[2] != "" {
			return strings.TrimSpace(groups[2])
		}
		return "''"
	})

	inc := "false"
	if isIncrementalRun(model, ctx) {
		inc = "true"
	}
	return strings.ReplaceAll(cond, "is_incremental()", inc)
}

func quoteCondValue(v any) string {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	default:
		return formatVarValue(v)
	}
}

func isIncrementalRun(model *core.Model, ctx *Context) bool {
	return model != nil &&
		model.Materialized == core.MaterializationIncremental &&
		!ctx.FullRefresh
}

// expandBuiltins resolves the fixed set of built-in macros.
func expandBuiltins(sql string, model *core.Model, ctx *Context) string {
	return replaceExpressions(sql, func(inner string) (string, bool) {
		if inner == "run_started_at" || strings.HasPrefix(inner, "run_started_at.") {
			return ctx.RunStartedAt.Format("2006-01-02 15:04:05"), true
		}
		if inner == "invocation_id" {
			return ctx.InvocationID, true
		}

		name, args, ok := parseCall(inner)
		if !ok {
			return "", false
		}
		switch {
		case name == "star" || strings.HasSuffix(name, ".star"):
			return "*", true
		case strings.HasPrefix(name, "adapter."):
			return "", true
		case name == "log":
			return "", true
		case name == "return":
			return strings.Join(args, ", "), true
		case name == "is_incremental":
			if isIncrementalRun(model, ctx) {
				return "true", true
			}
			return "false", true
		default:
			return "", false
		}
	})
}

// stripRemaining deletes unrecognized {{ }} expressions (with a warning)
// and all {# #} / {% %} tags.
func stripRemaining(sql string, ctx *Context) string {
	sql = replaceExpressions(sql, func(inner string) (string, bool) {
		ctx.logger().Warn("stripping unrecognized template expression", "expression", inner)
		return "", true
	})
	sql = stripDelimited(sql, "{#", "#}")
	sql = stripDelimited(sql, "{%", "%}")
	return sql
}

func stripDelimited(sql, open, close string) string {
	var b strings.Builder
	for {
		i := strings.Index(sql, open)
		if i < 0 {
			b.WriteString(sql)
			return b.String()
		}
		j := strings.Index(sql[i:], close)
		if j < 0 {
			b.WriteString(sql)
			return b.String()
		}
		b.WriteString(sql[:i])
		sql = sql[i+j+len(close):]
	}
}
