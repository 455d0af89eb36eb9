package compile

import (
	"strconv"
	"strings"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// extractConfig strips every {{ config(...) }} block from sql and applies
// the parsed key=value pairs to model. All parsed keys, recognized or
// not, are merged into the model's metadata.
func extractConfig(sql string, model *core.Model, ctx *Context) string {
	return replaceExpressions(sql, func(inner string) (string, bool) {
		name, args, ok := parseCall(inner)
		if !ok || name != "config" {
			return "", false
		}
		cfg := parseConfigArgs(args)
		if model != nil {
			applyConfig(model, cfg, ctx)
		}
		return "", true
	})
}

// parseConfigArgs parses key=value pairs: quoted strings, bare words,
// true/false, numbers and [a, b] lists.
func parseConfigArgs(args []string) map[string]any {
	cfg := make(map[string]any, len(args))
	for _, arg := range args {
		eq := strings.Index(arg, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(arg[:eq])
		cfg[key] = parseConfigValue(strings.TrimSpace(arg[eq+1:]))
	}
	return cfg
}

func parseConfigValue(s string) any {
	switch {
	case isQuoted(s):
		return unquote(s)
	case strings.EqualFold(s, "true"):
		return true
	case strings.EqualFold(s, "false"):
		return false
	case len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']':
		items := splitCallArgs(s[1 : len(s)-1])
		list := make([]any, 0, len(items))
		for _, it := range items {
			list = append(list, parseConfigValue(it))
		}
		return list
	default:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
		return s
	}
}

// applyConfig applies recognized config keys to the model and merges the
// full map into its metadata.
func applyConfig(model *core.Model, cfg map[string]any, ctx *Context) {
	for key, val := range cfg {
		switch key {
		case "materialized":
			s, _ := val.(string)
			if mat, ok := core.ParseMaterialization(s); ok {
				model.Materialized = mat
			} else {
				ctx.logger().Warn("unknown materialization, keeping current",
					"model", model.Name, "value", val)
			}
		case "schema":
			if s, ok := val.(string); ok && s != "" {
				model.Schema = strings.ToUpper(s)
			}
		case "alias":
			if s, ok := val.(string); ok && s != "" {
				model.Alias = s
			}
		case "tags":
			model.Tags = appendTags(model.Tags, val)
		}
	}

	if model.Meta == nil {
		model.Meta = make(map[string]any, len(cfg))
	}
	for k, v := range cfg {
		model.Meta[k] = v
	}
}

// appendTags accepts a single tag string or a list of tags, deduplicated.
func appendTags(tags []string, val any) []string {
	add := func(t string) {
		for _, existing := range tags {
			if existing == t {
				return
			}
		}
		tags = append(tags, t)
	}
	switch v := val.(type) {
	case string:
		add(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	return tags
}
