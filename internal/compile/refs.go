package compile

import "regexp"

// Single-name form ref('x') and project-qualified ref('proj', 'x'); the
// dependency edge always records the model name (last argument).
var refRe = regexp.MustCompile(`ref\(\s*['"]([^'"]+)['"]\s*(?:,\s*['"]([^'"]+)['"]\s*)?\)`)

// ExtractRefs scans raw model SQL for ref() call literals and returns the
// referenced model names in first-seen order, deduplicated. This is how
// depends_on edges are derived; it runs on the raw SQL, before any
// compilation.
func ExtractRefs(raw string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range refRe.FindAllStringSubmatch(raw, -1) {
		name := m[1]
		if m[2] != "" {
			name = m[2]
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
