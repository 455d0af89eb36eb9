package compile

import (
	"strings"

	"github.com/snowduck-labs/snowduck/pkg/translate"
)

// splitCallArgs splits directive call arguments on top-level commas.
// It shares the translator's argument parser so nested calls and quoted
// commas behave identically in both layers.
func splitCallArgs(s string) []string {
	return translate.SplitArgs(s)
}

// unquote strips one level of single or double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func isQuoted(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 &&
		((s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"'))
}
