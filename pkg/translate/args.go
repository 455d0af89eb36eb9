package translate

import "strings"

// SplitArgs splits the argument text of a function call on top-level
// commas, respecting nested parentheses and brackets, single-quoted
// literals and double-quoted identifiers. Naive comma-splitting breaks on
// nested calls like NVL(IFF(a, b, c), d); this does not.
//
// The template compiler shares this helper for parsing ref(), source(),
// var() and config() arguments.
func SplitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var args []string
	depth := 0
	inString := false
	inIdent := false
	start := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			if c == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					i++ // escaped quote
				} else {
					inString = false
				}
			}
		case inIdent:
			if c == '"' {
				inIdent = false
			}
		case c == '\'':
			inString = true
		case c == '"':
			inIdent = true
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	args = append(args, strings.TrimSpace(s[start:]))
	return args
}

// unquote strips a single level of single quotes from a SQL string literal
// and unescapes doubled quotes. Returns s unchanged if it is not quoted.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// isStringLiteral reports whether s is a single-quoted SQL literal.
func isStringLiteral(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

// isNumericLiteral reports whether s is a bare integer literal.
func isNumericLiteral(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
