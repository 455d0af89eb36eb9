package engine

import "strings"

// SplitStatements splits a SQL script on semicolons that sit outside
// string literals, quoted identifiers and comments. Blank fragments are
// dropped.
func SplitStatements(script string) []string {
	var stmts []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			stmts = append(stmts, s)
		}
		b.Reset()
	}

	i := 0
	for i < len(script) {
		c := script[i]
		switch {
		case c == '\'' || c == '"':
			quote := c
			b.WriteByte(c)
			i++
			for i < len(script) {
				b.WriteByte(script[i])
				if script[i] == quote {
					// Doubled quote is an escape inside the literal.
					if quote == '\'' && i+1 < len(script) && script[i+1] == '\'' {
						i++
						b.WriteByte(script[i])
					} else {
						break
					}
				}
				i++
			}
			i++

		case c == '-' && i+1 < len(script) && script[i+1] == '-':
			for i < len(script) && script[i] != '\n' {
				b.WriteByte(script[i])
				i++
			}

		case c == '/' && i+1 < len(script) && script[i+1] == '*':
			end := strings.Index(script[i+2:], "*/")
			if end < 0 {
				b.WriteString(script[i:])
				i = len(script)
			} else {
				b.WriteString(script[i : i+2+end+2])
				i += 2 + end + 2
			}

		case c == ';':
			flush()
			i++

		default:
			b.WriteByte(c)
			i++
		}
	}
	flush()
	return stmts
}
