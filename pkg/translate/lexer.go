package translate

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokQuoted
	tokNumber
	tokComment
	tokSpace
	tokSymbol
)

type token struct {
	kind tokenKind
	text string
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isWordPart(c byte) bool {
	return isWordStart(c) || isDigit(c)
}

// lex splits SQL into a flat token stream. The concatenation of all token
// texts reproduces the input exactly.
func lex(sql string) []token {
	var toks []token
	i, n := 0, len(sql)
	for i < n {
		c := sql[i]
		switch {
		case isSpaceByte(c):
			j := i + 1
			for j < n && isSpaceByte(sql[j]) {
				j++
			}
			toks = append(toks, token{tokSpace, sql[i:j]})
			i = j

		case c == '-' && i+1 < n && sql[i+1] == '-':
			j := i + 2
			for j < n && sql[j] != '\n' {
				j++
			}
			toks = append(toks, token{tokComment, sql[i:j]})
			i = j

		case c == '/' && i+1 < n && sql[i+1] == '*':
			j := i + 2
			for j+1 < n && !(sql[j] == '*' && sql[j+1] == '/') {
				j++
			}
			if j+1 < n {
				j += 2
			} else {
				j = n
			}
			toks = append(toks, token{tokComment, sql[i:j]})
			i = j

		case c == '\'':
			// Single-quoted literal; '' escapes a quote.
			j := i + 1
			for j < n {
				if sql[j] == '\'' {
					if j+1 < n && sql[j+1] == '\'' {
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			toks = append(toks, token{tokString, sql[i:j]})
			i = j

		case c == '"':
			j := i + 1
			for j < n && sql[j] != '"' {
				j++
			}
			if j < n {
				j++
			}
			toks = append(toks, token{tokQuoted, sql[i:j]})
			i = j

		case isDigit(c):
			j := i + 1
			for j < n && (isDigit(sql[j]) || sql[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, sql[i:j]})
			i = j

		case isWordStart(c):
			j := i + 1
			for j < n && isWordPart(sql[j]) {
				j++
			}
			toks = append(toks, token{tokWord, sql[i:j]})
			i = j

		default:
			toks = append(toks, token{tokSymbol, sql[i : i+1]})
			i++
		}
	}
	return toks
}
