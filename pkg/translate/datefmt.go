package translate

import "strings"

// dateFormatTokens maps Snowflake date-format tokens to strptime
// directives. Ordered longest-first so HH24 wins over HH and YYYY over YY.
var dateFormatTokens = []struct {
	snow string
	strp string
}{
	{"YYYY", "%Y"},
	{"MMMM", "%B"},
	{"HH24", "%H"},
	{"HH12", "%I"},
	{"MON", "%b"},
	{"TZH", "%z"},
	{"YY", "%y"},
	{"MM", "%m"},
	{"DD", "%d"},
	{"DY", "%a"},
	{"HH", "%H"},
	{"MI", "%M"},
	{"SS", "%S"},
	{"FF", "%f"},
	{"AM", "%p"},
	{"PM", "%p"},
}

// ConvertDateFormat translates a Snowflake date-format string into the
// strptime/strftime tokens DuckDB understands. Matching is
// case-insensitive; unrecognized characters are copied through.
func ConvertDateFormat(format string) string {
	var b strings.Builder
	i := 0
	for i < len(format) {
		matched := false
		for _, tok := range dateFormatTokens {
			n := len(tok.snow)
			if i+n <= len(format) && strings.EqualFold(format[i:i+n], tok.snow) {
				b.WriteString(tok.strp)
				i += n
				// FF takes an optional precision digit (FF3, FF9).
				if tok.snow == "FF" && i < len(format) && isDigit(format[i]) {
					i++
				}
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
