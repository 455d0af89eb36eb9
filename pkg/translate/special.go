package translate

import (
	"fmt"
	"strings"
)

// callRewrites holds the per-function rewriters for calls whose shape
// differs between the dialects. Each rewriter receives the already
// translated argument list and returns (sql, true), or ("", false) to
// decline and leave the original call untouched.
var callRewrites = map[string]func(args []string) (string, bool){
	"IFF":    rewriteIff,
	"NVL2":   rewriteNvl2,
	"DECODE": rewriteDecode,

	"DATEADD":       rewriteDateAdd,
	"TIMEADD":       rewriteDateAdd,
	"TIMESTAMPADD":  rewriteDateAdd,
	"DATEDIFF":      rewriteDateDiff,
	"TIMEDIFF":      rewriteDateDiff,
	"TIMESTAMPDIFF": rewriteDateDiff,
	"ADD_MONTHS":    rewriteAddMonths,
	"DATE_TRUNC":    rewriteDateTrunc,
	"TRUNC":         rewriteTrunc,
	"LAST_DAY":      rewriteLastDay,
	"DAYNAME":       rewriteDayName,
	"MONTHNAME":     rewriteMonthName,

	"TO_DATE":          rewriteToDate,
	"TRY_TO_DATE":      rewriteTryToDate,
	"TO_TIMESTAMP":     rewriteToTimestamp,
	"TO_TIMESTAMP_NTZ": rewriteToTimestamp,
	"TRY_TO_TIMESTAMP": rewriteTryToTimestamp,
	"TO_CHAR":          rewriteToChar,
	"TO_VARCHAR":       rewriteToChar,
	"TO_NUMBER":        rewriteToNumber,
	"TRY_TO_NUMBER":    rewriteTryToNumber,
	"TO_DOUBLE":        rewriteToDouble,
	"TRY_TO_DOUBLE":    rewriteTryToDouble,

	"ZEROIFNULL": rewriteZeroIfNull,
	"NULLIFZERO": rewriteNullIfZero,
	"DIV0":       rewriteDiv0,
	"DIV0NULL":   rewriteDiv0Null,
	"SQUARE":     rewriteSquare,

	"LISTAGG":    rewriteListAgg,
	"CHARINDEX":  rewriteCharIndex,
	"STARTSWITH": rewriteStartsWith,
	"ENDSWITH":   rewriteEndsWith,
	"EQUAL_NULL": rewriteEqualNull,

	"CONVERT_TIMEZONE": rewriteConvertTimezone,

	"SEQ1": rewriteSeq,
	"SEQ2": rewriteSeq,
	"SEQ4": rewriteSeq,
	"SEQ8": rewriteSeq,

	"BITAND":        rewriteBitAnd,
	"BITOR":         rewriteBitOr,
	"BITXOR":        rewriteBitXor,
	"BITSHIFTLEFT":  rewriteBitShiftLeft,
	"BITSHIFTRIGHT": rewriteBitShiftRight,

	"ARRAY_CONTAINS": rewriteArrayContains,
}

func rewriteIff(args []string) (string, bool) {
	if len(args) != 3 {
		return "", false
	}
	return fmt.Sprintf("CASE WHEN %s THEN %s ELSE %s END", args[0], args[1], args[2]), true
}

func rewriteNvl2(args []string) (string, bool) {
	if len(args) != 3 {
		return "", false
	}
	return fmt.Sprintf("CASE WHEN %s IS NOT NULL THEN %s ELSE %s END", args[0], args[1], args[2]), true
}

// rewriteDecode expands DECODE(x, k1, v1, ..., default) into a searched
// CASE. Declines on fewer than three arguments.
func rewriteDecode(args []string) (string, bool) {
	if len(args) < 3 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("CASE")
	expr := args[0]
	i := 1
	for i+1 < len(args) {
		key, val := args[i], args[i+1]
		if strings.EqualFold(key, "NULL") {
			fmt.Fprintf(&b, " WHEN %s IS NULL THEN %s", expr, val)
		} else {
			fmt.Fprintf(&b, " WHEN %s = %s THEN %s", expr, key, val)
		}
		i += 2
	}
	if i < len(args) {
		fmt.Fprintf(&b, " ELSE %s", args[i])
	}
	b.WriteString(" END")
	return b.String(), true
}

func rewriteDateAdd(args []string) (string, bool) {
	if len(args) != 3 {
		return "", false
	}
	unit := normalizeUnit(args[0])
	return fmt.Sprintf("%s + INTERVAL (%s) %s", args[2], args[1], unit), true
}

func rewriteDateDiff(args []string) (string, bool) {
	if len(args) != 3 {
		return "", false
	}
	unit := strings.ToLower(normalizeUnit(args[0]))
	return fmt.Sprintf("DATE_DIFF('%s', %s, %s)", unit, args[1], args[2]), true
}

func rewriteAddMonths(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("%s + INTERVAL (%s) MONTH", args[0], args[1]), true
}

func rewriteDateTrunc(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	unit := strings.ToLower(normalizeUnit(args[0]))
	return fmt.Sprintf("DATE_TRUNC('%s', %s)", unit, args[1]), true
}

// rewriteTrunc handles the date form TRUNC(d, 'MM'); numeric TRUNC
// declines and passes through.
func rewriteTrunc(args []string) (string, bool) {
	if len(args) != 2 || !isStringLiteral(args[1]) {
		return "", false
	}
	unit := strings.ToLower(normalizeUnit(args[1]))
	return fmt.Sprintf("DATE_TRUNC('%s', %s)", unit, args[0]), true
}

// rewriteLastDay drops a redundant MONTH part argument; other parts and
// the one-argument form pass through (DuckDB has LAST_DAY).
func rewriteLastDay(args []string) (string, bool) {
	if len(args) == 2 && normalizeUnit(args[1]) == "MONTH" {
		return fmt.Sprintf("LAST_DAY(%s)", args[0]), true
	}
	return "", false
}

func rewriteDayName(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	return fmt.Sprintf("STRFTIME(%s, '%%a')", args[0]), true
}

func rewriteMonthName(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	return fmt.Sprintf("STRFTIME(%s, '%%b')", args[0]), true
}

func rewriteToDate(args []string) (string, bool) {
	switch len(args) {
	case 1:
		return fmt.Sprintf("CAST(%s AS DATE)", args[0]), true
	case 2:
		if !isStringLiteral(args[1]) {
			return "", false
		}
		return fmt.Sprintf("CAST(STRPTIME(%s, '%s') AS DATE)", args[0], ConvertDateFormat(unquote(args[1]))), true
	default:
		return "", false
	}
}

func rewriteTryToDate(args []string) (string, bool) {
	switch len(args) {
	case 1:
		return fmt.Sprintf("TRY_CAST(%s AS DATE)", args[0]), true
	case 2:
		if !isStringLiteral(args[1]) {
			return "", false
		}
		return fmt.Sprintf("TRY_CAST(TRY_STRPTIME(%s, '%s') AS DATE)", args[0], ConvertDateFormat(unquote(args[1]))), true
	default:
		return "", false
	}
}

func rewriteToTimestamp(args []string) (string, bool) {
	switch len(args) {
	case 1:
		return fmt.Sprintf("CAST(%s AS TIMESTAMP)", args[0]), true
	case 2:
		if !isStringLiteral(args[1]) {
			return "", false
		}
		return fmt.Sprintf("STRPTIME(%s, '%s')", args[0], ConvertDateFormat(unquote(args[1]))), true
	default:
		return "", false
	}
}

func rewriteTryToTimestamp(args []string) (string, bool) {
	switch len(args) {
	case 1:
		return fmt.Sprintf("TRY_CAST(%s AS TIMESTAMP)", args[0]), true
	case 2:
		if !isStringLiteral(args[1]) {
			return "", false
		}
		return fmt.Sprintf("TRY_STRPTIME(%s, '%s')", args[0], ConvertDateFormat(unquote(args[1]))), true
	default:
		return "", false
	}
}

func rewriteToChar(args []string) (string, bool) {
	switch len(args) {
	case 1:
		return fmt.Sprintf("CAST(%s AS VARCHAR)", args[0]), true
	case 2:
		if !isStringLiteral(args[1]) {
			return "", false
		}
		return fmt.Sprintf("STRFTIME(%s, '%s')", args[0], ConvertDateFormat(unquote(args[1]))), true
	default:
		return "", false
	}
}

func rewriteToNumber(args []string) (string, bool) {
	switch {
	case len(args) == 1:
		return fmt.Sprintf("CAST(%s AS DECIMAL(38,0))", args[0]), true
	case len(args) == 2 && isNumericLiteral(args[1]):
		return fmt.Sprintf("CAST(%s AS DECIMAL(%s,0))", args[0], args[1]), true
	case len(args) == 3 && isNumericLiteral(args[1]) && isNumericLiteral(args[2]):
		return fmt.Sprintf("CAST(%s AS DECIMAL(%s,%s))", args[0], args[1], args[2]), true
	default:
		// Format-string form has no DuckDB equivalent.
		return "", false
	}
}

func rewriteTryToNumber(args []string) (string, bool) {
	switch {
	case len(args) == 1:
		return fmt.Sprintf("TRY_CAST(%s AS DECIMAL(38,0))", args[0]), true
	case len(args) == 2 && isNumericLiteral(args[1]):
		return fmt.Sprintf("TRY_CAST(%s AS DECIMAL(%s,0))", args[0], args[1]), true
	case len(args) == 3 && isNumericLiteral(args[1]) && isNumericLiteral(args[2]):
		return fmt.Sprintf("TRY_CAST(%s AS DECIMAL(%s,%s))", args[0], args[1], args[2]), true
	default:
		return "", false
	}
}

func rewriteToDouble(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	return fmt.Sprintf("CAST(%s AS DOUBLE)", args[0]), true
}

func rewriteTryToDouble(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	return fmt.Sprintf("TRY_CAST(%s AS DOUBLE)", args[0]), true
}

func rewriteZeroIfNull(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	return fmt.Sprintf("COALESCE(%s, 0)", args[0]), true
}

func rewriteNullIfZero(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	return fmt.Sprintf("NULLIF(%s, 0)", args[0]), true
}

func rewriteDiv0(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("CASE WHEN %s = 0 THEN 0 ELSE %s / %s END", args[1], args[0], args[1]), true
}

func rewriteDiv0Null(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("CASE WHEN %s = 0 OR %s IS NULL THEN 0 ELSE %s / %s END",
		args[1], args[1], args[0], args[1]), true
}

func rewriteSquare(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	return fmt.Sprintf("POWER(%s, 2)", args[0]), true
}

func rewriteListAgg(args []string) (string, bool) {
	switch len(args) {
	case 1:
		return fmt.Sprintf("STRING_AGG(%s, '')", args[0]), true
	case 2:
		return fmt.Sprintf("STRING_AGG(%s, %s)", args[0], args[1]), true
	default:
		return "", false
	}
}

// rewriteCharIndex covers the two-argument form; the three-argument form
// (start position) has no direct DuckDB counterpart and passes through.
func rewriteCharIndex(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("POSITION(%s IN %s)", args[0], args[1]), true
}

func rewriteStartsWith(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("STARTS_WITH(%s, %s)", args[0], args[1]), true
}

func rewriteEndsWith(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("ENDS_WITH(%s, %s)", args[0], args[1]), true
}

func rewriteEqualNull(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("(%s IS NOT DISTINCT FROM %s)", args[0], args[1]), true
}

func rewriteConvertTimezone(args []string) (string, bool) {
	switch len(args) {
	case 2:
		return fmt.Sprintf("TIMEZONE(%s, %s)", args[0], args[1]), true
	case 3:
		return fmt.Sprintf("TIMEZONE(%s, TIMEZONE(%s, %s))", args[1], args[0], args[2]), true
	default:
		return "", false
	}
}

func rewriteSeq(args []string) (string, bool) {
	if len(args) != 0 {
		return "", false
	}
	return "(ROW_NUMBER() OVER () - 1)", true
}

func rewriteBitAnd(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("(%s & %s)", args[0], args[1]), true
}

func rewriteBitOr(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("(%s | %s)", args[0], args[1]), true
}

func rewriteBitXor(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("XOR(%s, %s)", args[0], args[1]), true
}

func rewriteBitShiftLeft(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("(%s << %s)", args[0], args[1]), true
}

func rewriteBitShiftRight(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("(%s >> %s)", args[0], args[1]), true
}

// rewriteArrayContains swaps Snowflake's (value, array) argument order to
// DuckDB's (list, element).
func rewriteArrayContains(args []string) (string, bool) {
	if len(args) != 2 {
		return "", false
	}
	return fmt.Sprintf("LIST_CONTAINS(%s, %s)", args[1], args[0]), true
}
