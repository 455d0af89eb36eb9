package translate

import "strings"

// dateUnits normalizes Snowflake date-part aliases to canonical names.
// Unknown units pass through unchanged.
var dateUnits = map[string]string{
	"YYYY":         "YEAR",
	"YY":           "YEAR",
	"YR":           "YEAR",
	"YRS":          "YEAR",
	"YEAR":         "YEAR",
	"YEARS":        "YEAR",
	"Q":            "QUARTER",
	"QTR":          "QUARTER",
	"QTRS":         "QUARTER",
	"QUARTER":      "QUARTER",
	"QUARTERS":     "QUARTER",
	"MM":           "MONTH",
	"MON":          "MONTH",
	"MONS":         "MONTH",
	"MONTH":        "MONTH",
	"MONTHS":       "MONTH",
	"W":            "WEEK",
	"WK":           "WEEK",
	"WEEK":         "WEEK",
	"WEEKS":        "WEEK",
	"D":            "DAY",
	"DD":           "DAY",
	"DAY":          "DAY",
	"DAYS":         "DAY",
	"DAYOFMONTH":   "DAY",
	"HH":           "HOUR",
	"HR":           "HOUR",
	"HRS":          "HOUR",
	"HOUR":         "HOUR",
	"HOURS":        "HOUR",
	"MI":           "MINUTE",
	"MIN":          "MINUTE",
	"MINS":         "MINUTE",
	"MINUTE":       "MINUTE",
	"MINUTES":      "MINUTE",
	"S":            "SECOND",
	"SS":           "SECOND",
	"SEC":          "SECOND",
	"SECS":         "SECOND",
	"SECOND":       "SECOND",
	"SECONDS":      "SECOND",
	"MS":           "MILLISECOND",
	"MSEC":         "MILLISECOND",
	"MILLISECOND":  "MILLISECOND",
	"MILLISECONDS": "MILLISECOND",
	"US":           "MICROSECOND",
	"USEC":         "MICROSECOND",
	"MICROSECOND":  "MICROSECOND",
	"MICROSECONDS": "MICROSECOND",
	"NS":           "NANOSECOND",
	"NSEC":         "NANOSECOND",
	"NANOSECOND":   "NANOSECOND",
	"NANOSECONDS":  "NANOSECOND",
}

// normalizeUnit maps a date-part argument (quoted or bare, any case) to
// its canonical name. Unknown units are returned as given, minus quotes.
func normalizeUnit(arg string) string {
	u := strings.ToUpper(unquote(arg))
	if canonical, ok := dateUnits[u]; ok {
		return canonical
	}
	return unquote(arg)
}
