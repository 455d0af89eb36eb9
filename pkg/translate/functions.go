package translate

// functionNames is the simple 1:1 rename table. Arguments are kept in
// place; only the function name changes. Functions whose argument shape
// differs between dialects live in callRewrites instead.
var functionNames = map[string]string{
	"NVL":               "COALESCE",
	"IFNULL":            "COALESCE",
	"LEN":               "LENGTH",
	"POW":               "POWER",
	"STRTOK":            "SPLIT_PART",
	"SPLIT":             "STRING_SPLIT",
	"CURRENT_TIMESTAMP": "NOW",
	"GETDATE":           "NOW",
	"SYSDATE":           "NOW",
	"SYSTIMESTAMP":      "NOW",
	"UUID_STRING":       "UUID",

	"REGEXP_LIKE":   "REGEXP_MATCHES",
	"RLIKE":         "REGEXP_MATCHES",
	"REGEXP_SUBSTR": "REGEXP_EXTRACT",
	"EDITDISTANCE":  "LEVENSHTEIN",

	"PARSE_JSON":       "JSON",
	"OBJECT_CONSTRUCT": "JSON_OBJECT",
	"OBJECT_KEYS":      "JSON_KEYS",
	"ARRAY_CONSTRUCT":  "LIST_VALUE",
	"ARRAY_CAT":        "LIST_CONCAT",
	"ARRAY_SIZE":       "LEN",

	"BOOLOR_AGG":  "BOOL_OR",
	"BOOLAND_AGG": "BOOL_AND",
}

// bareWords rewrites keywords that appear without a call form.
var bareWords = map[string]string{
	"SYSDATE": "now()",
}
