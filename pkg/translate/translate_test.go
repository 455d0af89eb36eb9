package translate

import "testing"

func TestTranslate_Conditionals(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "iff",
			in:   "SELECT IFF(a > 1, 'y', 'n') FROM t",
			want: "SELECT CASE WHEN a > 1 THEN 'y' ELSE 'n' END FROM t",
		},
		{
			name: "nvl becomes coalesce",
			in:   "SELECT NVL(a, b) FROM t",
			want: "SELECT COALESCE(a, b) FROM t",
		},
		{
			name: "nested nvl iff resolves inner to outer",
			in:   "SELECT NVL(IFF(c, a, b), x) FROM t",
			want: "SELECT COALESCE(CASE WHEN c THEN a ELSE b END, x) FROM t",
		},
		{
			name: "nvl2",
			in:   "SELECT NVL2(a, b, c) FROM t",
			want: "SELECT CASE WHEN a IS NOT NULL THEN b ELSE c END FROM t",
		},
		{
			name: "decode with default",
			in:   "SELECT DECODE(status, 1, 'Active', 2, 'Inactive', 'Unknown') FROM t",
			want: "SELECT CASE WHEN status = 1 THEN 'Active' WHEN status = 2 THEN 'Inactive' ELSE 'Unknown' END FROM t",
		},
		{
			name: "decode without default",
			in:   "SELECT DECODE(x, 'a', 1, 'b', 2) FROM t",
			want: "SELECT CASE WHEN x = 'a' THEN 1 WHEN x = 'b' THEN 2 END FROM t",
		},
		{
			name: "decode null key",
			in:   "SELECT DECODE(x, NULL, 0, 1) FROM t",
			want: "SELECT CASE WHEN x IS NULL THEN 0 ELSE 1 END FROM t",
		},
		{
			name: "decode too few args is untouched",
			in:   "SELECT DECODE(x, 1) FROM t",
			want: "SELECT DECODE(x, 1) FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Translate(tt.in); got != tt.want {
				t.Errorf("Translate(%q)\n got:  %q\n want: %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTranslate_DateFunctions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"SELECT DATEADD(day, 7, order_date) FROM t",
			"SELECT order_date + INTERVAL (7) DAY FROM t",
		},
		{
			"SELECT DATEADD('YY', 1, d) FROM t",
			"SELECT d + INTERVAL (1) YEAR FROM t",
		},
		{
			"SELECT DATEDIFF('day', a, b) FROM t",
			"SELECT DATE_DIFF('day', a, b) FROM t",
		},
		{
			"SELECT DATEDIFF(mm, a, b) FROM t",
			"SELECT DATE_DIFF('month', a, b) FROM t",
		},
		{
			"SELECT ADD_MONTHS(d, 3) FROM t",
			"SELECT d + INTERVAL (3) MONTH FROM t",
		},
		{
			"SELECT TO_DATE(s, 'YYYY-MM-DD') FROM t",
			"SELECT CAST(STRPTIME(s, '%Y-%m-%d') AS DATE) FROM t",
		},
		{
			"SELECT TO_DATE(s) FROM t",
			"SELECT CAST(s AS DATE) FROM t",
		},
		{
			"SELECT TO_TIMESTAMP(s, 'YYYY-MM-DD HH24:MI:SS.FF3') FROM t",
			"SELECT STRPTIME(s, '%Y-%m-%d %H:%M:%S.%f') FROM t",
		},
		{
			"SELECT TO_CHAR(ts, 'YYYY-MM-DD HH24:MI:SS') FROM t",
			"SELECT STRFTIME(ts, '%Y-%m-%d %H:%M:%S') FROM t",
		},
		{
			"SELECT TRUNC(d, 'MM') FROM t",
			"SELECT DATE_TRUNC('month', d) FROM t",
		},
		{
			"SELECT DATE_TRUNC(week, d) FROM t",
			"SELECT DATE_TRUNC('week', d) FROM t",
		},
		{
			"SELECT DAYNAME(d) FROM t",
			"SELECT STRFTIME(d, '%a') FROM t",
		},
		{
			// Unknown unit passes through unchanged.
			"SELECT DATEADD(fortnight, 1, d) FROM t",
			"SELECT d + INTERVAL (1) fortnight FROM t",
		},
	}

	for _, tt := range tests {
		if got := Translate(tt.in); got != tt.want {
			t.Errorf("Translate(%q)\n got:  %q\n want: %q", tt.in, got, tt.want)
		}
	}
}

func TestTranslate_Types(t *testing.T) {
	in := "CREATE TABLE t (a NUMBER(10,2), b TIMESTAMP_NTZ, c VARCHAR(16), d STRING, e INT, f INTEGER, g NUMBER, h VARIANT)"
	want := "CREATE TABLE t (a DECIMAL(10,2), b TIMESTAMP, c VARCHAR(16), d VARCHAR, e INT, f INTEGER, g DECIMAL(38,0), h JSON)"
	if got := Translate(in); got != want {
		t.Errorf("got:  %q\nwant: %q", got, want)
	}
}

func TestTranslate_Misc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT ZEROIFNULL(x) FROM t", "SELECT COALESCE(x, 0) FROM t"},
		{"SELECT NULLIFZERO(x) FROM t", "SELECT NULLIF(x, 0) FROM t"},
		{"SELECT DIV0(a, b) FROM t", "SELECT CASE WHEN b = 0 THEN 0 ELSE a / b END FROM t"},
		{"SELECT LISTAGG(name, ', ') FROM t", "SELECT STRING_AGG(name, ', ') FROM t"},
		{"SELECT CHARINDEX('x', s) FROM t", "SELECT POSITION('x' IN s) FROM t"},
		{"SELECT EQUAL_NULL(a, b) FROM t", "SELECT (a IS NOT DISTINCT FROM b) FROM t"},
		{"SELECT LEN(s) FROM t", "SELECT LENGTH(s) FROM t"},
		{"SELECT STARTSWITH(s, 'ab') FROM t", "SELECT STARTS_WITH(s, 'ab') FROM t"},
		{"SELECT GETDATE() FROM t", "SELECT NOW() FROM t"},
		{"SELECT SQUARE(x) FROM t", "SELECT POWER(x, 2) FROM t"},
		{"SELECT CONVERT_TIMEZONE('UTC', ts) FROM t", "SELECT TIMEZONE('UTC', ts) FROM t"},
		{"SELECT ARRAY_CONTAINS(v, arr) FROM t", "SELECT LIST_CONTAINS(arr, v) FROM t"},
		{"SELECT SEQ8() FROM t", "SELECT (ROW_NUMBER() OVER () - 1) FROM t"},
		{"SELECT TRY_TO_NUMBER(s, 10, 2) FROM t", "SELECT TRY_CAST(s AS DECIMAL(10,2)) FROM t"},
	}

	for _, tt := range tests {
		if got := Translate(tt.in); got != tt.want {
			t.Errorf("Translate(%q)\n got:  %q\n want: %q", tt.in, got, tt.want)
		}
	}
}

func TestTranslate_UnknownPassthrough(t *testing.T) {
	// Unknown outer call is untouched; known inner call still translates.
	in := "SELECT FLATTEN(input => IFF(c, a, b)) FROM t"
	want := "SELECT FLATTEN(input => CASE WHEN c THEN a ELSE b END) FROM t"
	if got := Translate(in); got != want {
		t.Errorf("got:  %q\nwant: %q", got, want)
	}

	// Entirely unknown SQL is the identity.
	same := "SELECT my_udf(a, b), col FROM sch.tbl WHERE x IN (1, 2, 3) -- note"
	if got := Translate(same); got != same {
		t.Errorf("expected identity, got %q", got)
	}
}

func TestTranslate_QuotedContentUntouched(t *testing.T) {
	in := "SELECT 'IFF(a,b,c)' AS s, \"NUMBER\" FROM t"
	if got := Translate(in); got != in {
		t.Errorf("quoted content was rewritten: %q", got)
	}
}

func TestTranslate_Idempotent(t *testing.T) {
	in := "SELECT IFF(a, 1, 2), NVL(b, 0), DATEADD(day, 1, d) FROM t"
	once := Translate(in)
	if twice := Translate(once); twice != once {
		t.Errorf("second translation changed output:\n once:  %q\n twice: %q", once, twice)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a, b, c", []string{"a", "b", "c"}},
		{"f(a, b), c", []string{"f(a, b)", "c"}},
		{"'x,y', z", []string{"'x,y'", "z"}},
		{"'it''s, fine', z", []string{"'it''s, fine'", "z"}},
		{"\"a,b\", c", []string{"\"a,b\"", "c"}},
		{"nested(f(g(a,b),c),d), e", []string{"nested(f(g(a,b),c),d)", "e"}},
		{"", nil},
		{"single", []string{"single"}},
	}

	for _, tt := range tests {
		got := SplitArgs(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitArgs(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitArgs(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestConvertDateFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"YYYY-MM-DD", "%Y-%m-%d"},
		{"YYYY-MM-DD HH24:MI:SS", "%Y-%m-%d %H:%M:%S"},
		{"DD/MM/YY", "%d/%m/%y"},
		{"HH12:MI AM", "%I:%M %p"},
		{"YYYY-MM-DD HH24:MI:SS.FF9", "%Y-%m-%d %H:%M:%S.%f"},
		{"MON DD, YYYY", "%b %d, %Y"},
	}

	for _, tt := range tests {
		if got := ConvertDateFormat(tt.in); got != tt.want {
			t.Errorf("ConvertDateFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
