package translate

import "strings"

// Translate rewrites Snowflake-dialect SQL into DuckDB SQL. It is total
// and side-effect-free: unrecognized functions, types and units pass
// through verbatim. Only calls whose name appears in one of the rewrite
// tables are restructured; everything else keeps its original text, so a
// failed translation surfaces as a backend error, not a transpiler error.
func Translate(sql string) string {
	toks := lex(sql)
	var out strings.Builder
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.kind != tokWord {
			out.WriteString(t.text)
			i++
			continue
		}

		upper := strings.ToUpper(t.text)

		// A word directly followed by '(' (ignoring whitespace and
		// comments) is a call or parameterized type.
		j := i + 1
		for j < len(toks) && (toks[j].kind == tokSpace || toks[j].kind == tokComment) {
			j++
		}
		if j < len(toks) && toks[j].kind == tokSymbol && toks[j].text == "(" && isRewritable(upper) {
			inner, end, ok := captureParens(toks, j)
			if ok {
				out.WriteString(rewriteCall(t.text, upper, inner))
				i = end
				continue
			}
		}

		if repl, ok := typeNames[upper]; ok {
			out.WriteString(repl)
			i++
			continue
		}
		if repl, ok := bareWords[upper]; ok {
			out.WriteString(repl)
			i++
			continue
		}

		out.WriteString(t.text)
		i++
	}
	return out.String()
}

// isRewritable reports whether a call with this name has a rewrite rule.
// Calls without one are left untouched; their arguments are still reached
// by the main scan, so nested known calls inside unknown ones translate.
func isRewritable(upper string) bool {
	if _, ok := callRewrites[upper]; ok {
		return true
	}
	if _, ok := functionNames[upper]; ok {
		return true
	}
	_, ok := typeCalls[upper]
	return ok
}

// captureParens collects the raw text between the '(' at toks[open] and
// its matching ')'. Returns the inner text and the index past the closer.
func captureParens(toks []token, open int) (string, int, bool) {
	depth := 1
	var b strings.Builder
	for k := open + 1; k < len(toks); k++ {
		t := toks[k]
		if t.kind == tokSymbol {
			switch t.text {
			case "(":
				depth++
			case ")":
				depth--
				if depth == 0 {
					return b.String(), k + 1, true
				}
			}
		}
		b.WriteString(t.text)
	}
	return "", open, false
}

// rewriteCall translates one call expression. Arguments are translated
// first so that nested rewrites like NVL(IFF(...)) resolve inner-to-outer.
func rewriteCall(name, upper, inner string) string {
	args := SplitArgs(inner)
	for i := range args {
		args[i] = Translate(args[i])
	}

	if fn, ok := callRewrites[upper]; ok {
		if out, done := fn(args); done {
			return out
		}
		// Rewriter declined (bad arity, unsupported shape): emit the
		// original call unchanged.
		return name + "(" + inner + ")"
	}
	if repl, ok := functionNames[upper]; ok {
		return repl + "(" + strings.Join(args, ", ") + ")"
	}
	if fn, ok := typeCalls[upper]; ok {
		return fn(args)
	}
	return name + "(" + inner + ")"
}
