package compile

import (
	"fmt"
	"strconv"
	"strings"
)

// EvalBool evaluates a restricted boolean expression over literals,
// comparisons (= == != < <= > >=), and/or/not and parentheses. It is a
// small hand-rolled tokenizer plus recursive-descent parser; it cannot
// reach the host language, so attacker-influenced var values can at worst
// flip a branch, never execute code.
func EvalBool(cond string) (bool, error) {
	toks, err := lexCond(cond)
	if err != nil {
		return false, err
	}
	if len(toks) == 0 {
		return false, fmt.Errorf("empty condition")
	}
	p := &condParser{toks: toks}
	v, err := p.parseOr()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("unexpected %q", p.toks[p.pos].text)
	}
	return truthy(v), nil
}

type condValue struct {
	kind byte // 's' string, 'n' number, 'b' bool
	s    string
	n    float64
	b    bool
}

func truthy(v condValue) bool {
	switch v.kind {
	case 'b':
		return v.b
	case 'n':
		return v.n != 0
	default:
		return v.s != ""
	}
}

func (v condValue) text() string {
	switch v.kind {
	case 'b':
		return strconv.FormatBool(v.b)
	case 'n':
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	default:
		return v.s
	}
}

type condToken struct {
	kind byte // 'v' value, 'o' operator, 'k' keyword, '(' or ')'
	text string
	val  condValue
}

func lexCond(s string) ([]condToken, error) {
	var toks []condToken
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '(' || c == ')':
			toks = append(toks, condToken{kind: c, text: string(c)})
			i++

		case c == '\'':
			j := i + 1
			for j < len(s) && s[j] != '\'' {
				j++
			}
			if j >= len(s) {
				return nil, fmt.Errorf("unterminated string")
			}
			toks = append(toks, condToken{kind: 'v', text: s[i : j+1],
				val: condValue{kind: 's', s: s[i+1 : j]}})
			i = j + 1

		case strings.ContainsRune("=!<>", rune(c)):
			op := string(c)
			if i+1 < len(s) && s[i+1] == '=' {
				op += "="
				i++
			}
			i++
			if op == "=" {
				op = "=="
			}
			if op == "!" {
				return nil, fmt.Errorf("unexpected '!'")
			}
			toks = append(toks, condToken{kind: 'o', text: op})

		case c >= '0' && c <= '9' || c == '-' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9':
			j := i + 1
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", s[i:j])
			}
			toks = append(toks, condToken{kind: 'v', text: s[i:j],
				val: condValue{kind: 'n', n: n}})
			i = j

		case isWordByte(c):
			j := i + 1
			for j < len(s) && (isWordByte(s[j]) || s[j] >= '0' && s[j] <= '9') {
				j++
			}
			word := s[i:j]
			switch strings.ToLower(word) {
			case "and", "or", "not":
				toks = append(toks, condToken{kind: 'k', text: strings.ToLower(word)})
			case "true":
				toks = append(toks, condToken{kind: 'v', text: word, val: condValue{kind: 'b', b: true}})
			case "false":
				toks = append(toks, condToken{kind: 'v', text: word, val: condValue{kind: 'b', b: false}})
			default:
				// Bare identifiers evaluate as their own text.
				toks = append(toks, condToken{kind: 'v', text: word, val: condValue{kind: 's', s: word}})
			}
			i = j

		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return toks, nil
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

type condParser struct {
	toks []condToken
	pos  int
}

func (p *condParser) peek() (condToken, bool) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos], true
	}
	return condToken{}, false
}

func (p *condParser) parseOr() (condValue, error) {
	left, err := p.parseAnd()
	if err != nil {
		return condValue{}, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != 'k' || t.text != "or" {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return condValue{}, err
		}
		left = condValue{kind: 'b', b: truthy(left) || truthy(right)}
	}
}

func (p *condParser) parseAnd() (condValue, error) {
	left, err := p.parseNot()
	if err != nil {
		return condValue{}, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != 'k' || t.text != "and" {
			return left, nil
		}
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return condValue{}, err
		}
		left = condValue{kind: 'b', b: truthy(left) && truthy(right)}
	}
}

func (p *condParser) parseNot() (condValue, error) {
	if t, ok := p.peek(); ok && t.kind == 'k' && t.text == "not" {
		p.pos++
		v, err := p.parseNot()
		if err != nil {
			return condValue{}, err
		}
		return condValue{kind: 'b', b: !truthy(v)}, nil
	}
	return p.parseComparison()
}

func (p *condParser) parseComparison() (condValue, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return condValue{}, err
	}
	t, ok := p.peek()
	if !ok || t.kind != 'o' {
		return left, nil
	}
	p.pos++
	right, err := p.parsePrimary()
	if err != nil {
		return condValue{}, err
	}
	return compareValues(t.text, left, right)
}

func (p *condParser) parsePrimary() (condValue, error) {
	t, ok := p.peek()
	if !ok {
		return condValue{}, fmt.Errorf("unexpected end of condition")
	}
	switch t.kind {
	case 'v':
		p.pos++
		return t.val, nil
	case '(':
		p.pos++
		v, err := p.parseOr()
		if err != nil {
			return condValue{}, err
		}
		closer, ok := p.peek()
		if !ok || closer.kind != ')' {
			return condValue{}, fmt.Errorf("missing ')'")
		}
		p.pos++
		return v, nil
	default:
		return condValue{}, fmt.Errorf("unexpected %q", t.text)
	}
}

func compareValues(op string, a, b condValue) (condValue, error) {
	// Numeric comparison when both sides are numbers, text otherwise.
	if a.kind == 'n' && b.kind == 'n' {
		var r bool
		switch op {
		case "==":
			r = a.n == b.n
		case "!=":
			r = a.n != b.n
		case "<":
			r = a.n < b.n
		case "<=":
			r = a.n <= b.n
		case ">":
			r = a.n > b.n
		case ">=":
			r = a.n >= b.n
		default:
			return condValue{}, fmt.Errorf("unknown operator %q", op)
		}
		return condValue{kind: 'b', b: r}, nil
	}

	as, bs := a.text(), b.text()
	var r bool
	switch op {
	case "==":
		r = as == bs
	case "!=":
		r = as != bs
	case "<":
		r = as < bs
	case "<=":
		r = as <= bs
	case ">":
		r = as > bs
	case ">=":
		r = as >= bs
	default:
		return condValue{}, fmt.Errorf("unknown operator %q", op)
	}
	return condValue{kind: 'b', b: r}, nil
}
