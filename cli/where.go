package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/ridge/quarry"
	"github.com/ridge/quarry/query"
)

type parser struct {
	s        scanner.Scanner
	tok      rune
	literals map[string]literal
	err      error
}

// parseWhere parses a query expression:
//
//	expr   = term { "|" term }
//	term   = factor { "&" factor }
//	factor = "(" expr ")" | NAME op VALUE
//	op     = "=" | "<" | "<=" | ">" | ">="
//
// VALUE is a number, a quoted string or a bare word, parsed by the literal
// parser of index NAME.
func parseWhere(expr string, literals map[string]literal) (query.Query, error) {
	p := &parser{literals: literals}
	p.s.Init(strings.NewReader(expr))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanRawStrings
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = fmt.Errorf("at %d: %s", s.Pos().Offset, msg)
		}
	}
	p.next()

	q, err := p.expr()
	if err == nil && p.tok != scanner.EOF {
		err = p.errorf("unexpected %q", p.s.TokenText())
	}
	if err == nil {
		err = p.err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", quarry.ErrInvalidQuery, expr, err)
	}
	return q, nil
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("at %d: %s", p.s.Position.Offset, fmt.Sprintf(format, args...))
}

func (p *parser) expr() (query.Query, error) {
	q, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.tok == '|' {
		p.next()
		r, err := p.term()
		if err != nil {
			return nil, err
		}
		q = query.Or(q, r)
	}
	return q, nil
}

func (p *parser) term() (query.Query, error) {
	q, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.tok == '&' {
		p.next()
		r, err := p.factor()
		if err != nil {
			return nil, err
		}
		q = query.And(q, r)
	}
	return q, nil
}

func (p *parser) factor() (query.Query, error) {
	if p.tok == '(' {
		p.next()
		q, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.tok != ')' {
			return nil, p.errorf("expected ), got %q", p.s.TokenText())
		}
		p.next()
		return q, nil
	}

	if p.tok != scanner.Ident {
		return nil, p.errorf("expected index name, got %q", p.s.TokenText())
	}
	name := p.s.TokenText()
	parse, ok := p.literals[name]
	if !ok {
		return nil, p.errorf("unknown index %q", name)
	}
	p.next()

	op, err := p.op()
	if err != nil {
		return nil, err
	}
	lit, quoted, err := p.value()
	if err != nil {
		return nil, err
	}
	v, err := parse(lit, quoted)
	if err != nil {
		return nil, err
	}

	switch op {
	case "<":
		return query.Less(name, v), nil
	case "<=":
		return query.LessEqual(name, v), nil
	case ">":
		return query.Larger(name, v), nil
	case ">=":
		return query.LargerEqual(name, v), nil
	default:
		return query.Equal(name, v), nil
	}
}

func (p *parser) op() (string, error) {
	switch p.tok {
	case '=':
		p.next()
		return "=", nil
	case '<', '>':
		op := string(p.tok)
		if p.s.Peek() == '=' {
			p.s.Next()
			op += "="
		}
		p.next()
		return op, nil
	default:
		return "", p.errorf("expected comparison, got %q", p.s.TokenText())
	}
}

func (p *parser) value() (lit string, quoted bool, err error) {
	sign := ""
	if p.tok == '-' {
		sign = "-"
		p.next()
	}
	switch p.tok {
	case scanner.Int, scanner.Float:
		lit = sign + p.s.TokenText()
	case scanner.Ident:
		if sign != "" {
			return "", false, p.errorf("expected number after -")
		}
		lit = p.s.TokenText()
	case scanner.String, scanner.RawString:
		if sign != "" {
			return "", false, p.errorf("expected number after -")
		}
		lit, err = strconv.Unquote(p.s.TokenText())
		if err != nil {
			return "", false, p.errorf("bad string %s", p.s.TokenText())
		}
		quoted = true
	default:
		return "", false, p.errorf("expected value, got %q", p.s.TokenText())
	}
	p.next()
	return lit, quoted, nil
}
