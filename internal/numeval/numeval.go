// Package numeval evaluates restricted arithmetic expressions: numbers,
// + - * /, parentheses, and unary minus. Anything else is an error, which
// is what routes the math pipeline into its second tier.
package numeval

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// #region evaluate

// Evaluate parses and evaluates a pure arithmetic expression string.
// It returns an error for empty input, symbolic content (variables),
// malformed syntax, or division by zero.
func Evaluate(expr string) (float64, error) {
	p := &parser{input: strings.TrimSpace(expr)}
	if p.input == "" {
		return 0, fmt.Errorf("empty expression")
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

// #endregion evaluate

// #region parser

// parser is a recursive-descent parser over the grammar:
//
//	expr   := term   { (+|-) term }
//	term   := factor { (*|/) factor }
//	factor := number | ( expr ) | - factor
type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.peek() == '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case p.peek() == '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.peek() == '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case p.peek() == '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) parseFactor() (float64, error) {
	p.skipSpace()
	switch {
	case p.peek() == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case p.peek() == '-':
		p.pos++
		v, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -v, nil
	default:
		return p.parseNumber()
	}
}

func (p *parser) parseNumber() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if unicode.IsDigit(rune(c)) || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		if p.pos < len(p.input) {
			return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
		}
		return 0, fmt.Errorf("unexpected end of expression")
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *parser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// #endregion parser

// #region format

// FormatValue renders an evaluated result without trailing float noise:
// integers print as integers, everything else with up to 6 digits.
func FormatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// #endregion format
