// Package parse turns Viro source text into a tree of core.Value, mirroring
// a REBOL-style reader: blocks ([...]) are read but not evaluated, parens
// ((...)) are read the same way and evaluated immediately by the evaluator.
package parse

import (
	"strconv"
	"strings"

	"github.com/marcin-radoszewski/viroprof/internal/core"
	"github.com/marcin-radoszewski/viroprof/internal/value"
	"github.com/marcin-radoszewski/viroprof/internal/verror"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokLiteral
	tokString
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

type parser struct {
	toks []token
	pos  int
}

// Parse reads input into a flat sequence of top-level values.
func Parse(input string) ([]core.Value, *verror.Error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var out []core.Value
	for !p.atEnd() {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func tokenize(input string) ([]token, *verror.Error) {
	var toks []token
	runes := []rune(input)
	i := 0
	n := len(runes)

	for i < n {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			i++
		case r == ';':
			for i < n && runes[i] != '\n' {
				i++
			}
		case r == '[':
			toks = append(toks, token{kind: tokLBracket})
			i++
		case r == ']':
			toks = append(toks, token{kind: tokRBracket})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case r == '"':
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < n {
				c := runes[i]
				if c == '\\' && i+1 < n {
					sb.WriteRune(unescape(runes[i+1]))
					i += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				sb.WriteRune(c)
				i++
			}
			if !closed {
				return nil, verror.NewSyntaxError(verror.ErrIDUnterminatedString, [3]string{string(runes[start:min(n, start+10)]), "", ""})
			}
			toks = append(toks, token{kind: tokString, text: sb.String()})
		default:
			start := i
			for i < n && !isDelimiter(runes[i]) {
				i++
			}
			toks = append(toks, token{kind: tokLiteral, text: string(runes[start:i])})
		}
	}
	return toks, nil
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return r
	}
}

func isDelimiter(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' ||
		r == '[' || r == ']' || r == '(' || r == ')' || r == '"' || r == ';'
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token {
	if p.atEnd() {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) parseExpression() (core.Value, *verror.Error) {
	t := p.advance()
	switch t.kind {
	case tokEOF:
		return nil, verror.NewSyntaxError(verror.ErrIDUnexpectedEOF, [3]string{"", "", ""})
	case tokString:
		return value.StrVal(t.text), nil
	case tokLBracket:
		return p.parseSequence(tokRBracket, core.TypeBlock)
	case tokLParen:
		return p.parseSequence(tokRParen, core.TypeParen)
	case tokRBracket, tokRParen:
		return nil, verror.NewSyntaxError(verror.ErrIDInvalidSyntax, [3]string{"unexpected closing bracket", "", ""})
	default:
		return parseLiteral(t.text)
	}
}

func (p *parser) parseSequence(closing tokenKind, kind core.ValueType) (core.Value, *verror.Error) {
	var elems []core.Value
	for {
		if p.atEnd() {
			if kind == core.TypeBlock {
				return nil, verror.NewSyntaxError(verror.ErrIDUnclosedBlock, [3]string{"", "", ""})
			}
			return nil, verror.NewSyntaxError(verror.ErrIDUnclosedParen, [3]string{"", "", ""})
		}
		if p.peek().kind == closing {
			p.advance()
			if kind == core.TypeParen {
				return value.ParenVal(elems), nil
			}
			return value.BlockVal(elems), nil
		}
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
}

func parseLiteral(text string) (core.Value, *verror.Error) {
	if text == "" {
		return nil, verror.NewSyntaxError(verror.ErrIDInvalidSyntax, [3]string{"empty literal", "", ""})
	}
	if text == "none" {
		return value.NoneVal(), nil
	}
	if text == "true" {
		return value.LogicVal(true), nil
	}
	if text == "false" {
		return value.LogicVal(false), nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.IntVal(n), nil
	}

	switch {
	case strings.HasSuffix(text, ":") && len(text) > 1 && value.ValidWordSymbol(text[:len(text)-1]):
		return value.SetWordVal(text[:len(text)-1]), nil
	case strings.HasPrefix(text, ":") && len(text) > 1 && value.ValidWordSymbol(text[1:]):
		return value.GetWordVal(text[1:]), nil
	case strings.HasPrefix(text, "'") && len(text) > 1 && value.ValidWordSymbol(text[1:]):
		return value.LitWordVal(text[1:]), nil
	case value.ValidWordSymbol(text):
		return value.WordVal(text), nil
	default:
		return nil, verror.NewSyntaxError(verror.ErrIDInvalidSyntax, [3]string{text, "", ""})
	}
}
