package syn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/csgslice/csgslice/internal/geom"
	"github.com/csgslice/csgslice/internal/synlex"
)

// Error is a parse-time failure (spec.md §4.1 "Errors report the first
// issue... subsequent tokens are not consumed").
type Error struct {
	Msg string
	Loc geom.Location
}

func (e *Error) Error() string { return e.Msg }

// Parser is a top-down recursive-descent parser over the token stream the
// lexer produced, following the grammar in spec.md §4.1 verbatim.
type Parser struct {
	toks []synlex.Token
	pos  int
}

// NewParser wraps a finished token stream.
func NewParser(toks []synlex.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse parses `body := call*` for a whole source file.
func (p *Parser) Parse() ([]*Call, *Error) {
	return p.parseBody(false)
}

func (p *Parser) parseBody(stopOnBrace bool) ([]*Call, *Error) {
	var calls []*Call
	for {
		if p.at(synlex.TokenEOF) {
			if stopOnBrace {
				return nil, p.errf("expected '}', found end of file")
			}
			return calls, nil
		}
		if stopOnBrace && p.isPunct("}") {
			return calls, nil
		}
		c, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
}

func (p *Parser) parseCall() (*Call, *Error) {
	loc := p.cur().Loc
	var mods []Modifier
	for p.isPunctAny("*", "%", "!", "#") {
		mods = append(mods, Modifier(p.cur().Text[0]))
		p.advance()
	}

	if p.isPunct("{") {
		p.advance()
		children, err := p.parseBody(true)
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		return &Call{Functor: "", Mods: mods, Children: children, Loc: loc}, nil
	}

	if !p.at(synlex.TokenIdent) {
		return nil, p.errf("expected identifier or '{', found %s", p.describe(p.cur()))
	}
	functor := p.cur().Text
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	children, err := p.parseTail()
	if err != nil {
		return nil, err
	}
	return &Call{Functor: functor, Mods: mods, Args: args, Children: children, Loc: loc}, nil
}

func (p *Parser) parseTail() ([]*Call, *Error) {
	switch {
	case p.isPunct(";"):
		p.advance()
		return nil, nil
	case p.isPunct("{"):
		p.advance()
		children, err := p.parseBody(true)
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		return children, nil
	default:
		child, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		return []*Call{child}, nil
	}
}

func (p *Parser) parseArgs() ([]Arg, *Error) {
	var args []Arg
	if p.isPunct(")") {
		return nil, nil
	}
	for {
		a, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		return args, nil
	}
}

func (p *Parser) parseArg() (Arg, *Error) {
	if p.at(synlex.TokenIdent) && p.peekIsPunct(1, "=") {
		name := p.cur().Text
		loc := p.cur().Loc
		p.advance()
		p.advance() // '='
		val, err := p.parseValue()
		if err != nil {
			return Arg{}, err
		}
		return Arg{Name: name, Value: val, Loc: loc}, nil
	}
	val, err := p.parseValue()
	if err != nil {
		return Arg{}, err
	}
	return Arg{Value: val, Loc: val.Location()}, nil
}

func (p *Parser) parseValue() (Node, *Error) {
	if p.isPunct("-") {
		p.advance()
		inner, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		switch v := inner.(type) {
		case *IntLit:
			return &IntLit{Val: -v.Val, Loc: v.Loc}, nil
		case *FloatLit:
			return &FloatLit{Val: -v.Val, Loc: v.Loc}, nil
		default:
			return nil, p.errf("unary '-' requires a numeric literal")
		}
	}

	tok := p.cur()
	switch tok.Type {
	case synlex.TokenInt:
		p.advance()
		return parseIntLit(tok)
	case synlex.TokenFloat:
		p.advance()
		return parseFloatLit(tok)
	case synlex.TokenString:
		p.advance()
		s, err := unescapeString(tok.Text)
		if err != nil {
			return nil, &Error{Msg: err.Error(), Loc: tok.Loc}
		}
		return &StringLit{Val: s, Loc: tok.Loc}, nil
	case synlex.TokenIdent:
		p.advance()
		return &IdentLit{Name: tok.Text, Loc: tok.Loc}, nil
	default:
		if p.isPunct("[") {
			return p.parseBracket()
		}
		return nil, p.errf("expected a value, found %s", p.describe(tok))
	}
}

func (p *Parser) parseBracket() (Node, *Error) {
	loc := p.cur().Loc
	p.advance() // '['
	if p.isPunct("]") {
		p.advance()
		return &ArrayLit{Loc: loc}, nil
	}
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	switch {
	case p.isPunct(":"):
		p.advance()
		second, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		var step, to Node
		if p.isPunct(":") {
			p.advance()
			third, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			step, to = second, third
		} else {
			to = second
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		return &RangeLit{From: first, Step: step, To: to, Loc: loc}, nil
	case p.isPunct(","):
		elems := []Node{first}
		for p.isPunct(",") {
			p.advance()
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		return &ArrayLit{Elems: elems, Loc: loc}, nil
	default:
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		return &ArrayLit{Elems: []Node{first}, Loc: loc}, nil
	}
}

// --- token-stream helpers ---

func (p *Parser) cur() synlex.Token { return p.toks[p.pos] }

func (p *Parser) at(t synlex.TokenType) bool { return p.cur().Type == t }

func (p *Parser) isPunct(s string) bool {
	return p.cur().Type == synlex.TokenPunct && p.cur().Text == s
}

func (p *Parser) isPunctAny(ss ...string) bool {
	for _, s := range ss {
		if p.isPunct(s) {
			return true
		}
	}
	return false
}

func (p *Parser) peekIsPunct(ahead int, s string) bool {
	idx := p.pos + ahead
	if idx >= len(p.toks) {
		return false
	}
	t := p.toks[idx]
	return t.Type == synlex.TokenPunct && t.Text == s
}

func (p *Parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *Parser) expectPunct(s string) *Error {
	if !p.isPunct(s) {
		return p.errf("expected %q, found %s", s, p.describe(p.cur()))
	}
	p.advance()
	return nil
}

func (p *Parser) errf(format string, args ...interface{}) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Loc: p.cur().Loc}
}

func (p *Parser) describe(t synlex.Token) string {
	if t.Type == synlex.TokenEOF {
		return "end of file"
	}
	return fmt.Sprintf("%s %q", t.Type, t.Text)
}

func parseIntLit(tok synlex.Token) (Node, *Error) {
	var v int64
	for _, c := range []byte(tok.Text) {
		v = v*10 + int64(c-'0')
	}
	return &IntLit{Val: v, Loc: tok.Loc}, nil
}

func parseFloatLit(tok synlex.Token) (Node, *Error) {
	v, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return nil, &Error{Msg: fmt.Sprintf("malformed float literal %q: %v", tok.Text, err), Loc: tok.Loc}
	}
	return &FloatLit{Val: v, Loc: tok.Loc}, nil
}

func unescapeString(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", fmt.Errorf("malformed string literal")
	}
	body := raw[1 : len(raw)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), nil
}
