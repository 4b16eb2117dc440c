package synlex

import (
	"fmt"

	"github.com/csgslice/csgslice/internal/geom"
)

// Error is a lex-time failure. Kind distinguishes the four LexError
// subkinds spec.md §4.1/§7 calls out explicitly.
type Error struct {
	Kind string // "unterminated-string" | "unterminated-comment" | "abutted-tokens" | "unexpected-byte"
	Msg  string
	Loc  geom.Location
}

func (e *Error) Error() string { return e.Msg }

// Scanner tokenises source text by reading a private copy (the working
// buffer), which it never writes into. Token text is a substring of the
// caller's original string — the preserved buffer — so no bytes are
// copied per token, and the preserved buffer is never touched. The
// preserved buffer is what internal/diag resolves locations against.
type Scanner struct {
	preserved string // untouched; token text and diagnostics
	work      []byte // private working copy, read only by the scanner
	start     int
	current   int
	tokens    []Token
	err       *Error
}

// NewScanner copies src into a private working buffer; src itself becomes
// the preserved buffer and is never mutated by the scanner.
func NewScanner(src string) *Scanner {
	work := make([]byte, len(src))
	copy(work, src)
	return &Scanner{preserved: src, work: work}
}

// Preserved returns the untouched source buffer, kept alive for the whole
// pipeline's diagnostics (spec.md §5 "the original source buffer is
// immutable after parsing").
func (s *Scanner) Preserved() string { return s.preserved }

// ScanTokens tokenises the whole buffer, or returns the first LexError
// encountered (only the first issue is reported; §4.1).
func (s *Scanner) ScanTokens() ([]Token, *Error) {
	for !s.isAtEnd() {
		s.skipSpaceAndComments()
		if s.err != nil {
			return nil, s.err
		}
		s.start = s.current
		if s.isAtEnd() {
			break
		}
		s.scanToken()
		if s.err != nil {
			return nil, s.err
		}
	}
	s.tokens = append(s.tokens, Token{Type: TokenEOF, Text: "", Loc: geom.NewLocation(s.current)})
	return s.tokens, nil
}

func (s *Scanner) skipSpaceAndComments() {
	for !s.isAtEnd() {
		c := s.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance()
		case c == '/' && s.peekAt(1) == '/':
			for !s.isAtEnd() && s.peek() != '\n' {
				s.advance()
			}
		case c == '/' && s.peekAt(1) == '*':
			startLoc := geom.NewLocation(s.current)
			s.advance()
			s.advance()
			closed := false
			for !s.isAtEnd() {
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.err = &Error{Kind: "unterminated-comment", Msg: "unterminated block comment", Loc: startLoc}
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) scanToken() {
	c := s.advance()
	loc := geom.NewLocation(s.start)

	switch {
	case c == '"':
		s.scanString(loc)
	case isDigit(c):
		s.scanNumber(loc)
	case isIdentStart(c):
		s.scanIdent(loc)
	case c >= 32 && c <= 126:
		s.addToken(TokenPunct, loc)
	default:
		s.err = &Error{Kind: "unexpected-byte", Msg: fmt.Sprintf("unexpected byte 0x%02x", c), Loc: loc}
	}
}

func (s *Scanner) scanString(loc geom.Location) {
	for !s.isAtEnd() && s.peek() != '"' {
		if s.peek() == '\\' && !s.isAtEndAt(1) {
			s.advance()
		}
		s.advance()
	}
	if s.isAtEnd() {
		s.err = &Error{Kind: "unterminated-string", Msg: "unterminated string literal", Loc: loc}
		return
	}
	s.advance() // closing quote
	s.addToken(TokenString, loc)
}

func (s *Scanner) scanNumber(loc geom.Location) {
	isFloat := false
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		isFloat = true
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	if s.peek() == 'e' || s.peek() == 'E' {
		save := s.current
		s.advance()
		if s.peek() == '+' || s.peek() == '-' {
			s.advance()
		}
		if isDigit(s.peek()) {
			isFloat = true
			for isDigit(s.peek()) {
				s.advance()
			}
		} else {
			s.current = save // not actually an exponent; back off
		}
	}
	typ := TokenInt
	if isFloat {
		typ = TokenFloat
	}
	// §4.1: two multi-character tokens may not abut without intervening
	// whitespace or punctuation, e.g. "9.9foo" is a lex error.
	if isIdentStart(s.peek()) {
		s.err = &Error{
			Kind: "abutted-tokens",
			Msg:  "identifier directly abuts a numeric literal with no separator",
			Loc:  geom.NewLocation(s.current),
		}
		return
	}
	s.addToken(typ, loc)
}

func (s *Scanner) scanIdent(loc geom.Location) {
	for isIdentCont(s.peek()) {
		s.advance()
	}
	s.addToken(TokenIdent, loc)
}

func (s *Scanner) addToken(t TokenType, loc geom.Location) {
	s.tokens = append(s.tokens, Token{Type: t, Text: s.preserved[s.start:s.current], Loc: loc})
}

func (s *Scanner) advance() byte {
	c := s.work[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.work[s.current]
}

func (s *Scanner) peekAt(n int) byte {
	if s.current+n >= len(s.work) {
		return 0
	}
	return s.work[s.current+n]
}

func (s *Scanner) isAtEnd() bool      { return s.current >= len(s.work) }
func (s *Scanner) isAtEndAt(n int) bool { return s.current+n >= len(s.work) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
