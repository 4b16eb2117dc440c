// Package synlex tokenises the modelling-language source (spec.md §4.1).
// It mirrors the teacher's internal/lexer.Scanner (hand-written
// character-class dispatch building a flat token slice) and keeps two
// buffers: a private working copy that the scanner reads (and never writes
// into), and the untouched preserved source, which survives for
// diagnostics and of which every token's text is a zero-copy substring.
package synlex

import "github.com/csgslice/csgslice/internal/geom"

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenPunct    // any single ASCII 32-126 byte not otherwise classified
	TokenInt
	TokenFloat
	TokenString
	TokenIdent
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenPunct:
		return "PUNCT"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenString:
		return "STRING"
	case TokenIdent:
		return "IDENT"
	default:
		return "?"
	}
}

// Token is a single lexeme. Text is a substring of the preserved buffer
// (zero-copy); Loc is an offset into the preserved buffer for diagnostics.
type Token struct {
	Type TokenType
	Text string
	Loc  geom.Location
}
