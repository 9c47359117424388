// Package reader turns a stream of source bytes into a sequence of
// forms.Form values, one top-level form at a time.
//
// It follows a two-stage split: a rune-scanning lexer feeding a thin
// token type, consumed here by a recursive-descent reader that
// additionally understands parentheses, quoting, and nesting.
package reader

// tokenType identifies the kind of a lexical token.
type tokenType int

const (
	tokEOF tokenType = iota
	tokError
	tokLParen
	tokRParen
	tokQuote
	tokSymbol
	tokString
	tokNumber
	tokTrue
	tokFalse
)

// token is the unit the lexer produces and the reader consumes.
type token struct {
	typ     tokenType
	literal string
}

// keywords is a fixed map from a scanned identifier to its token type,
// checked after general identifier scanning rather than during it.
var keywords = map[string]tokenType{
	"#t": tokTrue,
	"#f": tokFalse,
}
