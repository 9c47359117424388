package reader

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/mholt32/lc32/forms"
)

// Reader reads one top-level form at a time from a source string.
type Reader struct {
	lex *lexer
	tok token
}

// New creates a Reader over the given source text.
func New(input string) *Reader {
	r := &Reader{lex: newLexer(input)}
	r.advance()
	return r
}

func (r *Reader) advance() {
	r.tok = r.lex.nextToken()
}

// Next returns the next top-level form, forms.EOF once the input is
// exhausted, or an error if the input is malformed.
func (r *Reader) Next() (forms.Form, error) {
	if r.tok.typ == tokEOF {
		return forms.EOF, nil
	}
	return r.readForm()
}

func (r *Reader) readForm() (forms.Form, error) {
	switch r.tok.typ {
	case tokEOF:
		return nil, errors.New("unexpected end of input")
	case tokError:
		return nil, errors.Errorf("lexer error: %s", r.tok.literal)
	case tokLParen:
		return r.readList()
	case tokRParen:
		return nil, errors.New("unexpected ')'")
	case tokQuote:
		r.advance()
		inner, err := r.readForm()
		if err != nil {
			return nil, errors.Wrap(err, "reading quoted form")
		}
		return &forms.Pair{
			Car: forms.Symbol("quote"),
			Cdr: &forms.Pair{Car: inner, Cdr: forms.Nil},
		}, nil
	case tokSymbol:
		sym := r.tok.literal
		r.advance()
		return forms.Symbol(sym), nil
	case tokString:
		s := r.tok.literal
		r.advance()
		return forms.Str(s), nil
	case tokNumber:
		lit := r.tok.literal
		r.advance()
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing integer literal %q", lit)
		}
		// A tagged integer is 4n+1 in a 32-bit word, so n must fit in
		// 30 bits, signed.
		const limit = 1 << 29
		if n >= limit || n < -limit {
			return nil, errors.Errorf("integer literal %q out of representable range", lit)
		}
		return forms.Int(int32(n)), nil
	case tokTrue:
		r.advance()
		return forms.Bool(true), nil
	case tokFalse:
		r.advance()
		return forms.Bool(false), nil
	default:
		return nil, errors.Errorf("unhandled token type %d", r.tok.typ)
	}
}

// readList reads the contents of a parenthesized form. Called with
// r.tok still the '(' token; consumes it before reading elements.
func (r *Reader) readList() (forms.Form, error) {
	r.advance() // consume '('

	var elems []forms.Form
	for {
		if r.tok.typ == tokRParen {
			r.advance()
			return forms.SliceToList(elems), nil
		}
		if r.tok.typ == tokEOF {
			return nil, errors.New("unexpected end of input inside list")
		}
		f, err := r.readForm()
		if err != nil {
			return nil, err
		}
		elems = append(elems, f)
	}
}
