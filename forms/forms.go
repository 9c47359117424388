// Package forms is the host-side representation of a fully-parsed
// top-level form, as produced by package reader and consumed by
// package compiler.
//
// It is a small, closed set of shapes (pair, symbol, string, integer,
// boolean, EOF) that the expression compiler dispatches on by
// predicate.
package forms

import "fmt"

// Form is any parsed value: *Pair, Symbol, Str, Int, Bool, or the Nil /
// EOF singletons.
type Form interface {
	fmt.Stringer
	isForm()
}

// Pair is a cons cell. A proper list is a chain of Pairs terminated by
// Nil.
type Pair struct {
	Car Form
	Cdr Form
}

func (*Pair) isForm() {}

// String renders the pair the way a reader would have read it back,
// as a parenthesized list when the tail is a proper list.
func (p *Pair) String() string {
	s := "("
	var cur Form = p
	first := true
	for {
		pp, ok := cur.(*Pair)
		if !ok {
			break
		}
		if !first {
			s += " "
		}
		first = false
		s += pp.Car.String()
		cur = pp.Cdr
	}
	if cur != Nil {
		s += " . " + cur.String()
	}
	return s + ")"
}

// Symbol is an interned-by-value identifier.
type Symbol string

func (Symbol) isForm() {}
func (s Symbol) String() string { return string(s) }

// Str is a string literal, already unescaped.
type Str string

func (Str) isForm() {}
func (s Str) String() string { return fmt.Sprintf("%q", string(s)) }

// Int is a decimal integer literal.
type Int int32

func (Int) isForm() {}
func (n Int) String() string { return fmt.Sprintf("%d", int32(n)) }

// Bool is #t / #f.
type Bool bool

func (Bool) isForm() {}
func (b Bool) String() string {
	if b {
		return "#t"
	}
	return "#f"
}

type nilForm struct{}

func (nilForm) isForm() {}
func (nilForm) String() string { return "()" }

// Nil is the empty list, ().
var Nil Form = nilForm{}

type eofForm struct{}

func (eofForm) isForm() {}
func (eofForm) String() string { return "#<eof>" }

// EOF is the sentinel returned by the reader once the input is
// exhausted.
var EOF Form = eofForm{}

// IsPair reports whether f is a non-nil cons cell.
func IsPair(f Form) bool {
	_, ok := f.(*Pair)
	return ok
}

// IsSymbol reports whether f is a Symbol.
func IsSymbol(f Form) bool {
	_, ok := f.(Symbol)
	return ok
}

// IsString reports whether f is a Str.
func IsString(f Form) bool {
	_, ok := f.(Str)
	return ok
}

// IsInt reports whether f is an Int.
func IsInt(f Form) bool {
	_, ok := f.(Int)
	return ok
}

// IsBool reports whether f is a Bool.
func IsBool(f Form) bool {
	_, ok := f.(Bool)
	return ok
}

// IsNil reports whether f is the empty list.
func IsNil(f Form) bool {
	return f == Nil
}

// IsEOF reports whether f is the EOF sentinel.
func IsEOF(f Form) bool {
	return f == EOF
}

// ListToSlice converts a proper list to a slice of its elements. It
// returns ok=false if f is not a proper list (i.e. its final Cdr is not
// Nil, or it contains a non-Pair before reaching Nil).
func ListToSlice(f Form) (elems []Form, ok bool) {
	cur := f
	for {
		if IsNil(cur) {
			return elems, true
		}
		p, isPair := cur.(*Pair)
		if !isPair {
			return elems, false
		}
		elems = append(elems, p.Car)
		cur = p.Cdr
	}
}

// SliceToList builds a proper list out of elems.
func SliceToList(elems []Form) Form {
	var out Form = Nil
	for i := len(elems) - 1; i >= 0; i-- {
		out = &Pair{Car: elems[i], Cdr: out}
	}
	return out
}
