package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mholt32/lc32/forms"
)

func readAll(t *testing.T, src string) []forms.Form {
	t.Helper()
	r := New(src)
	var out []forms.Form
	for {
		f, err := r.Next()
		require.NoError(t, err)
		if forms.IsEOF(f) {
			return out
		}
		out = append(out, f)
	}
}

func TestReadAtoms(t *testing.T) {
	out := readAll(t, `42 -7 "hi" #t #f sym`)
	require.Len(t, out, 6)
	assert.Equal(t, forms.Int(42), out[0])
	assert.Equal(t, forms.Int(-7), out[1])
	assert.Equal(t, forms.Str("hi"), out[2])
	assert.Equal(t, forms.Bool(true), out[3])
	assert.Equal(t, forms.Bool(false), out[4])
	assert.Equal(t, forms.Symbol("sym"), out[5])
}

func TestReadList(t *testing.T) {
	out := readAll(t, `(+ 1 2)`)
	require.Len(t, out, 1)
	elems, ok := forms.ListToSlice(out[0])
	require.True(t, ok)
	require.Len(t, elems, 3)
	assert.Equal(t, forms.Symbol("+"), elems[0])
	assert.Equal(t, forms.Int(1), elems[1])
	assert.Equal(t, forms.Int(2), elems[2])
}

func TestReadNestedAndEmptyList(t *testing.T) {
	out := readAll(t, `(begin (display "hi") ())`)
	require.Len(t, out, 1)
	elems, ok := forms.ListToSlice(out[0])
	require.True(t, ok)
	require.Len(t, elems, 3)
	assert.True(t, forms.IsNil(elems[2]))
}

func TestReadQuote(t *testing.T) {
	out := readAll(t, `'a`)
	require.Len(t, out, 1)
	elems, ok := forms.ListToSlice(out[0])
	require.True(t, ok)
	require.Len(t, elems, 2)
	assert.Equal(t, forms.Symbol("quote"), elems[0])
	assert.Equal(t, forms.Symbol("a"), elems[1])
}

func TestReadComment(t *testing.T) {
	out := readAll(t, "; a comment\n42 ; trailing\n")
	require.Len(t, out, 1)
	assert.Equal(t, forms.Int(42), out[0])
}

func TestReadErrors(t *testing.T) {
	tests := []string{
		`(+ 1 2`,
		`)`,
		`"unterminated`,
		`$`,
	}
	for _, src := range tests {
		r := New(src)
		var err error
		for {
			var f forms.Form
			f, err = r.Next()
			if err != nil || forms.IsEOF(f) {
				break
			}
		}
		assert.Error(t, err, "expected an error reading %q", src)
	}
}
