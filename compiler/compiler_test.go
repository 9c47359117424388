package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mholt32/lc32/asm"
	"github.com/mholt32/lc32/reader"
)

func compileSource(t *testing.T, src string) string {
	t.Helper()
	c := New()
	out, err := c.Compile(reader.New(src))
	require.NoError(t, err)
	return out
}

func TestCompileEmptyProgram(t *testing.T) {
	out := compileSource(t, "")
	assert.Contains(t, out, "_start:")
	assert.Contains(t, out, "int $128")
}

func TestCompileEmitsWeakMainAlias(t *testing.T) {
	out := compileSource(t, "")
	assert.Contains(t, out, ".weak main")
	assert.Contains(t, out, "main:")
}

func TestCompileSimpleArithmetic(t *testing.T) {
	out := compileSource(t, "(+ 1 2)")
	assert.Contains(t, out, "ensure_integer")
	assert.Contains(t, out, "add %ecx, %eax")
}

func TestCompileIfAndNot(t *testing.T) {
	out := compileSource(t, `(if (not #f) 1 2)`)
	assert.Contains(t, out, "cmpl $")
	assert.Contains(t, out, "je k_")
}

func TestCompileDefineAndReference(t *testing.T) {
	out := compileSource(t, "(define x 5) (+ x x)")
	assert.Contains(t, out, "g_1:")
	assert.Contains(t, out, ".int 0")
}

func TestCompileLambdaAndApplication(t *testing.T) {
	out := compileSource(t, "(define double (lambda (n) (+ n n))) (double 21)")
	assert.Contains(t, out, "ensure_procedure")
	assert.Contains(t, out, "argument_count_wrong")
}

func TestCompileRecursiveDefine(t *testing.T) {
	src := `(define fact (lambda (n) (if (eq? n 0) 1 (+ n (fact n)))))`
	out := compileSource(t, src)
	assert.Contains(t, out, "g_1:")
}

func TestCompileDisplayAndNewline(t *testing.T) {
	out := compileSource(t, `(display "hi") (newline)`)
	assert.Contains(t, out, "write_string")
	assert.Contains(t, out, "write_newline")
}

func TestCompileEqualsIsASpecialFormFastPath(t *testing.T) {
	out := compileSource(t, "(= 1 1)")
	assert.Contains(t, out, "ensure_integer", "a direct (= a b) call type-checks its operands inline")
	assert.NotContains(t, out, "ensure_procedure", "a direct (= a b) call must not go through the indirect-call path")
}

func TestCompileEqualsAsAValueUsesTheBootstrapGlobal(t *testing.T) {
	out := compileSource(t, "(define my-equals =) (my-equals 1 1)")
	assert.Contains(t, out, "ensure_procedure", "passing = around as a value still calls through the bootstrap global")
}

func TestCompileDoubleDefineIsAnError(t *testing.T) {
	c := New()
	_, err := c.Compile(reader.New("(define x 1) (define x 2)"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func TestCompileRedefiningASpecialFormIsAnError(t *testing.T) {
	c := New()
	_, err := c.Compile(reader.New("(define if 1)"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "special form")
}

func TestCompileUndefinedGlobalIsAnError(t *testing.T) {
	c := New()
	_, err := c.Compile(reader.New("(display never-defined)"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined global")
}

func TestCompileQuoteIsAnError(t *testing.T) {
	c := New()
	_, err := c.Compile(reader.New("'a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote")
}

func TestCompileLambdaWithMultipleBodyExpressionsIsAnError(t *testing.T) {
	c := New()
	src := "(define f (lambda (x) (display x) (+ x 1)))"
	_, err := c.Compile(reader.New(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 1 body expression")
}

func TestCompileClosureOverOuterLocalIsAnError(t *testing.T) {
	c := New()
	src := "(define f (lambda (x) (lambda (y) (+ x y))))"
	_, err := c.Compile(reader.New(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closures are not supported")
}

func TestCompileStringConstantsAreDeduped(t *testing.T) {
	out := compileSource(t, `(display "same") (display "same")`)
	assert.Equal(t, 1, strings.Count(out, `.ascii "same"`))
}

func TestReportErrorIsRegisteredEvenWithoutDisplay(t *testing.T) {
	// Every compiled lambda's prologue emits an arity check regardless
	// of whether any call site actually mismatches (here, (f 1) matches
	// f's declared arity and never trips it at runtime). The program
	// never calls display either, but report_error must still be pulled
	// in because argument_count_wrong depends on it.
	out := compileSource(t, "(define f (lambda (n) n)) (f 1)")
	assert.Contains(t, out, "report_error:")
	assert.Contains(t, out, "write_string:")
}

func TestAbsStackTracksDepthAndRejectsEmptyPop(t *testing.T) {
	var s absStack
	s.push()
	assert.Equal(t, 1, s.Depth())
	require.NoError(t, s.pop())
	assert.Equal(t, 0, s.Depth())
	assert.Error(t, s.pop())
}

func TestGlobalsFirstUndefinedReportsReferenceOrder(t *testing.T) {
	g := newGlobals()
	g.labelFor("b")
	g.labelFor("a")
	require.NoError(t, g.markDefined("a"))
	name, ok := g.firstUndefined()
	require.True(t, ok)
	assert.Equal(t, "b", name)
}

func TestHeaderRequireIsIdempotent(t *testing.T) {
	h := newHeader()
	calls := 0
	h.require("x", func(e *asm.Emitter) { calls++ })
	h.require("x", func(e *asm.Emitter) { calls++ })
	h.flush(asm.NewEmitter())
	assert.Equal(t, 1, calls)
}
