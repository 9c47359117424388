package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreshLabelsAreMonotonicAndUnique(t *testing.T) {
	var l Labels
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name := l.Fresh()
		assert.False(t, seen[name], "label %s reused", name)
		seen[name] = true
		assert.Equal(t, "k_", name[:2])
	}
}

func TestSwitchToIsIdempotent(t *testing.T) {
	e := NewEmitter()
	e.SwitchTo(TextSection)
	e.SwitchTo(TextSection)
	e.SwitchTo(TextSection)
	out := e.String()
	assert.Equal(t, 1, strings.Count(out, ".text"))
}

func TestSwitchToReentersAfterData(t *testing.T) {
	e := NewEmitter()
	e.SwitchTo(TextSection)
	e.Instr(RET)
	e.SwitchTo(RODataSection)
	e.Ascii("hi")
	e.SwitchTo(TextSection)
	e.Instr(RET)

	out := e.String()
	assert.Equal(t, 2, strings.Count(out, ".text"))
	assert.Equal(t, 1, strings.Count(out, ".rodata"))
}

func TestEscapeStringOnlyEscapesThreeBytes(t *testing.T) {
	in := "a\\b\nc\"d\te"
	out := EscapeString(in)
	assert.Equal(t, `a\\b\nc\"d`+"\t"+"e", out)
}

func TestInstrFormatsOperands(t *testing.T) {
	e := NewEmitter()
	e.Instr(MOV, Imm(4), Reg("eax"))
	assert.Contains(t, e.String(), "mov $4, %eax")
}

func TestLabelLine(t *testing.T) {
	e := NewEmitter()
	e.Label("k_0")
	assert.Equal(t, "k_0:\n", e.String())
}
