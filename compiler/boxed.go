package compiler

import "github.com/mholt32/lc32/asm"

// emitBoxedString writes a complete boxed string object - magic word,
// 32-bit length, then the raw bytes ("Strings follow the magic
// with a 32-bit length and then the raw bytes") - at label, into
// whatever section e is currently switched to. Every caller is
// responsible for SwitchTo(asm.RODataSection) first; this is shared by
// both runtime-helper message constants (runtime.go) and user string
// literals (expr.go), which is why it takes the label explicitly
// rather than allocating one itself.
func emitBoxedString(e *asm.Emitter, label, value string) {
	e.Label(label)
	e.Int32(int32(stringMagic))
	e.Int32(int32(len(value)))
	if len(value) > 0 {
		e.Ascii(value)
	}
}
