package asm

import "fmt"

// Operand is anything that can appear as an instruction argument: a
// register name, or one of the addressing-mode constructors below.
//
// All operand text is rendered in GNU-assembler AT&T syntax (register
// names prefixed with %, immediates with $, source-before-destination
// operand order in Instr): "cmpl" is the AT&T operand-size suffix
// spelling, and "(b,i,s)" / "*r" / "d(r)" are AT&T addressing mode
// syntax.
type Operand string

// Reg names a bare 32-bit register, e.g. Reg("eax") -> "%eax".
func Reg(name string) Operand {
	return Operand("%" + name)
}

// Imm is an immediate operand, $x.
func Imm(x int) Operand {
	return Operand(fmt.Sprintf("$%d", x))
}

// ImmLabel is an immediate operand referring to a label's address, $label.
func ImmLabel(label string) Operand {
	return Operand(fmt.Sprintf("$%s", label))
}

// Indirect is register-indirect addressing, (%r).
func Indirect(reg string) Operand {
	return Operand(fmt.Sprintf("(%%%s)", reg))
}

// Disp is displacement addressing, d(%r).
func Disp(d int, reg string) Operand {
	return Operand(fmt.Sprintf("%d(%%%s)", d, reg))
}

// Absolute is absolute-indirect addressing through a register, *%r -
// used for indirect call/jmp targets.
func Absolute(reg string) Operand {
	return Operand(fmt.Sprintf("*%%%s", reg))
}

// Scaled is scaled-index addressing, (%base,%index,scale).
func Scaled(base, index string, scale int) Operand {
	return Operand(fmt.Sprintf("(%%%s,%%%s,%d)", base, index, scale))
}

// Label is a bare reference to a label's address, used as a data
// operand (e.g. in a .int directive) or as a call/jmp target that
// doesn't need the indirection of Absolute.
func Label(name string) Operand {
	return Operand(name)
}
