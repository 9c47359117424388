package compiler

import (
	"fmt"

	"github.com/mholt32/lc32/asm"
)

// Register convention used throughout this package: %eax is the
// abstract-stack's working register. Every compiled expression, once
// its value is computed in %eax, is immediately pushed onto the real
// machine stack (pop operands into a register, compute, push result).
// "Compiling an expression" therefore always nets exactly one real
// `push`. %edx is reserved for the callee argument count; %ebx/%ecx
// are general scratch.
//
// Arguments are evaluated and pushed right-to-left (the documented
// quirk, resolved here by reversing push order - see DESIGN.md): this
// makes "source argument i lives at 4*i(%ebp)" a single fixed formula
// independent of arity, with %ebp set once, at entry, to the
// call-time %esp.

// emitProcedurePrologue emits the arity check and frame setup shared
// by every compiled procedure.
func emitProcedurePrologue(e *asm.Emitter, entryLabel string, arity int) {
	e.SwitchTo(asm.TextSection)
	e.Label(entryLabel)
	e.Comment(fmt.Sprintf("arity check: expect %d argument(s)", arity))
	e.Instr(asm.CMPL, asm.Imm(arity), asm.Reg("edx"))
	e.Instr(asm.JNZ, asm.Label("argument_count_wrong"))

	e.Comment("compute post-return %esp: skip the return address and all arguments")
	e.Instr(asm.LEA, asm.Disp(4*(arity+1), "esp"), asm.Reg("ebx"))
	e.Instr(asm.PUSH, asm.Reg("ebx"))
	e.Comment("save caller's frame pointer")
	e.Instr(asm.PUSH, asm.Reg("ebp"))
	e.Comment("%ebp = %esp at entry, so 4*i(%ebp) addresses source argument i")
	e.Instr(asm.LEA, asm.Disp(8, "esp"), asm.Reg("ebp"))
}

// emitProcedureEpilogue emits the code that takes the procedure body's
// pushed result, restores the caller's frame, and returns by jumping
// to the caller-supplied return address with %esp already adjusted
// past the arguments (callee-cleans-stack).
func emitProcedureEpilogue(e *asm.Emitter) {
	e.Comment("body result -> %eax, the abstract-stack working register")
	e.Instr(asm.POP, asm.Reg("eax"))
	e.Comment("restore caller's frame pointer")
	e.Instr(asm.POP, asm.Reg("ebp"))
	e.Comment("post-return %esp -> %ebx, return address -> %ecx")
	e.Instr(asm.POP, asm.Reg("ebx"))
	e.Instr(asm.POP, asm.Reg("ecx"))
	e.Instr(asm.MOV, asm.Reg("ebx"), asm.Reg("esp"))
	e.Instr(asm.JMP, asm.Absolute("ecx"))
}

// argOffset returns the %ebp-relative byte offset (as an int, always
// positive) of source argument i (1-based).
func argOffset(i int) int {
	return 4 * i
}
