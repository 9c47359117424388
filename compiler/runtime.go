package compiler

import "github.com/mholt32/lc32/asm"

// Runtime helper routines, emitted into the deferred header. Every
// requireX method is idempotent (backed by header.require) and, where
// a helper's own generated code depends on another helper (e.g. every
// `ensure_*` check falls through to its own error stub, which in turn
// falls through to report_error, which itself needs write_string), the
// dependency is requested eagerly at registration time rather than
// deferred - so report_error's dependency on write_string is satisfied
// even for a program that never calls `display` (a program that only
// ever trips a runtime type check still needs a working report_error).
//
// One function per emitted routine, returning/emitting a fixed
// snippet. The fixed messages and helper names below are reserved
// exactly.

const (
	msgNotProcedure       = "type error: not a procedure\n"
	msgNotString          = "type error: not a string\n"
	msgNotInteger         = "type error: not an integer" // no trailing newline, preserved intentionally
	msgArgumentCountWrong = "error: wrong number of arguments\n"
)

func (c *Compiler) requireEnsureProcedure() {
	c.requireNotProcedure()
	c.hdr.require("ensure_procedure", func(e *asm.Emitter) {
		e.SwitchTo(asm.TextSection)
		e.Comment("ensure_procedure: top-of-stack must be a pointer to a procedure-magic object")
		e.Label("ensure_procedure")
		e.Instr(asm.MOV, asm.Disp(4, "esp"), asm.Reg("eax"))
		e.Instr(asm.TEST, asm.Imm(3), asm.Reg("eax"))
		e.Instr(asm.JNZ, asm.Label("not_procedure"))
		e.Instr(asm.CMPL, asm.Imm(int(procedureMagic)), asm.Indirect("eax"))
		e.Instr(asm.JNZ, asm.Label("not_procedure"))
		e.Instr(asm.RET)
	})
}

func (c *Compiler) requireEnsureString() {
	c.requireNotString()
	c.hdr.require("ensure_string", func(e *asm.Emitter) {
		e.SwitchTo(asm.TextSection)
		e.Comment("ensure_string: top-of-stack must be a pointer to a string-magic object")
		e.Label("ensure_string")
		e.Instr(asm.MOV, asm.Disp(4, "esp"), asm.Reg("eax"))
		e.Instr(asm.TEST, asm.Imm(3), asm.Reg("eax"))
		e.Instr(asm.JNZ, asm.Label("notstring"))
		e.Instr(asm.CMPL, asm.Imm(int(stringMagic)), asm.Indirect("eax"))
		e.Instr(asm.JNZ, asm.Label("notstring"))
		e.Instr(asm.RET)
	})
}

func (c *Compiler) requireEnsureInteger() {
	c.requireNotAnInteger()
	c.hdr.require("ensure_integer", func(e *asm.Emitter) {
		e.SwitchTo(asm.TextSection)
		e.Comment("ensure_integer: top-of-stack's low two tag bits must be 01")
		e.Label("ensure_integer")
		e.Instr(asm.MOV, asm.Disp(4, "esp"), asm.Reg("eax"))
		e.Instr(asm.AND, asm.Imm(3), asm.Reg("eax"))
		e.Instr(asm.CMPL, asm.Imm(tagInteger), asm.Reg("eax"))
		e.Instr(asm.JNZ, asm.Label("not_an_integer"))
		e.Instr(asm.RET)
	})
}

func (c *Compiler) requireNotProcedure() {
	c.requireReportError()
	c.hdr.require("not_procedure", func(e *asm.Emitter) {
		e.SwitchTo(asm.RODataSection)
		e.Align(4)
		emitBoxedString(e, "not_proc_msg", msgNotProcedure)
		e.SwitchTo(asm.TextSection)
		e.Label("not_procedure")
		e.Instr(asm.LEA, asm.Label("not_proc_msg"), asm.Reg("eax"))
		e.Instr(asm.JMP, asm.Label("report_error"))
	})
}

func (c *Compiler) requireNotString() {
	c.requireReportError()
	c.hdr.require("notstring", func(e *asm.Emitter) {
		e.SwitchTo(asm.RODataSection)
		e.Align(4)
		emitBoxedString(e, "not_string_msg", msgNotString)
		e.SwitchTo(asm.TextSection)
		e.Label("notstring")
		e.Instr(asm.LEA, asm.Label("not_string_msg"), asm.Reg("eax"))
		e.Instr(asm.JMP, asm.Label("report_error"))
	})
}

func (c *Compiler) requireNotAnInteger() {
	c.requireReportError()
	c.hdr.require("not_an_integer", func(e *asm.Emitter) {
		e.SwitchTo(asm.RODataSection)
		e.Align(4)
		emitBoxedString(e, "not_int_msg", msgNotInteger)
		e.SwitchTo(asm.TextSection)
		e.Label("not_an_integer")
		e.Instr(asm.LEA, asm.Label("not_int_msg"), asm.Reg("eax"))
		e.Instr(asm.JMP, asm.Label("report_error"))
	})
}

func (c *Compiler) requireArgumentCountWrong() {
	c.requireReportError()
	c.hdr.require("argument_count_wrong", func(e *asm.Emitter) {
		e.SwitchTo(asm.RODataSection)
		e.Align(4)
		emitBoxedString(e, "arg_count_msg", msgArgumentCountWrong)
		e.SwitchTo(asm.TextSection)
		e.Label("argument_count_wrong")
		e.Instr(asm.LEA, asm.Label("arg_count_msg"), asm.Reg("eax"))
		e.Instr(asm.JMP, asm.Label("report_error"))
	})
}

func (c *Compiler) requireReportError() {
	c.requireWriteString()
	c.hdr.require("report_error", func(e *asm.Emitter) {
		e.SwitchTo(asm.TextSection)
		e.Comment("report_error: %eax holds a string value; print it and exit(1)")
		e.Label("report_error")
		e.Instr(asm.PUSH, asm.Reg("eax"))
		e.Instr(asm.CALL, asm.Label("write_string"))
		e.Instr(asm.MOV, asm.Imm(1), asm.Reg("eax")) // __NR_exit
		e.Instr(asm.MOV, asm.Imm(1), asm.Reg("ebx")) // status 1
		e.Instr(asm.INT, asm.Imm(0x80))
	})
}

func (c *Compiler) requireWriteString() {
	c.hdr.require("write_string", func(e *asm.Emitter) {
		e.SwitchTo(asm.TextSection)
		e.Comment("write_string: top-of-stack is a string value; write(1, data, length)")
		e.Label("write_string")
		e.Instr(asm.MOV, asm.Disp(4, "esp"), asm.Reg("eax"))
		e.Instr(asm.MOV, asm.Disp(4, "eax"), asm.Reg("edx")) // length
		e.Instr(asm.LEA, asm.Disp(8, "eax"), asm.Reg("ecx")) // data pointer
		e.Instr(asm.MOV, asm.Imm(1), asm.Reg("ebx"))         // fd 1
		e.Instr(asm.MOV, asm.Imm(4), asm.Reg("eax"))         // __NR_write
		e.Instr(asm.INT, asm.Imm(0x80))
		e.Instr(asm.RET)
	})
}

func (c *Compiler) requireWriteInteger() {
	c.hdr.require("write_integer", func(e *asm.Emitter) {
		e.SwitchTo(asm.DataSection)
		e.Label("intbuf")
		e.Raw("        .skip 16")
		e.SwitchTo(asm.TextSection)
		e.Comment("write_integer: top-of-stack is a tagged integer; render decimal and write it")
		e.Label("write_integer")
		e.Instr(asm.MOV, asm.Disp(4, "esp"), asm.Reg("eax"))
		e.Instr(asm.SAR, asm.Imm(2), asm.Reg("eax")) // decode tagged integer
		e.Instr(asm.MOV, asm.Imm(0), asm.Reg("ebx"))  // ebx: 1 if negative ('-' is written after the digits)
		e.Comment("ecx walks backward through the scratch buffer, one byte past its end")
		e.Raw("        lea intbuf+16, %ecx")

		e.Instr(asm.CMPL, asm.Imm(0), asm.Reg("eax"))
		e.Instr(asm.JGE, asm.Label("write_integer_loop"))
		e.Instr(asm.NEG, asm.Reg("eax"))
		e.Instr(asm.MOV, asm.Imm(1), asm.Reg("ebx"))

		e.Label("write_integer_loop")
		e.Instr(asm.SUB, asm.Imm(1), asm.Reg("ecx"))
		e.Instr(asm.XOR, asm.Reg("edx"), asm.Reg("edx"))
		e.Instr(asm.MOV, asm.Imm(10), asm.Reg("esi"))
		e.Instr(asm.IDIV, asm.Reg("esi"))
		e.Instr(asm.ADD, asm.Imm('0'), asm.Reg("edx"))
		e.Raw("        movb %dl, (%ecx)")
		e.Instr(asm.CMPL, asm.Imm(0), asm.Reg("eax"))
		e.Instr(asm.JNZ, asm.Label("write_integer_loop"))

		e.Instr(asm.CMPL, asm.Imm(0), asm.Reg("ebx"))
		e.Instr(asm.JE, asm.Label("write_integer_done"))
		e.Instr(asm.SUB, asm.Imm(1), asm.Reg("ecx"))
		e.Raw("        movb $'-', (%ecx)")

		e.Label("write_integer_done")
		e.Comment("edx = intbuf+16 minus ecx = number of bytes rendered")
		e.Raw("        lea intbuf+16, %edx")
		e.Instr(asm.SUB, asm.Reg("ecx"), asm.Reg("edx"))
		e.Instr(asm.MOV, asm.Imm(1), asm.Reg("ebx")) // fd 1
		e.Instr(asm.MOV, asm.Imm(4), asm.Reg("eax")) // __NR_write
		e.Instr(asm.INT, asm.Imm(0x80))
		e.Instr(asm.RET)
	})
}

const msgDisplayBadType = "type error: display expects a string or an integer\n"

func (c *Compiler) requireDisplayTypeError() {
	c.requireReportError()
	c.hdr.require("display_bad_type", func(e *asm.Emitter) {
		e.SwitchTo(asm.RODataSection)
		e.Align(4)
		emitBoxedString(e, "display_bad_type_msg", msgDisplayBadType)
		e.SwitchTo(asm.TextSection)
		e.Label("display_bad_type")
		e.Instr(asm.LEA, asm.Label("display_bad_type_msg"), asm.Reg("eax"))
		e.Instr(asm.JMP, asm.Label("report_error"))
	})
}

func (c *Compiler) requireWriteNewline() {
	c.hdr.require("write_newline", func(e *asm.Emitter) {
		e.SwitchTo(asm.RODataSection)
		e.Label("newline_string")
		e.Ascii("\n")
		e.SwitchTo(asm.TextSection)
		e.Label("write_newline")
		e.Instr(asm.LEA, asm.Label("newline_string"), asm.Reg("ecx"))
		e.Instr(asm.MOV, asm.Imm(1), asm.Reg("edx"))
		e.Instr(asm.MOV, asm.Imm(1), asm.Reg("ebx"))
		e.Instr(asm.MOV, asm.Imm(4), asm.Reg("eax"))
		e.Instr(asm.INT, asm.Imm(0x80))
		e.Instr(asm.RET)
	})
}
