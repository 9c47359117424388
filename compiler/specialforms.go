package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mholt32/lc32/asm"
	"github.com/mholt32/lc32/forms"
)

// specialForm compiles the arguments of a special-form application (the
// form's head symbol has already been matched and consumed). It must
// leave exactly one value pushed onto e by the time it returns nil.
type specialForm func(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error

// specialForms is the dispatch table: the original five
// (begin, if, lambda, +, -) plus the forms this port adds directly
// rather than routing through a general application (eq?, =, not,
// display, newline), plus an explicit quote entry that always fails.
// "=" gets both a special-form fast path here (so a direct call like
// (= a b) never pays for an indirect procedure call) and a global
// binding via emitBootstrap (so passing `=` around as a first-class
// value, e.g. (define my-eq =), still works) - the special-form table
// is consulted first (§4.6), so the fast path wins whenever "=" is
// used in head position.
var specialForms = map[string]specialForm{
	"begin":   compileBegin,
	"if":      compileIf,
	"lambda":  compileLambda,
	"+":       compileAdd,
	"-":       compileSub,
	"eq?":     compileEq,
	"=":       compileEquals,
	"not":     compileNot,
	"display": compileDisplay,
	"newline": compileNewline,
	"quote":   compileQuote,
}

func compileBegin(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	if len(args) == 0 {
		e.Instr(asm.MOV, asm.Imm(int(unspecifiedWord)), asm.Reg("eax"))
		e.Instr(asm.PUSH, asm.Reg("eax"))
		return nil
	}
	for i, a := range args {
		if i > 0 {
			e.Instr(asm.ADD, asm.Imm(4), asm.Reg("esp"))
		}
		if err := c.compileExpr(e, a, env); err != nil {
			return err
		}
	}
	return nil
}

func compileIf(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	if len(args) != 3 {
		return fmt.Errorf("if: expected 3 subexpressions (test, then, else), got %d", len(args))
	}
	elseLabel := c.labels.Fresh()
	endLabel := c.labels.Fresh()

	if err := c.compileExpr(e, args[0], env); err != nil {
		return err
	}
	e.Instr(asm.POP, asm.Reg("eax"))
	e.Instr(asm.CMPL, asm.Imm(int(falseWord())), asm.Reg("eax"))
	e.Instr(asm.JE, asm.Label(elseLabel))

	if err := c.compileExpr(e, args[1], env); err != nil {
		return err
	}
	e.Instr(asm.JMP, asm.Label(endLabel))

	e.Label(elseLabel)
	if err := c.compileExpr(e, args[2], env); err != nil {
		return err
	}
	e.Label(endLabel)
	return nil
}

func compileLambda(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	if len(args) < 1 {
		return errors.New("lambda: missing parameter list")
	}
	paramForms, ok := forms.ListToSlice(args[0])
	if !ok {
		return errors.New("lambda: parameter list must be a proper list")
	}
	params := make([]string, len(paramForms))
	for i, p := range paramForms {
		sym, ok := p.(forms.Symbol)
		if !ok {
			return fmt.Errorf("lambda: parameter %d is not a symbol", i)
		}
		params[i] = string(sym)
	}
	body := args[1:]
	if len(body) != 1 {
		return fmt.Errorf("lambda: expected exactly 1 body expression, got %d", len(body))
	}

	c.requireArgumentCountWrong()

	entryLabel := c.labels.Fresh()
	procLabel := c.labels.Fresh()

	e.SwitchTo(asm.RODataSection)
	e.Align(4)
	e.Label(procLabel)
	e.Int32(int32(procedureMagic))
	e.Int32Label(entryLabel)

	inner := env.extend(params)
	// A lambda nested in another lambda's body lands inline in c.proc,
	// so control jumps over the procedure to skipLabel.
	skipLabel := c.labels.Fresh()
	c.proc.SwitchTo(asm.TextSection)
	c.proc.Instr(asm.JMP, asm.Label(skipLabel))
	emitProcedurePrologue(c.proc, entryLabel, len(params))
	if err := c.compileExpr(c.proc, body[0], inner); err != nil {
		return err
	}
	emitProcedureEpilogue(c.proc)
	c.proc.Label(skipLabel)

	e.SwitchTo(asm.TextSection)
	e.Instr(asm.LEA, asm.Label(procLabel), asm.Reg("eax"))
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

func compileAdd(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	return compileBinaryArith(c, e, args, env, "+", func(e *asm.Emitter) {
		e.Instr(asm.ADD, asm.Reg("ecx"), asm.Reg("eax"))
		e.Instr(asm.SUB, asm.Imm(1), asm.Reg("eax"))
	})
}

func compileSub(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	return compileBinaryArith(c, e, args, env, "-", func(e *asm.Emitter) {
		e.Instr(asm.SUB, asm.Reg("ecx"), asm.Reg("eax"))
		e.Instr(asm.ADD, asm.Imm(1), asm.Reg("eax"))
	})
}

// compileBinaryArith compiles both operands of a two-argument integer
// primitive, ensure_integer-checking each as soon as it is the topmost
// value, then leaves the two tagged words in %eax (left) and %ecx
// (right) for combine to finish. Tagged-integer arithmetic is done
// directly on the 4n+1 words rather than by decoding and re-tagging:
// adding two such words yields 4(a+b)+2, one more than the correct
// 4(a+b)+1, so combine subtracts 1; subtracting yields 4(a-b)+0, one
// short, so combine adds 1.
func compileBinaryArith(c *Compiler, e *asm.Emitter, args []forms.Form, env *env, name string, combine func(*asm.Emitter)) error {
	if len(args) != 2 {
		return fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	c.requireEnsureInteger()

	if err := c.compileExpr(e, args[0], env); err != nil {
		return err
	}
	e.Instr(asm.CALL, asm.Label("ensure_integer"))

	if err := c.compileExpr(e, args[1], env); err != nil {
		return err
	}
	e.Instr(asm.CALL, asm.Label("ensure_integer"))

	e.Instr(asm.POP, asm.Reg("ecx")) // right operand
	e.Instr(asm.POP, asm.Reg("eax")) // left operand
	combine(e)
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

func compileEq(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	if len(args) != 2 {
		return fmt.Errorf("eq?: expected 2 arguments, got %d", len(args))
	}
	if err := c.compileExpr(e, args[0], env); err != nil {
		return err
	}
	if err := c.compileExpr(e, args[1], env); err != nil {
		return err
	}
	e.Instr(asm.POP, asm.Reg("ecx"))
	e.Instr(asm.POP, asm.Reg("eax"))
	e.Instr(asm.CMPL, asm.Reg("ecx"), asm.Reg("eax"))
	trueLabel := c.labels.Fresh()
	doneLabel := c.labels.Fresh()
	e.Instr(asm.JE, asm.Label(trueLabel))
	e.Instr(asm.MOV, asm.Imm(int(falseWord())), asm.Reg("eax"))
	e.Instr(asm.JMP, asm.Label(doneLabel))
	e.Label(trueLabel)
	e.Instr(asm.MOV, asm.Imm(int(trueWord())), asm.Reg("eax"))
	e.Label(doneLabel)
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

// compileEquals is the "=" special-form fast path: both operands are
// type-checked as integers (reusing ensure_integer, the same helper
// compileBinaryArith uses), then compared by cmpl on their raw tagged
// words - valid because two tagged integers' raw 4n+1 words compare
// equal iff their decoded values n do, the "+1" canceling on both
// sides. This is deliberately the same comparison shape as compileEq
// rather than a call through it, since eq? needs no type check at all
// and = does.
func compileEquals(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	if len(args) != 2 {
		return fmt.Errorf("=: expected 2 arguments, got %d", len(args))
	}
	c.requireEnsureInteger()

	if err := c.compileExpr(e, args[0], env); err != nil {
		return err
	}
	e.Instr(asm.CALL, asm.Label("ensure_integer"))

	if err := c.compileExpr(e, args[1], env); err != nil {
		return err
	}
	e.Instr(asm.CALL, asm.Label("ensure_integer"))

	e.Instr(asm.POP, asm.Reg("ecx"))
	e.Instr(asm.POP, asm.Reg("eax"))
	e.Instr(asm.CMPL, asm.Reg("ecx"), asm.Reg("eax"))
	trueLabel := c.labels.Fresh()
	doneLabel := c.labels.Fresh()
	e.Instr(asm.JE, asm.Label(trueLabel))
	e.Instr(asm.MOV, asm.Imm(int(falseWord())), asm.Reg("eax"))
	e.Instr(asm.JMP, asm.Label(doneLabel))
	e.Label(trueLabel)
	e.Instr(asm.MOV, asm.Imm(int(trueWord())), asm.Reg("eax"))
	e.Label(doneLabel)
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

func compileNot(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	if len(args) != 1 {
		return fmt.Errorf("not: expected 1 argument, got %d", len(args))
	}
	if err := c.compileExpr(e, args[0], env); err != nil {
		return err
	}
	e.Instr(asm.POP, asm.Reg("eax"))
	e.Instr(asm.CMPL, asm.Imm(int(falseWord())), asm.Reg("eax"))
	trueLabel := c.labels.Fresh()
	doneLabel := c.labels.Fresh()
	e.Instr(asm.JE, asm.Label(trueLabel))
	e.Instr(asm.MOV, asm.Imm(int(falseWord())), asm.Reg("eax"))
	e.Instr(asm.JMP, asm.Label(doneLabel))
	e.Label(trueLabel)
	e.Instr(asm.MOV, asm.Imm(int(trueWord())), asm.Reg("eax"))
	e.Label(doneLabel)
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

// compileDisplay prints a string or an integer operand; anything else
// is a runtime type error. The type checks are emitted inline rather
// than through an ensure_* call; a failing check jumps to the
// display_bad_type stub, which loads its message into %eax and jumps
// to report_error.
func compileDisplay(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	if len(args) != 1 {
		return fmt.Errorf("display: expected 1 argument, got %d", len(args))
	}
	c.requireWriteString()
	c.requireWriteInteger()
	c.requireDisplayTypeError()

	if err := c.compileExpr(e, args[0], env); err != nil {
		return err
	}

	immLabel := c.labels.Fresh()
	doneLabel := c.labels.Fresh()

	e.Instr(asm.MOV, asm.Indirect("esp"), asm.Reg("eax"))
	e.Instr(asm.TEST, asm.Imm(3), asm.Reg("eax"))
	e.Instr(asm.JNZ, asm.Label(immLabel))
	e.Instr(asm.CMPL, asm.Imm(int(stringMagic)), asm.Indirect("eax"))
	e.Instr(asm.JNZ, asm.Label("display_bad_type"))
	e.Instr(asm.CALL, asm.Label("write_string"))
	e.Instr(asm.JMP, asm.Label(doneLabel))

	e.Label(immLabel)
	e.Instr(asm.MOV, asm.Indirect("esp"), asm.Reg("eax"))
	e.Instr(asm.AND, asm.Imm(3), asm.Reg("eax"))
	e.Instr(asm.CMPL, asm.Imm(tagInteger), asm.Reg("eax"))
	e.Instr(asm.JNZ, asm.Label("display_bad_type"))
	e.Instr(asm.CALL, asm.Label("write_integer"))

	e.Label(doneLabel)
	e.Instr(asm.ADD, asm.Imm(4), asm.Reg("esp"))
	e.Instr(asm.MOV, asm.Imm(int(unspecifiedWord)), asm.Reg("eax"))
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

func compileNewline(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	if len(args) != 0 {
		return fmt.Errorf("newline: expected 0 arguments, got %d", len(args))
	}
	c.requireWriteNewline()
	e.Instr(asm.CALL, asm.Label("write_newline"))
	e.Instr(asm.MOV, asm.Imm(int(unspecifiedWord)), asm.Reg("eax"))
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

func compileQuote(c *Compiler, e *asm.Emitter, args []forms.Form, env *env) error {
	return errors.New("quote is not supported by this compiler")
}
