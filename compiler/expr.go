package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mholt32/lc32/asm"
	"github.com/mholt32/lc32/forms"
)

// compileExpr compiles f, a single expression, into e: by the time it
// returns nil exactly one more value has been pushed onto the real
// machine stack (the abstract-stack contract), computed through
// %eax per the convention documented in procedure.go.
func (c *Compiler) compileExpr(e *asm.Emitter, f forms.Form, env *env) error {
	switch v := f.(type) {
	case forms.Int:
		e.Instr(asm.MOV, asm.Imm(int(taggedInt(int32(v)))), asm.Reg("eax"))
		e.Instr(asm.PUSH, asm.Reg("eax"))
		return nil

	case forms.Bool:
		word := falseWord()
		if bool(v) {
			word = trueWord()
		}
		e.Instr(asm.MOV, asm.Imm(int(word)), asm.Reg("eax"))
		e.Instr(asm.PUSH, asm.Reg("eax"))
		return nil

	case forms.Str:
		label := c.internString(string(v))
		e.Instr(asm.LEA, asm.Label(label), asm.Reg("eax"))
		e.Instr(asm.PUSH, asm.Reg("eax"))
		return nil

	case forms.Symbol:
		return c.compileSymbol(e, string(v), env)

	case *forms.Pair:
		return c.compileCompound(e, v, env)

	default:
		return fmt.Errorf("cannot compile %s as an expression", f)
	}
}

// compileSymbol compiles a variable reference: a bound argument
// (direct %ebp-relative load), an unreachable outer local (a compile
// error - this implementation has no closures), or a global.
func (c *Compiler) compileSymbol(e *asm.Emitter, name string, env *env) error {
	if b, ok := env.lookup(name); ok {
		e.Instr(asm.MOV, asm.Disp(argOffset(b.index), "ebp"), asm.Reg("eax"))
		e.Instr(asm.PUSH, asm.Reg("eax"))
		return nil
	}
	if env.isUnreachableOuterLocal(name) {
		return fmt.Errorf("%q is a local of an enclosing procedure; closures are not supported", name)
	}
	label := c.globals.labelFor(name)
	e.Instr(asm.MOV, asm.Label(label), asm.Reg("eax"))
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

// compileCompound compiles a pair: a special form if its head is a
// recognized keyword symbol, otherwise a general application.
func (c *Compiler) compileCompound(e *asm.Emitter, p *forms.Pair, env *env) error {
	if sym, ok := p.Car.(forms.Symbol); ok {
		if form, ok := specialForms[string(sym)]; ok {
			args, ok := forms.ListToSlice(p.Cdr)
			if !ok {
				return fmt.Errorf("%s: arguments must be a proper list", sym)
			}
			return form(c, e, args, env)
		}
	}
	elems, ok := forms.ListToSlice(p)
	if !ok || len(elems) == 0 {
		return errors.New("application must be a proper, non-empty list")
	}
	return c.compileApplication(e, elems[0], elems[1:], env)
}

// compileApplication compiles a general procedure call. Per the
// calling convention (§4.4), the caller evaluates and pushes every
// argument, in evaluation order, before it ever touches the procedure
// expression - so a procedure position with side effects (e.g.
// ((if p f g) 1 2)) observes those side effects happen last, after
// both arguments have already been evaluated.
//
// Arguments are pushed right-to-left so that source argument i always
// lands at 4*i(%ebp) in the callee regardless of arity (the
// documented quirk, resolved here - see DESIGN.md). The procedure
// value itself is never part of that argument region: once all
// arguments are on the stack, the procedure expression is compiled,
// type-checked, and reduced to a bare code-entry address in %ecx -
// ensure_procedure's own `call`/`ret` pushes and pops nothing but its
// own return address, so it disturbs none of the already-pushed
// arguments beneath the procedure value.
func (c *Compiler) compileApplication(e *asm.Emitter, proc forms.Form, args []forms.Form, env *env) error {
	c.requireEnsureProcedure()

	for i := len(args) - 1; i >= 0; i-- {
		if err := c.compileExpr(e, args[i], env); err != nil {
			return err
		}
	}

	if err := c.compileExpr(e, proc, env); err != nil {
		return err
	}
	e.Instr(asm.CALL, asm.Label("ensure_procedure"))
	e.Instr(asm.POP, asm.Reg("ecx"))
	e.Comment("ecx: procedure object pointer -> code-entry address")
	e.Instr(asm.MOV, asm.Disp(4, "ecx"), asm.Reg("ecx"))

	e.Instr(asm.MOV, asm.Imm(len(args)), asm.Reg("edx"))
	e.Instr(asm.CALL, asm.Absolute("ecx"))
	e.Instr(asm.PUSH, asm.Reg("eax"))
	return nil
}

// internString materializes value as a boxed string constant in
// .rodata the first time it is seen, returning its label; later
// occurrences of an identical literal reuse the same label.
func (c *Compiler) internString(value string) string {
	if label, ok := c.strings[value]; ok {
		return label
	}
	label := c.labels.Fresh()
	c.strings[value] = label

	c.body.SwitchTo(asm.RODataSection)
	c.body.Align(4)
	emitBoxedString(c.body, label, value)
	c.body.SwitchTo(asm.TextSection)
	return label
}
