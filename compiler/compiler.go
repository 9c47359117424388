// Package compiler implements the single-pass translation from parsed
// forms (package forms, produced by package reader) to 32-bit x86
// GNU-assembler text.
//
// The overall shape - a Compiler holding an asm.Emitter plus small
// bookkeeping tables, walked once per top-level form - uses three
// independently-tracked emitters (entry+top-level code, procedure
// bodies, deferred runtime header) that are concatenated once at the
// end.
package compiler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mholt32/lc32/asm"
	"github.com/mholt32/lc32/forms"
	"github.com/mholt32/lc32/reader"
)

// Compiler holds all per-compilation state. A Compiler is used for
// exactly one Compile call and is not safe for concurrent use -
// the cmd/lc32-corpus harness gives each worker its own Compiler.
type Compiler struct {
	debug   bool
	labels  asm.Labels
	hdr     *header
	globals *globals
	body    *asm.Emitter // entry point and top-level forms
	proc    *asm.Emitter // compiled lambda bodies, in encounter order
	strings map[string]string
}

// New returns a ready-to-use Compiler.
func New() *Compiler {
	return &Compiler{
		hdr:     newHeader(),
		globals: newGlobals(),
		body:    asm.NewEmitter(),
		proc:    asm.NewEmitter(),
		strings: make(map[string]string),
	}
}

// SetDebug enables extra commentary in the emitted assembly.
func (c *Compiler) SetDebug(debug bool) {
	c.debug = debug
}

// Compile reads every top-level form from r and returns the complete
// assembly-language program, or the first error encountered.
func (c *Compiler) Compile(r *reader.Reader) (string, error) {
	c.emitEntry()
	if err := c.emitBootstrap(); err != nil {
		return "", errors.Wrap(err, "bootstrap")
	}

	for {
		f, err := r.Next()
		if err != nil {
			return "", errors.Wrap(err, "read")
		}
		if forms.IsEOF(f) {
			break
		}
		if err := c.compileTopLevel(f); err != nil {
			return "", err
		}
	}

	if name, ok := c.globals.firstUndefined(); ok {
		return "", fmt.Errorf("undefined global %q", name)
	}

	c.emitExit()

	hdrOut := asm.NewEmitter()
	c.hdr.flush(hdrOut)

	var out strings.Builder
	out.WriteString(c.body.String())
	out.WriteString(c.proc.String())
	out.WriteString(hdrOut.String())
	return out.String(), nil
}

// emitEntry emits the process entry point. The program is linked
// -nostdlib -static, so _start - not main - is the first instruction
// executed; there is no libc to set up argv/envp/atexit, so _start
// falls straight into the compiled top-level forms. `main` is emitted
// as a weak alias at the same address, per the reserved-name list, so
// the output can also be linked against a C runtime that expects to
// find `main` (it never runs any different code - both labels mark
// the same entry point).
func (c *Compiler) emitEntry() {
	c.body.SwitchTo(asm.TextSection)
	c.body.Globl("_start")
	c.body.Weak("main")
	c.body.Label("_start")
	c.body.Label("main")
	if c.debug {
		c.body.Comment("debug break")
		c.body.Instr(asm.INT, asm.Imm(3))
	}
}

// emitExit emits the final exit(0) syscall every program ends with,
// once control falls off the end of the compiled top-level forms.
func (c *Compiler) emitExit() {
	c.body.SwitchTo(asm.TextSection)
	c.body.Comment("exit(0)")
	c.body.Instr(asm.MOV, asm.Imm(1), asm.Reg("eax")) // __NR_exit
	c.body.Instr(asm.MOV, asm.Imm(0), asm.Reg("ebx"))
	c.body.Instr(asm.INT, asm.Imm(0x80))
}

// emitBootstrap compiles the one binding this dialect provides from a
// bootstrap library rather than a special form: a global
// named "=" equivalent to (lambda (a b) (eq? a b)). This global only
// ever gets called when "=" is used as a first-class value (passed as
// an argument, bound to another name); a direct call like (= a b)
// never reaches it, since "=" also has a special-form fast path
// (compileEquals) that the special-form table matches first. It goes
// through compileDefine directly rather than compileTopLevel, since
// "=" is a perfectly good global name and compileTopLevel's keyword
// guard only exists to stop *user* code from doing this to a form
// keyword like "if" or "lambda".
func (c *Compiler) emitBootstrap() error {
	lambdaForm := &forms.Pair{
		Car: forms.Symbol("lambda"),
		Cdr: forms.SliceToList([]forms.Form{
			forms.SliceToList([]forms.Form{forms.Symbol("a"), forms.Symbol("b")}),
			&forms.Pair{
				Car: forms.Symbol("eq?"),
				Cdr: forms.SliceToList([]forms.Form{forms.Symbol("a"), forms.Symbol("b")}),
			},
		}),
	}
	return c.compileDefine(c.body, "=", lambdaForm, emptyEnv())
}

// compileTopLevel compiles one form read at the top level: either a
// (define name expr) or a general expression evaluated for effect and
// discarded.
func (c *Compiler) compileTopLevel(f forms.Form) error {
	if p, ok := f.(*forms.Pair); ok {
		if sym, ok := p.Car.(forms.Symbol); ok && sym == "define" {
			args, ok := forms.ListToSlice(p.Cdr)
			if !ok || len(args) != 2 {
				return errors.New("define: expected (define name expr)")
			}
			name, ok := args[0].(forms.Symbol)
			if !ok {
				return errors.New("define: name must be a symbol")
			}
			if _, isForm := specialForms[string(name)]; isForm {
				return fmt.Errorf("define: %q is a special form and cannot be redefined", name)
			}
			return c.compileDefine(c.body, string(name), args[1], emptyEnv())
		}
	}
	if err := c.compileExpr(c.body, f, emptyEnv()); err != nil {
		return err
	}
	c.body.Comment("discard top-level expression value")
	c.body.Instr(asm.ADD, asm.Imm(4), asm.Reg("esp"))
	return nil
}

// compileDefine implements the global-definition sequence in its
// literal order: allocate the label (so a self-recursive lambda body
// can refer to its own global name), reject a double-definition, only
// then compile the body, and finally store its value. Doing it in
// this order - rather than compiling the body first - is what makes
// (define fact (lambda (n) ... (fact ...) ...)) work.
func (c *Compiler) compileDefine(e *asm.Emitter, name string, body forms.Form, env *env) error {
	label := c.globals.labelFor(name)
	if err := c.globals.markDefined(name); err != nil {
		return err
	}

	e.SwitchTo(asm.DataSection)
	e.Label(label)
	e.Raw("        .int 0")

	e.SwitchTo(asm.TextSection)
	if err := c.compileExpr(e, body, env); err != nil {
		return err
	}
	e.Instr(asm.POP, asm.Reg("eax"))
	e.Instr(asm.MOV, asm.Reg("eax"), asm.Label(label))
	return nil
}
