package compiler

import "fmt"

// globals is the global variable table: a name -> assembly-label
// map, plus the parallel "defined" set the end-of-compilation check
// consults. Grounded in shape on KTStephano-GVM/vm/parse.go's
// `labels map[string]string`, generalized to also track definedness
// and first-reference order (needed for the undefined-global
// diagnostic, which the original labels map has no use for since its
// assembler only ever checks "was this label ever emitted").
type globals struct {
	labels  map[string]string
	defined map[string]bool
	order   []string // names in the order they were first referenced
	seen    map[string]bool
	next    int
}

func newGlobals() *globals {
	return &globals{
		labels:  make(map[string]string),
		defined: make(map[string]bool),
		seen:    make(map[string]bool),
	}
}

// labelFor returns the assembly label for name, allocating one (and
// recording the reference) if this is the first time name has been
// seen. Scheme identifiers may contain characters (-, ?, !, =, *) that
// are not valid in an assembler label, so labels are synthesized
// ("g_<n>") rather than derived from the name text.
func (g *globals) labelFor(name string) string {
	if lbl, ok := g.labels[name]; ok {
		if !g.seen[name] {
			g.seen[name] = true
			g.order = append(g.order, name)
		}
		return lbl
	}
	lbl := fmt.Sprintf("g_%d", g.next)
	g.next++
	g.labels[name] = lbl
	g.seen[name] = true
	g.order = append(g.order, name)
	return lbl
}

// markDefined records that name has now been given a value. It
// returns an error if name was already defined (double-definition
// is a compile-time error).
func (g *globals) markDefined(name string) error {
	if g.defined[name] {
		return fmt.Errorf("global %q is already defined", name)
	}
	// Ensure a label exists even if this definition is the first
	// mention of the name.
	g.labelFor(name)
	g.defined[name] = true
	return nil
}

// isDefined reports whether name has been defined.
func (g *globals) isDefined(name string) bool {
	return g.defined[name]
}

// firstUndefined returns, in first-referenced order, the first name
// that was referenced but never defined. ok is false if every
// referenced name is defined.
func (g *globals) firstUndefined() (name string, ok bool) {
	for _, n := range g.order {
		if !g.defined[n] {
			return n, true
		}
	}
	return "", false
}
