package compiler

import "errors"

// absStack is a compile-time depth counter for the abstract stack
// discipline. It emits no code of its own - push/pop here only keep a
// count. The compiler's emission paths do not call it; only its own
// unit test exercises it.
//
// A small LIFO with Push/Pop, repurposed as pure compile-time
// bookkeeping - no values are stored, and no mutex is needed since a
// Compiler is never shared across goroutines.
type absStack struct {
	depth int
}

// push records that one more value is now on the abstract stack.
func (s *absStack) push() {
	s.depth++
}

// pop records that the top value has been consumed. It returns an
// error if the stack was already empty - a bug in the compiler itself,
// never a user-facing condition.
func (s *absStack) pop() error {
	if s.depth == 0 {
		return errors.New("absStack: pop on empty abstract stack")
	}
	s.depth--
	return nil
}

// Depth returns the current compile-time stack depth.
func (s *absStack) Depth() int {
	return s.depth
}
