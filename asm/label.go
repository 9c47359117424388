package asm

import "fmt"

// Labels is a monotonically increasing label counter: a dedicated
// counter removes the need to thread a position index through every
// caller that wants a fresh, unique label name.
type Labels struct {
	next int
}

// Fresh returns a new, never-before-returned label name, "k_<n>".
func (l *Labels) Fresh() string {
	n := l.next
	l.next++
	return fmt.Sprintf("k_%d", n)
}
