package compiler

import "github.com/mholt32/lc32/asm"

// header is a deferred composition of parameterless emitter thunks,
// extended by append. Each thunk is registered under a stable key so
// require is idempotent: calling it twice for the same helper (e.g.
// both "display" and a runtime type error path need write_string)
// emits that helper's code exactly once, in the order it was first
// requested.
type header struct {
	order  []string
	thunks map[string]func(*asm.Emitter)
}

func newHeader() *header {
	return &header{thunks: make(map[string]func(*asm.Emitter))}
}

// require registers thunk under key if it has not already been
// registered.
func (h *header) require(key string, thunk func(e *asm.Emitter)) {
	if _, ok := h.thunks[key]; ok {
		return
	}
	h.thunks[key] = thunk
	h.order = append(h.order, key)
}

// flush emits every registered thunk, in registration order. The loop
// re-reads len(h.order) on every iteration, so a thunk registered
// while flush is running would be emitted in the same pass. No thunk
// does that: each requireX method registers its helper's dependencies
// (report_error needs write_string) at registration time.
func (h *header) flush(e *asm.Emitter) {
	for i := 0; i < len(h.order); i++ {
		h.thunks[h.order[i]](e)
	}
}
