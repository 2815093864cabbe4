package await

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// A capturedPanic is a panic value recovered in a task goroutine, together
// with the stack trace of that goroutine at the point of the panic.
type capturedPanic struct {
	value any
	stack []byte
}

// A panicvalue is what gets re-raised in an awaiter when one or more awaited
// tasks panicked. It wraps every captured panic, with the original stack
// traces attached, so nothing is lost by crossing the goroutine boundary.
//
// A panicvalue implements the error interface, and its Unwrap method exposes
// any captured panic values that are themselves errors, so that errors.Is and
// errors.As keep working on a recovered panicvalue.
type panicvalue struct {
	items []capturedPanic
	errs  atomic.Pointer[[]error]
}

func (pv *panicvalue) Error() string {
	var b strings.Builder
	b.WriteString("as follows:")
	for i, p := range pv.items {
		fmt.Fprintf(&b, "\n(%d/%d) panic: %v", i+1, len(pv.items), p.value)
		if p.stack != nil {
			b.WriteString("\n\n")
			b.Write(p.stack)
		}
	}
	return b.String()
}

func (pv *panicvalue) Unwrap() []error {
	if p := pv.errs.Load(); p != nil {
		return *p
	}
	var errs []error
	for _, p := range pv.items {
		if err, ok := p.value.(error); ok {
			errs = append(errs, err)
		}
	}
	pv.errs.Store(&errs)
	return errs
}

// repanic re-raises the given captured panics, if there are any.
func repanic(items []capturedPanic) {
	if len(items) != 0 {
		panic(&panicvalue{items: items})
	}
}
