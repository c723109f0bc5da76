package await

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"
)

// A paniccatcher collects panics raised by task and cleanup functions so that
// an [Executor] can keep draining its queue and re-panic afterwards.
type paniccatcher struct {
	items []panicitem
}

type panicitem struct {
	value any
	stack []byte
}

// TryCatch calls f, catching and recording any panic.
// It reports whether f returned normally.
func (pc *paniccatcher) TryCatch(f func()) (ok bool) {
	defer func() {
		if !ok {
			v := recover()
			if v == nil {
				panic("await: await does not support runtime.Goexit()")
			}
			pc.items = append(pc.items, panicitem{v, debug.Stack()})
		}
	}()
	f()
	return true
}

// Take empties pc, returning everything recorded so far.
func (pc *paniccatcher) Take() []panicitem {
	items := pc.items
	pc.items = nil
	return items
}

func rethrow(items []panicitem) {
	if len(items) != 0 {
		panic(&panicvalue{items: items})
	}
}

type panicvalue struct {
	items []panicitem
	errs  atomic.Pointer[[]error]
}

func (pv *panicvalue) Error() string {
	var b strings.Builder
	b.WriteString("as follows:")
	for i, p := range pv.items {
		fmt.Fprintf(&b, "\n(%d/%d) panic: %v\n\n", i+1, len(pv.items), p.value)
		b.Write(p.stack)
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
