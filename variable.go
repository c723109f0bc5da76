package await

import "slices"

// A Variable is a mutually-exclusive container whose mutations can be
// observed, through [Watcher] values, as an asynchronous sequence of value
// snapshots.
//
// The value is only ever accessed through a [Guard], obtained with the Lock
// method; at most one guard exists at a time.
// When a guard that exercised mutable access is released, a clone of the
// value is published to every watcher.
//
// A Variable must not be shared by more than one [Executor].
type Variable[T any] struct {
	mu       Semaphore
	value    T
	clone    func(T) T
	watchers []*Watcher[T]
	closed   bool
}

// NewVariable creates a new [Variable] holding initial.
// Published snapshots are shallow copies; if T holds references, use
// [NewVariableFunc] instead.
func NewVariable[T any](initial T) *Variable[T] {
	return &Variable[T]{mu: Semaphore{size: 1}, value: initial}
}

// NewVariableFunc creates a new [Variable] holding initial, using clone to
// produce the independent copies handed to watchers.
func NewVariableFunc[T any](initial T, clone func(T) T) *Variable[T] {
	if clone == nil {
		panic("await(Variable): nil clone function")
	}
	return &Variable[T]{mu: Semaphore{size: 1}, value: initial, clone: clone}
}

func (v *Variable[T]) cloneValue() T {
	if v.clone != nil {
		return v.clone(v.value)
	}
	return v.value
}

func (v *Variable[T]) publish() {
	// A consumer resumed by a push may stop other watchers or close the
	// variable before the fan-out completes.
	for _, w := range slices.Clone(v.watchers) {
		if v.closed {
			break
		}
		if w.closed {
			continue
		}
		w.push(v.cloneValue())
	}
}

// Lock returns a [Task] that awaits exclusive access to v, then calls f with
// a [Guard] on the value, and then ends.
// The guard is released when f returns, on every exit path including panic.
// Suspended lockers are granted access in FIFO order.
//
// A coroutine must not await a second Lock on a variable it already holds:
// the second acquisition would suspend forever.
// This misuse is not detected.
func (v *Variable[T]) Lock(f func(g *Guard[T])) Task {
	if f == nil {
		panic("await(Variable): nil access function")
	}
	return v.mu.Acquire(1).Then(func(co *Coroutine) Result {
		g := &Guard[T]{v: v}
		defer g.release()
		f(g)
		return co.End()
	})
}

// LockTask is like [Variable.Lock], but the exclusive scope spans an
// asynchronous [Task]: f receives the guard and returns a task to run while
// holding it. The guard is released, publishing if dirty, when that task
// completes, panics, or when the coroutine running it is ended while
// suspended mid-scope.
//
// This is the way to keep other lockers out across suspension points.
// The same re-entrancy caution as for Lock applies.
func (v *Variable[T]) LockTask(f func(g *Guard[T]) Task) Task {
	if f == nil {
		panic("await(Variable): nil access function")
	}
	return v.mu.Acquire(1).Then(func(co *Coroutine) Result {
		g := &Guard[T]{v: v}
		released := false
		defer func() {
			if !released {
				g.release() // f panicked
			}
		}()
		t := must(f(g))
		released = true
		return co.Transition(lockScope(g, t))
	})
}

// lockScope wraps the held-scope task so that the guard is released exactly
// once however the scope exits.
// Every yield arms a cleanup for that waiting epoch; it releases the guard
// only if the coroutine was ended while suspended, and re-arms itself
// through the next yield otherwise.
func lockScope[T any](g *Guard[T], t Task) Task {
	var wrap func(Task) Task
	wrap = func(t Task) Task {
		return func(co *Coroutine) (res Result) {
			completed := false
			defer func() {
				if !completed {
					g.release() // t panicked
				}
			}()
			res = t(co)
			completed = true
			switch res.action {
			case doYield:
				co.Cleanup(&guardCleanup[T]{g: g, co: co})
			case doTransition:
			default:
				g.release()
				return res
			}
			if res.task != nil {
				res.task = wrap(res.task)
			}
			return res
		}
	}
	return wrap(t)
}

type guardCleanup[T any] struct {
	g  *Guard[T]
	co *Coroutine
}

func (c *guardCleanup[T]) Cleanup() {
	if c.co.Ended() {
		c.g.release()
	}
}

// Watch creates a new [Watcher] observing mutations of v from this point
// forward. Past mutations are not replayed.
// Any number of watchers may exist; each receives every subsequent
// publication, independently.
//
// Watching a closed variable yields a watcher that is already terminated.
//
// One should only call this method in a [Task] function.
func (v *Variable[T]) Watch() *Watcher[T] {
	w := &Watcher[T]{v: v}
	if v.closed {
		w.closed = true
		return w
	}
	v.watchers = append(v.watchers, w)
	return w
}

// Touch publishes a clone of the current value to every watcher, as if a
// guard had just mutated it, without locking or changing the value.
//
// One should only call this method in a [Task] function.
func (v *Variable[T]) Touch() {
	if v.closed {
		return
	}
	v.publish()
}

// Close terminates every watcher of v: queued snapshots that were not yet
// consumed are discarded, and all pending and future [Watcher.Next] calls
// observe end-of-sequence.
// Close is idempotent.
//
// Locking a closed variable still grants exclusive access to the value, but
// releases publish nothing.
//
// One should only call this method in a [Task] function.
func (v *Variable[T]) Close() {
	if v.closed {
		return
	}
	v.closed = true
	watchers := v.watchers
	v.watchers = nil
	for _, w := range watchers {
		w.terminate()
	}
}

// A Guard is a scoped, exclusive handle on a [Variable]'s value, passed to
// the access function of [Variable.Lock].
//
// A Guard records whether any mutable access happened during its scope.
// On release, if so, a clone of the value is published to every watcher —
// even when the mutation wrote the very bits that were already there.
// Detection is by access, not by comparison, so T needs no equality.
//
// A Guard is only valid within the scope it was issued for; using one after
// its release panics.
type Guard[T any] struct {
	v        *Variable[T]
	dirty    bool
	released bool
}

func (g *Guard[T]) check() {
	if g.released {
		panic("await(Variable): guard used after release")
	}
}

// Get returns the current value.
// Get is a read-only access; it never causes a publication.
func (g *Guard[T]) Get() T {
	g.check()
	return g.v.value
}

// Set replaces the value, marking the guard dirty.
func (g *Guard[T]) Set(x T) {
	g.check()
	g.dirty = true
	g.v.value = x
}

// Update sets the value to f(current), marking the guard dirty.
func (g *Guard[T]) Update(f func(T) T) {
	g.check()
	g.dirty = true
	g.v.value = f(g.v.value)
}

// Value returns a pointer to the value for in-place mutation, marking the
// guard dirty.
func (g *Guard[T]) Value() *T {
	g.check()
	g.dirty = true
	return &g.v.value
}

// Dirty reports whether a mutable access has happened through g.
func (g *Guard[T]) Dirty() bool {
	return g.dirty
}

func (g *Guard[T]) release() {
	if g.released {
		return
	}
	g.released = true
	v := g.v
	if g.dirty && !v.closed {
		v.publish()
	}
	v.mu.Release(1)
}
