package await

import "errors"

// Errors reported by promises.
var (
	// ErrAlreadyResolved is reported by a settlement attempt on a promise
	// that has already been settled.
	ErrAlreadyResolved = errors.New("await: promise already resolved")

	// ErrAbandoned is observed by consumers of a promise whose producer
	// called Abandon before resolving.
	ErrAbandoned = errors.New("await: promise abandoned")

	// ErrPending is reported by [Handle.Get] while the promise is still
	// unsettled.
	ErrPending = errors.New("await: promise still pending")
)

type promiseState int8

const (
	promisePending promiseState = iota
	promiseResolved
	promiseRejected
)

// A promiseCell is the single shared allocation behind a [Promise] and all
// copies of its [Handle]: a waker registry, a state tag and the payload.
type promiseCell[T any] struct {
	sig   Signal
	state promiseState
	value T
	err   error
}

func (c *promiseCell[T]) settle(state promiseState, value T, err error) error {
	if c.state != promisePending {
		return ErrAlreadyResolved
	}
	c.state = state
	c.value = value
	c.err = err
	c.sig.Notify()
	return nil
}

// A Promise is the producer side of a write-once value cell.
// It is created, along with the consumer side, by [NewPromise].
//
// A Promise settles at most once: the first of [Promise.Resolve],
// [Promise.Reject] or [Promise.Abandon] decides the outcome for every
// consumer, permanently.
//
// A Promise must not be shared by more than one [Executor].
type Promise[T any] struct {
	cell *promiseCell[T]
}

// A Handle is the consumer side of a promise.
// Handles are plain values: copying one yields another consumer, and every
// copy observes the same settlement.
//
// A Handle must not be shared by more than one [Executor].
type Handle[T any] struct {
	cell *promiseCell[T]
}

// NewPromise creates a new pending promise, emitting the producer and the
// consumer side together.
func NewPromise[T any]() (*Promise[T], Handle[T]) {
	cell := new(promiseCell[T])
	return &Promise[T]{cell: cell}, Handle[T]{cell: cell}
}

// Resolve settles the promise with v and resumes any coroutine awaiting
// a [Handle].
// If the promise is already settled, Resolve reports [ErrAlreadyResolved]
// and the original outcome is untouched.
//
// One should only call this method in a [Task] function.
func (p *Promise[T]) Resolve(v T) error {
	return p.cell.settle(promiseResolved, v, nil)
}

// Reject settles the promise with err and resumes any coroutine awaiting
// a [Handle]. Reject panics if err is nil.
// If the promise is already settled, Reject reports [ErrAlreadyResolved]
// and the original outcome is untouched.
//
// One should only call this method in a [Task] function.
func (p *Promise[T]) Reject(err error) error {
	if err == nil {
		panic("await(Promise): Reject called with nil error")
	}
	var zero T
	return p.cell.settle(promiseRejected, zero, err)
}

// Abandon rejects the promise with [ErrAbandoned].
// A producer that can no longer resolve should call Abandon so that
// consumers do not await forever; this is the analogue of dropping the
// producer in languages with destructors.
// Abandon does nothing if the promise is already settled.
//
// One should only call this method in a [Task] function.
func (p *Promise[T]) Abandon() {
	var zero T
	_ = p.cell.settle(promiseRejected, zero, ErrAbandoned)
}

// Done reports whether the promise has been settled.
func (h Handle[T]) Done() bool {
	return h.cell.state != promisePending
}

// Get returns the settlement of the promise: the resolved value, or a zero
// value and the rejection error.
// While the promise is pending, Get reports [ErrPending].
func (h Handle[T]) Get() (T, error) {
	c := h.cell
	if c.state == promisePending {
		var zero T
		return zero, ErrPending
	}
	return c.value, c.err
}

// Await returns a [Task] that awaits the settlement of the promise, then
// calls f with the resolved value, or with a zero value and the rejection
// error, and then ends.
//
// The settlement is permanent: a task created after it observes the very
// same outcome immediately. Ending the awaiting coroutine early simply
// withdraws interest; it does not affect the promise.
func (h Handle[T]) Await(f func(v T, err error)) Task {
	return func(co *Coroutine) Result {
		c := h.cell
		if c.state == promisePending {
			return co.Yield(&c.sig)
		}
		if f != nil {
			f(c.value, c.err)
		}
		return co.End()
	}
}
