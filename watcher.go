package await

import "slices"

// A Watcher is the consumer side of a [Variable]: a lazy, non-restartable
// sequence of value snapshots, one per publication since the watcher was
// created by [Variable.Watch].
//
// Each watcher has its own unbounded FIFO queue; publications never wait
// for a watcher to drain, and every watcher receives every publication in
// release order, with no loss and no duplication.
// The sequence terminates when the variable is closed or the watcher is
// stopped; termination is permanent.
//
// A Watcher must not be shared by more than one [Executor].
type Watcher[T any] struct {
	sig    Signal
	v      *Variable[T]
	queue  []T
	closed bool
}

func (w *Watcher[T]) push(x T) {
	w.queue = append(w.queue, x)
	w.sig.Notify()
}

func (w *Watcher[T]) terminate() {
	w.closed = true
	w.queue = nil
	w.v = nil
	w.sig.Notify()
}

func (w *Watcher[T]) pop() T {
	var zero T
	x := w.queue[0]
	w.queue[0] = zero
	w.queue = w.queue[1:]
	if len(w.queue) == 0 {
		w.queue = nil
	}
	return x
}

// Next returns a [Task] that awaits the next snapshot, then calls
// f(snapshot, true), and then ends.
// If the sequence has terminated, and whenever it terminates while awaiting,
// f is called with a zero value and false instead.
func (w *Watcher[T]) Next(f func(x T, ok bool)) Task {
	if f == nil {
		panic("await(Watcher): nil consumer function")
	}
	return func(co *Coroutine) Result {
		if len(w.queue) != 0 {
			f(w.pop(), true)
			return co.End()
		}
		if w.closed {
			var zero T
			f(zero, false)
			return co.End()
		}
		return co.Yield(&w.sig)
	}
}

// TryNext dequeues the next snapshot without waiting.
// It reports false when the queue is empty or the sequence has terminated.
func (w *Watcher[T]) TryNext() (T, bool) {
	if len(w.queue) == 0 {
		var zero T
		return zero, false
	}
	return w.pop(), true
}

// ForEach returns a [Task] that calls f for every snapshot, in order, and
// ends once the sequence terminates.
func (w *Watcher[T]) ForEach(f func(x T)) Task {
	if f == nil {
		panic("await(Watcher): nil consumer function")
	}
	return func(co *Coroutine) Result {
		for len(w.queue) != 0 {
			f(w.pop())
		}
		if w.closed {
			return co.End()
		}
		return co.Yield(&w.sig)
	}
}

// Stop unsubscribes w from its variable and terminates the sequence,
// discarding queued snapshots. Pending and future Next calls observe
// end-of-sequence. Stop is idempotent.
//
// One should only call this method in a [Task] function.
func (w *Watcher[T]) Stop() {
	if w.closed {
		return
	}
	v := w.v
	if i := slices.Index(v.watchers, w); i != -1 {
		v.watchers = slices.Delete(v.watchers, i, i+1)
	}
	w.terminate()
}
