package await

import "slices"

// Semaphore provides a way to bound asynchronous access to a resource.
// The callers can request access with a given weight.
//
// Waiters are served first-in-first-out: as long as there are waiters,
// new acquirers queue behind them even if their weight would fit.
//
// Note that this Semaphore type does not provide backpressure for spawning
// a lot of coroutines. One should instead look for a sync implementation.
//
// A Semaphore must not be shared by more than one [Executor].
type Semaphore struct {
	size    int64
	cur     int64
	waiters []*waiter
}

// NewSemaphore creates a new weighted semaphore with the given maximum
// combined weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// Acquire returns a [Task] that awaits until a weight of n is acquired from
// the semaphore, and then ends.
//
// If the coroutine running the returned task is ended before it resumes,
// the request is withdrawn; a weight that was already granted is returned
// to the semaphore.
func (s *Semaphore) Acquire(n int64) Task {
	if n < 0 {
		panic("await(Semaphore): negative weight")
	}
	return func(co *Coroutine) Result {
		if len(s.waiters) == 0 && s.size-s.cur >= n {
			s.cur += n
			return co.End()
		}
		if n > s.size {
			return co.Yield() // Impossible to succeed.
		}
		w := &waiter{s: s, co: co, n: n}
		s.waiters = append(s.waiters, w)
		co.Cleanup(w)
		return co.Await(w).End()
	}
}

// TryAcquire attempts to acquire a weight of n from the semaphore without
// waiting. It reports whether the acquisition succeeded.
// TryAcquire never succeeds while there are waiters.
//
// One should only call this method in a [Task] function.
func (s *Semaphore) TryAcquire(n int64) bool {
	if n < 0 {
		panic("await(Semaphore): negative weight")
	}
	if len(s.waiters) != 0 || s.size-s.cur < n {
		return false
	}
	s.cur += n
	return true
}

// Release releases the semaphore with a weight of n.
//
// One should only call this method in a [Task] function.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("await(Semaphore): negative weight")
	}
	if s.cur < n {
		panic("await(Semaphore): released more than held")
	}
	s.cur -= n
	s.notifyWaiters()
}

func (s *Semaphore) notifyWaiters() {
	i := 0
	for i < len(s.waiters) {
		w := s.waiters[i]
		if s.size-s.cur < w.n {
			break
		}
		s.cur += w.n
		w.granted, w.n = w.n, 0
		w.Notify()
		i++
	}
	s.waiters = slices.Delete(s.waiters, 0, i)
}

// A waiter is a queued acquisition request.
// Its Cleanup runs whenever the waiting coroutine resumes or ends:
// on the resume that follows a grant, the granted weight is handed over to
// the acquirer; on an end, whatever the request holds goes back to the
// semaphore.
type waiter struct {
	Signal
	s       *Semaphore
	co      *Coroutine
	n       int64 // pending weight; zero once granted
	granted int64 // granted weight, not yet handed over
}

func (w *waiter) Cleanup() {
	s := w.s
	switch {
	case w.n != 0:
		// Ended while still queued.
		if i := slices.Index(s.waiters, w); i != -1 {
			s.waiters = slices.Delete(s.waiters, i, i+1)
		}
		s.notifyWaiters()
	case w.granted != 0 && w.co.Ended():
		// Granted, but ended before resuming.
		s.cur -= w.granted
		w.granted = 0
		s.notifyWaiters()
	default:
		w.granted = 0
	}
	w.s = nil
	w.co = nil
}
