package await

// A Task is a piece of work that a coroutine is given to do when it is
// spawned. The return value of a task, a [Result], determines what next for
// a coroutine to do.
//
// The argument co must not escape to another goroutine, because co may be
// put into pool for recycling when co ends.
type Task func(co *Coroutine) Result

func must(t Task) Task {
	if t == nil {
		panic("await: nil Task")
	}
	return t
}

// intercept wraps t so that f decides what a completion of t (anything other
// than a yield or a transition) amounts to.
// Yields and transitions pass through, with their continuation task rewrapped
// so that the decision survives suspensions.
// The wrapping is stateless; an intercepted task can be entered any number of
// times.
func intercept(t Task, f func(co *Coroutine, res Result) Result) Task {
	var wrap func(Task) Task
	wrap = func(t Task) Task {
		return func(co *Coroutine) Result {
			res := t(co)
			if res.action == doYield || res.action == doTransition {
				if res.task != nil {
					res.task = wrap(res.task)
				}
				return res
			}
			return f(co, res)
		}
	}
	return wrap(t)
}

// Then returns a [Task] that first works on t, then next after t ends.
// Break and continue results pass through to an enclosing [Loop].
//
// To chain multiple tasks, use [Block] function.
func (t Task) Then(next Task) Task {
	next = must(next)
	return intercept(t, func(co *Coroutine, res Result) Result {
		if res.action == doEnd {
			return co.Transition(next)
		}
		return res
	})
}

// Do returns a [Task] that calls f, and then ends.
func Do(f func()) Task {
	return func(co *Coroutine) Result {
		f()
		return co.End()
	}
}

// End returns a [Task] that ends without doing anything.
func End() Task {
	return (*Coroutine).End
}

// Never returns a [Task] that never ends.
// Tasks in a [Block] after Never are never getting worked on.
func Never() Task {
	return func(co *Coroutine) Result {
		return co.Yield()
	}
}

// Await returns a [Task] that awaits some events until any of them notifies,
// and then ends.
// If ev is empty, Await returns a [Task] that never ends.
func Await(ev ...Event) Task {
	if len(ev) == 0 {
		return Never()
	}
	return func(co *Coroutine) Result {
		return co.Await(ev...).End()
	}
}

// Block returns a [Task] that runs each of the given tasks in sequence.
// When one task ends, Block runs another.
func Block(s ...Task) Task {
	switch len(s) {
	case 0:
		return End()
	case 1:
		return must(s[0])
	}
	t := must(s[len(s)-1])
	for i := len(s) - 2; i >= 0; i-- {
		t = s[i].Then(t)
	}
	return t
}

// Break returns a [Task] that breaks a [Loop] (or [LoopN]).
func Break() Task {
	return (*Coroutine).Break
}

// Continue returns a [Task] that continues a [Loop] (or [LoopN]).
func Continue() Task {
	return (*Coroutine).Continue
}

// Loop returns a [Task] that forms a loop, which would run t repeatedly.
// Both [Coroutine.Break] and [Break] can break this loop early.
// Both [Coroutine.Continue] and [Continue] can continue this loop early.
func Loop(t Task) Task {
	t = must(t)
	var loop Task
	loop = func(co *Coroutine) Result {
		return co.Transition(intercept(t, func(co *Coroutine, res Result) Result {
			switch res.action {
			case doEnd, doContinue:
				return co.Transition(loop)
			case doBreak:
				return co.End()
			default:
				return res
			}
		}))
	}
	return loop
}

// LoopN returns a [Task] that forms a loop, which would run t repeatedly
// for n times.
// Both [Coroutine.Break] and [Break] can break this loop early.
// Both [Coroutine.Continue] and [Continue] can continue this loop early.
func LoopN[Int intType](n Int, t Task) Task {
	t = must(t)
	return func(co *Coroutine) Result {
		i := Int(0)
		return co.Transition(Loop(func(co *Coroutine) Result {
			if i >= n {
				return co.Break()
			}
			i++
			return co.Transition(t)
		}))
	}
}

type intType interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

func resumeParent(co *Coroutine) Result {
	co.Parent().Resume()
	return co.End()
}

// Join returns a [Task] that runs each of the given tasks in its own
// child coroutine and awaits until all of them complete, and then ends.
//
// When passed no arguments, Join ends immediately.
func Join(s ...Task) Task {
	z := make([]Task, len(s))
	for i, t := range s {
		z[i] = must(t)
	}
	return func(co *Coroutine) Result {
		wg := new(WaitGroup)
		wg.Add(len(z))
		for _, t := range z {
			co.Spawn(t.Then(Do(wg.Done)))
		}
		if wg.n == 0 {
			return co.End()
		}
		return co.Await(wg).End()
	}
}

// Select returns a [Task] that runs each of the given tasks in its own
// child coroutine and awaits until any of them completes, and then ends.
// When Select ends, tasks other than the one that completes are ended
// (see [Coroutine.Spawn]).
//
// When passed no arguments, Select returns a [Task] that never ends.
func Select(s ...Task) Task {
	z := make([]Task, len(s))
	for i, t := range s {
		z[i] = must(t).Then(Task(resumeParent))
	}
	return func(co *Coroutine) Result {
		for _, t := range z {
			co.Spawn(t)
			if co.Resumed() {
				break
			}
		}
		return co.Await().End()
	}
}

// Spawn returns a [Task] that runs t in a child coroutine and awaits until
// t completes, and then ends.
//
// Spawn(t) is equivalent to Join(t) or Select(t), but cheaper and clearer.
func Spawn(t Task) Task {
	t = must(t).Then(Task(resumeParent))
	return func(co *Coroutine) Result {
		co.Spawn(t)
		return co.Await().End()
	}
}
