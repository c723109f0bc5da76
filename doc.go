// Package await provides two asynchronous coordination primitives, promises
// and watched variables, together with the small single-threaded cooperative
// runtime they are built on.
//
// Since Go has already done a great job in bringing green/virtual threads
// into life, this package only implements a single-threaded [Executor] type,
// which some refer to as an async runtime.
// One can create as many executors as they like.
//
// # Coroutines and Events
//
// An async [Task] is spawned with a [Coroutine] to take care of it.
// In this user-provided function, one can return a specific [Result] to tell
// a coroutine to watch and await some events (e.g. [Signal], [State], etc.),
// and the coroutine re-runs the task whenever any of these events notifies.
// All waiting is expressed this way; nothing in this package spins or blocks.
//
// Coroutines spawned by an [Executor] are root coroutines.
// Coroutines spawned by the [Coroutine.Spawn] method, in a [Task] function,
// are child coroutines.
// Child coroutines are ended when their parent resumes or ends, or when the
// parent makes a transition to work on another [Task].
//
// # Promises
//
// A [Promise] is a write-once value cell shared between one producer and any
// number of consumers.
// [NewPromise] emits the producer together with a [Handle], the consumer side.
// Handles are plain values; copying a Handle yields another consumer, and all
// copies observe the same settlement.
// The first call of [Promise.Resolve] or [Promise.Reject] wins; later
// settlement attempts report [ErrAlreadyResolved] and leave the original
// outcome untouched.
// A producer that goes out of business without resolving should call
// [Promise.Abandon], after which every consumer observes [ErrAbandoned].
//
// # Watched Variables
//
// A [Variable] is a mutually-exclusive container whose mutations can be
// observed as an asynchronous sequence of value snapshots.
// [Variable.Lock] grants scoped exclusive access through a [Guard]; the guard
// records whether any mutable access happened during its scope and, on
// release, publishes a clone of the value to every [Watcher] if so.
// Read-only access through [Guard.Get] never publishes; a mutable access
// always does, even when it writes the very bits that were already there.
// Detection is by access, not by comparison, so the element type needs no
// equality.
// [Variable.LockTask] extends the exclusive scope over an asynchronous task,
// keeping other lockers out across suspension points.
//
// A [Watcher] is created by [Variable.Watch] and observes mutations from that
// point forward. Each watcher has its own unbounded queue; a slow watcher
// never blocks a guard release, and every watcher receives every publication
// in release order. Closing the variable terminates all of its watchers.
//
// A [Variable] differs from a [State] in that a State notifies on every Set
// while a Variable notifies once per exclusive scope that actually exercised
// mutable access, and delivers queued snapshots rather than a live value.
//
// # Single-Executor Discipline
//
// None of the types in this package are safe for concurrent use.
// A Signal, State, WaitGroup, Semaphore, Promise or Variable must not be
// shared by more than one [Executor], and their methods, unless documented
// otherwise, should only be called in a [Task] function.
// To interact from another goroutine, spawn a task onto the executor that
// owns the value, as in:
//
//	myExecutor.Spawn(await.Do(func() { p.Resolve(42) }))
//
// # Panics
//
// A [Task] that panics ends its coroutine; pending cleanups still run.
// The [Executor.Run] method re-panics with every panic recorded during the
// drain, after the queue is emptied.
package await
