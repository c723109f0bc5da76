package await_test

import (
	"testing"

	"github.com/await-go/await"
)

func TestSemaphore(t *testing.T) {
	t.Run("FIFO", func(t *testing.T) {
		var myExecutor await.Executor

		myExecutor.Autorun(myExecutor.Run)

		sema := await.NewSemaphore(2)

		var sig await.Signal
		var order []string

		myExecutor.Spawn(await.Block(
			sema.Acquire(2),
			await.Await(&sig),
			await.Do(func() { sema.Release(2) }),
		))

		myExecutor.Spawn(await.Block(
			sema.Acquire(1),
			await.Do(func() { order = append(order, "b") }),
		))
		myExecutor.Spawn(await.Block(
			sema.Acquire(1),
			await.Do(func() { order = append(order, "c") }),
		))

		if len(order) != 0 {
			t.Fatal("Acquire succeeded while the semaphore was full.")
		}

		myExecutor.Spawn(await.Do(sig.Notify))

		if len(order) != 2 || order[0] != "b" || order[1] != "c" {
			t.Errorf("waiters were not granted in FIFO order: %v", order)
		}
	})
	t.Run("Bug-1", func(t *testing.T) {
		var myExecutor await.Executor

		myExecutor.Autorun(myExecutor.Run)

		sema := await.NewSemaphore(1)

		myExecutor.Spawn(await.Select(
			await.Block(
				sema.Acquire(1),
				sema.Acquire(1),
			),
			await.Do(func() { sema.Release(1) }),
		))

		if !sema.TryAcquire(1) {
			t.Fatal("TryAcquire did not succeed when there are no waiters.")
		}
	})
	t.Run("Bug-2", func(t *testing.T) {
		var myExecutor await.Executor

		myExecutor.Autorun(myExecutor.Run)

		sema := await.NewSemaphore(10)

		var sig await.Signal

		myExecutor.Spawn(await.Select(
			await.Await(&sig),
			await.Block(
				sema.Acquire(1),
				sema.Acquire(10),
			),
		))

		if sema.TryAcquire(1) {
			t.Fatal("TryAcquire should not succeed when there are waiters.")
		}

		myExecutor.Spawn(await.Do(sig.Notify))

		if !sema.TryAcquire(1) {
			t.Fatal("TryAcquire did not succeed when there are no waiters.")
		}
	})
	t.Run("CanceledWaiterUnblocks", func(t *testing.T) {
		var myExecutor await.Executor

		myExecutor.Autorun(myExecutor.Run)

		sema := await.NewSemaphore(2)

		var sig await.Signal
		var acquired bool

		// A waiter for 2 blocks a waiter for 1 while 1 is held.
		myExecutor.Spawn(await.Block(sema.Acquire(1), await.Never()))
		myExecutor.Spawn(await.Select(
			await.Await(&sig),
			sema.Acquire(2),
		))
		myExecutor.Spawn(await.Block(
			sema.Acquire(1),
			await.Do(func() { acquired = true }),
		))

		if acquired {
			t.Fatal("Acquire did not queue behind an earlier waiter.")
		}

		// Canceling the blocking waiter must let the later one through.
		myExecutor.Spawn(await.Do(sig.Notify))

		if !acquired {
			t.Fatal("removing a waiter did not unblock the next one.")
		}
	})
}
