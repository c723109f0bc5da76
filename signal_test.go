package await_test

import (
	"sync"
	"testing"
	"time"

	"github.com/await-go/await"
)

func TestSignal(t *testing.T) {
	t.Run("Inline", func(t *testing.T) {
		var myExecutor await.Executor

		myExecutor.Autorun(myExecutor.Run)

		var sig await.Signal
		var n int

		myExecutor.Spawn(await.Await(&sig).Then(await.Do(func() { n++ })))
		myExecutor.Spawn(await.Await(&sig).Then(await.Do(func() { n++ })))

		myExecutor.Spawn(await.Do(sig.Notify))

		if n != 2 {
			t.Errorf("n = %v, want 2", n)
		}

		// Notifying again wakes nobody; listeners are deregistered on
		// resume.
		myExecutor.Spawn(await.Do(sig.Notify))

		if n != 2 {
			t.Errorf("n = %v, want 2", n)
		}
	})
	t.Run("Timer", func(t *testing.T) {
		var myExecutor await.Executor

		var wg sync.WaitGroup

		myExecutor.Autorun(func() { wg.Go(myExecutor.Run) })

		sleep := func(d time.Duration) await.Task {
			return func(co *await.Coroutine) await.Result {
				var sig await.Signal
				tm := time.AfterFunc(d, func() {
					myExecutor.Spawn(await.Do(sig.Notify))
				})
				co.CleanupFunc(func() { tm.Stop() })
				return co.Await(&sig).End()
			}
		}

		var sig await.Signal

		myExecutor.Spawn(await.LoopN(4, await.Block(
			sleep(50*time.Millisecond),
			await.Do(sig.Notify),
		)))

		tasks := make([]await.Task, 20)

		for i := range tasks {
			d := time.Duration(i) * 10 * time.Millisecond
			tasks[i] = await.Select(
				await.Await(&sig),
				sleep(d),
			)
		}

		myExecutor.Spawn(await.Join(tasks...))

		wg.Wait()
	})
}
