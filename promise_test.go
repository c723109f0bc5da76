package await_test

import (
	"errors"
	"testing"

	"github.com/await-go/await"
)

func TestPromiseResolve(t *testing.T) {
	var myExecutor await.Executor

	myExecutor.Autorun(myExecutor.Run)

	p, h := await.NewPromise[int]()

	got := make(map[string]int)

	consume := func(name string) await.Task {
		return h.Await(func(v int, err error) {
			if err != nil {
				t.Errorf("%v: unexpected error: %v", name, err)
				return
			}
			got[name] = v
		})
	}

	myExecutor.Spawn(consume("early1"))
	myExecutor.Spawn(consume("early2"))

	if h.Done() {
		t.Fatal("Done reported true on a pending promise.")
	}

	if _, err := h.Get(); !errors.Is(err, await.ErrPending) {
		t.Fatalf("Get on a pending promise: %v (want ErrPending)", err)
	}

	if len(got) != 0 {
		t.Fatal("a consumer completed before the promise was resolved.")
	}

	if err := p.Resolve(42); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(got) != 2 || got["early1"] != 42 || got["early2"] != 42 {
		t.Errorf("early consumers observed %v, want 42 each", got)
	}

	myExecutor.Spawn(consume("late"))

	if got["late"] != 42 {
		t.Errorf("late consumer observed %v, want 42", got["late"])
	}

	if !h.Done() {
		t.Error("Done reported false on a resolved promise.")
	}

	h2 := h // Handles are values and can be copied freely.

	if v, err := h2.Get(); v != 42 || err != nil {
		t.Errorf("Get = (%v, %v), want (42, nil)", v, err)
	}

	if err := p.Resolve(7); !errors.Is(err, await.ErrAlreadyResolved) {
		t.Errorf("second Resolve: %v (want ErrAlreadyResolved)", err)
	}

	if v, _ := h.Get(); v != 42 {
		t.Errorf("value changed to %v after a failed Resolve", v)
	}
}

func TestPromiseReject(t *testing.T) {
	var myExecutor await.Executor

	myExecutor.Autorun(myExecutor.Run)

	p, h := await.NewPromise[string]()

	errBoom := errors.New("boom")

	var got error

	myExecutor.Spawn(h.Await(func(v string, err error) { got = err }))

	if err := p.Reject(errBoom); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if !errors.Is(got, errBoom) {
		t.Errorf("consumer observed %v, want %v", got, errBoom)
	}

	if _, err := h.Get(); !errors.Is(err, errBoom) {
		t.Errorf("Get after Reject: %v, want %v", err, errBoom)
	}

	if err := p.Resolve("x"); !errors.Is(err, await.ErrAlreadyResolved) {
		t.Errorf("Resolve after Reject: %v (want ErrAlreadyResolved)", err)
	}

	t.Run("NilError", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Reject(nil) did not panic.")
			}
		}()

		p, _ := await.NewPromise[int]()
		p.Reject(nil)
	})
}

func TestPromiseAbandon(t *testing.T) {
	var myExecutor await.Executor

	myExecutor.Autorun(myExecutor.Run)

	p, h := await.NewPromise[int]()

	var got error

	myExecutor.Spawn(h.Await(func(v int, err error) { got = err }))

	p.Abandon()

	if !errors.Is(got, await.ErrAbandoned) {
		t.Errorf("consumer observed %v, want ErrAbandoned", got)
	}

	if err := p.Resolve(1); !errors.Is(err, await.ErrAlreadyResolved) {
		t.Errorf("Resolve after Abandon: %v (want ErrAlreadyResolved)", err)
	}

	p.Abandon() // Abandoning twice is a no-op.

	if _, err := h.Get(); !errors.Is(err, await.ErrAbandoned) {
		t.Errorf("Get after Abandon: %v, want ErrAbandoned", err)
	}
}

func TestPromiseDroppedConsumer(t *testing.T) {
	var myExecutor await.Executor

	myExecutor.Autorun(myExecutor.Run)

	p, h := await.NewPromise[int]()

	var sig await.Signal
	var called bool

	myExecutor.Spawn(await.Select(
		await.Await(&sig),
		h.Await(func(v int, err error) { called = true }),
	))

	myExecutor.Spawn(await.Do(sig.Notify))

	if err := p.Resolve(5); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if called {
		t.Error("a canceled consumer observed the value.")
	}
}
