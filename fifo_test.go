package await

import "testing"

func TestFIFO(t *testing.T) {
	t.Run("Overall", func(t *testing.T) {
		var q fifo[int]

		if !q.Empty() {
			t.FailNow()
		}

		for i := range 10 {
			q.Push(i)
		}

		for i := range 5 {
			if q.Pop() != i {
				t.FailNow()
			}
		}

		// Wrap around the ring and force a grow.
		for i := 10; i < 30; i++ {
			q.Push(i)
		}

		for i := 5; i < 30; i++ {
			if q.Empty() || q.Pop() != i {
				t.FailNow()
			}
		}

		if !q.Empty() {
			t.FailNow()
		}
	})
	t.Run("Interleaved", func(t *testing.T) {
		var q fifo[int]

		next := 0
		for i := range 100 {
			q.Push(2 * i)
			q.Push(2*i + 1)
			if q.Pop() != next {
				t.FailNow()
			}
			next++
		}

		for !q.Empty() {
			if q.Pop() != next {
				t.FailNow()
			}
			next++
		}

		if next != 200 {
			t.FailNow()
		}
	})
}
