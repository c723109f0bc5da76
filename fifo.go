package await

// A fifo is a growable ring buffer.
// The zero value is an empty queue ready for use.
type fifo[E any] struct {
	items []E
	head  int
	size  int
}

func (q *fifo[E]) Empty() bool {
	return q.size == 0
}

func (q *fifo[E]) Push(v E) {
	if q.size == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.size)%len(q.items)] = v
	q.size++
}

func (q *fifo[E]) Pop() (v E) {
	v, q.items[q.head] = q.items[q.head], v
	q.head = (q.head + 1) % len(q.items)
	q.size--
	if q.size == 0 {
		q.head = 0
	}
	return v
}

func (q *fifo[E]) grow() {
	n := len(q.items) * 2
	if n == 0 {
		n = 8
	}
	items := make([]E, n)
	copy(items, q.items[q.head:])
	copy(items[len(q.items)-q.head:], q.items[:q.head])
	q.items, q.head = items, 0
}
