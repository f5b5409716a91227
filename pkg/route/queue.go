package route

// entry is a tentative distance for a station. A station may have several
// entries in the queue; all but the smallest are skipped when popped.
type entry struct {
	key  string
	dist float64
}

// queue is a min-heap of entries ordered by distance, then key.
type queue []entry

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].key < q[j].key
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(entry)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}
