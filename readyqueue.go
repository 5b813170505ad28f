package so

// ReadyQueue holds runnable descriptors in FIFO order. A descriptor that
// leaves READY while still queued (killed by another process, or dispatched
// by baseScheduler, which scans the table and never dequeues) keeps its
// entry; Dequeue discards such entries, so it only ever returns READY
// descriptors.
type ReadyQueue struct {
	items []*ProcessDescriptor
}

// newReadyQueue returns an empty ready queue.
func newReadyQueue() *ReadyQueue {
	return &ReadyQueue{}
}

// Len returns the number of descriptors currently queued.
func (q *ReadyQueue) Len() int {
	return len(q.items)
}

// Enqueue appends d to the tail of the queue.
func (q *ReadyQueue) Enqueue(d *ProcessDescriptor) {
	q.items = append(q.items, d)
}

// Dequeue removes and returns the first READY descriptor from the head of
// the queue, discarding any entry ahead of it that is no longer READY, or
// returns nil if no READY descriptor is queued.
func (q *ReadyQueue) Dequeue() *ProcessDescriptor {
	for len(q.items) > 0 {
		d := q.items[0]
		q.items = q.items[1:]
		if d.State == Ready {
			return d
		}
	}
	return nil
}

// SortByPriority reorders the queue in ascending priority (lower value runs
// sooner), stable on ties so equal-priority descriptors keep their relative
// queue position. This is the priority-aging scheduler's non-destructive
// re-sort (spec.md §4.4); the other two policies never call it.
func (q *ReadyQueue) SortByPriority() {
	// Insertion sort: the ready queue is bounded by MAX_PROCESSOS (small),
	// and insertion sort is naturally stable without extra bookkeeping.
	for i := 1; i < len(q.items); i++ {
		cur := q.items[i]
		j := i - 1
		for j >= 0 && q.items[j].Priority > cur.Priority {
			q.items[j+1] = q.items[j]
			j--
		}
		q.items[j+1] = cur
	}
}
