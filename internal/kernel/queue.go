package kernel

import "container/heap"

// queue is a binary-heap-backed priority queue of Events ordered by
// (Time, Seq). Cancelled events are tombstoned in place (Callback set to
// nil) rather than removed from the heap, so Cancel is a map lookup
// with no heap reordering; pop skips tombstones.
type queue struct {
	heap    eventHeap
	byID    map[EventID]*Event
	nextSeq uint64
	nextID  EventID
}

func newQueue() *queue {
	return &queue{byID: make(map[EventID]*Event)}
}

func (q *queue) push(t float64, cb Callback) EventID {
	q.nextSeq++
	q.nextID++
	id := q.nextID
	ev := &Event{Time: t, Seq: q.nextSeq, Callback: cb, id: id}
	heap.Push(&q.heap, ev)
	q.byID[id] = ev
	return id
}

// pop removes and returns the next live event, skipping any tombstoned
// (cancelled) events it encounters along the way. It panics if the queue
// is empty, mirroring the "pop from empty queue" programmer-error
// contract in spec.md §4.A / §7.
func (q *queue) pop() *Event {
	for {
		if q.heap.Len() == 0 {
			panic("kernel: pop from empty event queue")
		}
		ev := heap.Pop(&q.heap).(*Event)
		if ev.Callback == nil {
			// tombstoned by cancel; its id was already removed from byID
			continue
		}
		delete(q.byID, ev.id)
		return ev
	}
}

// cancel marks the event referenced by id as dead. Cancelling an unknown
// or already-fired id is a no-op.
func (q *queue) cancel(id EventID) {
	ev, ok := q.byID[id]
	if !ok {
		return
	}
	delete(q.byID, id)
	ev.Callback = nil
}

func (q *queue) empty() bool {
	return len(q.byID) == 0
}

func (q *queue) len() int {
	return len(q.byID)
}

// eventHeap implements container/heap.Interface, ordering by (Time, Seq).
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	ev := x.(*Event)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*h = old[:n-1]
	return ev
}
