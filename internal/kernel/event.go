// Package kernel implements the discrete-event simulation core: a
// priority queue of timestamped callbacks, cancellation, and
// simulation-time / wall-clock stop conditions.
package kernel

// Callback is invoked by the Kernel when its Event fires. It receives the
// Kernel itself rather than a stored back-reference, so state never forms
// an ownership cycle between the kernel and its callers.
type Callback func(k *Kernel)

// Event pairs a scheduled callback with its fire time and insertion
// sequence number. Sequence numbers break ties between events scheduled
// for the same simulation time in FIFO order.
type Event struct {
	Time     float64
	Seq      uint64
	Callback Callback
	id       EventID
	index    int // position in the heap, maintained by container/heap
}

// EventID identifies a scheduled Event for later cancellation. The zero
// value is not a valid ID; Cancel(nil-equivalent) is a no-op by passing 0.
type EventID uint64
