package kernel

import (
	"time"

	"github.com/sirupsen/logrus"
)

// State is the run state of a Kernel.
type State int

const (
	Ready State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Kernel is the discrete-event simulation core described in spec.md §4.A.
// It owns the event queue exclusively; every other piece of simulation
// state (reader, tags, statistics) is owned by the caller and threaded
// through callback arguments, never stored on the Kernel itself.
type Kernel struct {
	// MaxSimulationTime stops the run once Time() exceeds it. Zero means
	// no simulation-time limit.
	MaxSimulationTime float64
	// MaxRealTime stops the run once wall-clock time elapsed exceeds it.
	// Zero means no real-time limit.
	MaxRealTime float64
	// Log receives structured progress/diagnostic entries. Defaults to
	// logrus.StandardLogger() if left nil.
	Log *logrus.Logger

	state       State
	queue       *queue
	simTime     float64
	userStopped bool

	realStart time.Time
	realStop  time.Time
}

// New returns a Kernel ready to Run.
func New() *Kernel {
	return &Kernel{
		state: Ready,
		queue: newQueue(),
		Log:   logrus.StandardLogger(),
	}
}

// Time returns the current simulation clock.
func (k *Kernel) Time() float64 { return k.simTime }

// State returns the kernel's run state.
func (k *Kernel) State() State { return k.state }

// Push schedules cb to fire dt seconds after the current simulation time.
func (k *Kernel) Push(dt float64, cb Callback) EventID {
	return k.queue.push(k.simTime+dt, cb)
}

// Call schedules cb to fire at the current simulation time (dt=0): it
// will run strictly after the currently executing callback returns, and
// before any event already scheduled for a later time.
func (k *Kernel) Call(cb Callback) EventID {
	return k.queue.push(k.simTime, cb)
}

// Cancel tombstones a previously scheduled event. Cancelling an unknown
// or zero id is a no-op.
func (k *Kernel) Cancel(id EventID) {
	if id == 0 {
		return
	}
	k.queue.cancel(id)
}

// Stop requests that Run exit after the current callback returns.
func (k *Kernel) Stop() {
	k.userStopped = true
}

// QueueLen reports the number of live (non-tombstoned) scheduled events.
func (k *Kernel) QueueLen() int { return k.queue.len() }

// RealTimeElapsed returns the wall-clock duration of the run so far, in
// seconds. It is zero before Run starts and frozen once Run returns.
func (k *Kernel) RealTimeElapsed() float64 {
	switch k.state {
	case Ready:
		return 0
	case Running:
		return time.Since(k.realStart).Seconds()
	default:
		return k.realStop.Sub(k.realStart).Seconds()
	}
}

// Run starts the kernel's event loop at entry, which is scheduled to fire
// immediately (time 0). Run refuses to execute unless the kernel is in
// the Ready state — re-entering a running or stopped kernel is a
// programmer error and panics.
func (k *Kernel) Run(entry Callback) {
	if k.state != Ready {
		panic("kernel: Run called while not in READY state")
	}
	k.state = Running
	k.realStart = time.Now()
	k.queue.push(0, entry)
	k.Log.Debug("kernel: run started")

	for !k.queue.empty() && !k.shouldStop() {
		ev := k.queue.pop()
		k.simTime = ev.Time
		ev.Callback(k)
	}

	k.state = Stopped
	k.realStop = time.Now()
	k.Log.WithFields(logrus.Fields{
		"sim_time":  k.simTime,
		"real_time": k.RealTimeElapsed(),
	}).Debug("kernel: run finished")
}

func (k *Kernel) shouldStop() bool {
	if k.MaxSimulationTime > 0 && k.simTime > k.MaxSimulationTime {
		return true
	}
	if k.MaxRealTime > 0 && k.RealTimeElapsed() > k.MaxRealTime {
		return true
	}
	return k.userStopped
}
