package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventOrderingByTimeThenInsertion(t *testing.T) {
	k := New()
	var order []string

	k.Run(func(k *Kernel) {
		k.Push(2, func(k *Kernel) { order = append(order, "t2-a") })
		k.Push(1, func(k *Kernel) { order = append(order, "t1") })
		k.Push(2, func(k *Kernel) { order = append(order, "t2-b") })
		k.Push(0, func(k *Kernel) { order = append(order, "t0") })
	})

	assert.Equal(t, []string{"t0", "t1", "t2-a", "t2-b"}, order)
}

func TestCancelPreventsFiring(t *testing.T) {
	k := New()
	fired := false
	var id EventID

	k.Run(func(k *Kernel) {
		id = k.Push(1, func(k *Kernel) { fired = true })
		k.Cancel(id)
	})

	assert.False(t, fired)
	assert.Equal(t, 0, k.QueueLen())
}

func TestCancelNilIsNoOp(t *testing.T) {
	k := New()
	require.NotPanics(t, func() {
		k.Cancel(0)
	})
}

func TestCallFiresBeforeLaterEvents(t *testing.T) {
	k := New()
	var order []string

	k.Run(func(k *Kernel) {
		k.Push(5, func(k *Kernel) { order = append(order, "later") })
		k.Call(func(k *Kernel) { order = append(order, "now") })
	})

	assert.Equal(t, []string{"now", "later"}, order)
}

func TestStopHaltsLoop(t *testing.T) {
	k := New()
	ticks := 0

	var tick Callback
	tick = func(k *Kernel) {
		ticks++
		if ticks >= 3 {
			k.Stop()
			return
		}
		k.Push(1, tick)
	}

	k.Run(tick)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, Stopped, k.State())
}

func TestMaxSimulationTimeStopsRun(t *testing.T) {
	k := New()
	k.MaxSimulationTime = 2.5
	ticks := 0

	var tick Callback
	tick = func(k *Kernel) {
		ticks++
		k.Push(1, tick)
	}

	k.Run(tick)
	assert.Equal(t, 3, ticks) // fires at t=0,1,2; t=3 exceeds the limit
}

func TestRerunPanics(t *testing.T) {
	k := New()
	k.Run(func(k *Kernel) {})
	assert.Panics(t, func() {
		k.Run(func(k *Kernel) {})
	})
}

func TestPopEmptyQueuePanics(t *testing.T) {
	q := newQueue()
	assert.Panics(t, func() {
		q.pop()
	})
}
