package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_EveryAndStop(t *testing.T) {
	m := NewManual()
	var n int
	var h Handle
	h = m.Every(5*time.Second, func() {
		n++
		if n == 3 {
			h.Stop()
		}
	})

	m.Advance(4 * time.Second)
	assert.Equal(t, 0, n)
	m.Advance(time.Second)
	assert.Equal(t, 1, n)
	m.Advance(time.Minute)
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_AfterRunsOnceInOrder(t *testing.T) {
	m := NewManual()
	var order []string
	m.After(2*time.Second, func() { order = append(order, "b") })
	m.After(time.Second, func() { order = append(order, "a") })
	stopped := m.After(time.Second, func() { order = append(order, "never") })
	stopped.Stop()
	stopped.Stop()

	m.Advance(10 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 0, m.Pending())
}

func TestCronScheduler_After(t *testing.T) {
	s := NewCronScheduler(nil)
	s.Start()
	defer s.Stop()

	var fired atomic.Int32
	s.After(20*time.Millisecond, func() { fired.Add(1) })
	cancelled := s.After(20*time.Millisecond, func() { fired.Add(100) })
	cancelled.Stop()

	require.Eventually(t, func() bool { return fired.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestCronScheduler_AfterZeroDelayFiresOnce(t *testing.T) {
	s := NewCronScheduler(nil)
	s.Start()
	defer s.Stop()

	var fired atomic.Int32
	s.After(0, func() { fired.Add(1) })

	require.Eventually(t, func() bool { return fired.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestCronScheduler_EveryRecoversFromPanic(t *testing.T) {
	s := NewCronScheduler(nil)
	s.Start()
	defer s.Stop()

	var ticks atomic.Int32
	h := s.Every(time.Second, func() {
		if ticks.Add(1) == 1 {
			panic("boom")
		}
	})
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	h.Stop()
}
