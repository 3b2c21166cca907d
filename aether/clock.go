package aether

import (
	"sync"
	"time"

	"github.com/aethermac/lrwpan/lrwpantime"
)

// SimulationClock is the wall-clock-backed time source every radio attached
// to one Aether reads Instant from. Unlike a fully virtual clock, it never
// jumps ahead of real time: the engine's own event loop builds its wait
// timers from real durations derived from this clock, so keeping the two in
// lockstep is what lets a running engine and the Aether agree on "now"
// without a separate simulated-time driver.
type SimulationClock struct {
	mu    sync.Mutex
	epoch time.Time
}

// NewSimulationClock starts a clock whose epoch (tick zero) is now.
func NewSimulationClock() *SimulationClock {
	return &SimulationClock{epoch: time.Now()}
}

// Now returns the current simulated instant.
func (c *SimulationClock) Now() lrwpantime.Instant {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()
	return lrwpantime.Zero.Add(lrwpantime.Seconds(time.Since(epoch).Seconds()))
}

// SleepUntil blocks the calling goroutine until deadline has passed.
func (c *SimulationClock) SleepUntil(deadline lrwpantime.Instant) {
	wait := deadline.Sub(c.Now())
	if wait <= 0 {
		return
	}
	time.Sleep(time.Duration(wait.Seconds() * float64(time.Second)))
}
