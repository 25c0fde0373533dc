// Package engine provides the tick-based pacing loop that drives the
// world forward in wall-clock time.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Engine drives the simulation forward. Speed is a multiplier over the
// base interval: 1.0 = real-time, 0 = paused. The API layer adjusts
// speed through SetSpeed while Run spins on its own goroutine, so the
// mutable state lives behind a mutex.
type Engine struct {
	Interval time.Duration // Base tick interval (default 1 second)

	// Callbacks populated during setup, fired outside the lock.
	OnTick     func(tick uint64) // Every tick
	OnStatus   func(tick uint64) // Every StatusPeriod ticks
	OnAutosave func(tick uint64) // Every AutosavePeriod ticks

	// StatusPeriod and AutosavePeriod are the tick spacings between the
	// periodic callbacks. Zero disables the callback.
	StatusPeriod   uint64
	AutosavePeriod uint64

	mu      sync.RWMutex
	tick    uint64 // Current tick counter (monotonic, never resets)
	speed   float64
	running bool
}

// NewEngine creates a pacing engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval: time.Second,
		speed:    1.0,
	}
}

// CurrentTick returns the tick counter.
func (e *Engine) CurrentTick() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tick
}

// SetTick seeds the counter, typically from a loaded world state.
func (e *Engine) SetTick(tick uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick = tick
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.speed
}

// SetSpeed adjusts the multiplier; 0 pauses the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Run starts the loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("engine started", "tick", e.CurrentTick(), "speed", e.Speed(),
		"interval", e.Interval)

	for e.Running() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused, sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("engine stopped", "tick", e.CurrentTick())
}

// Stop halts the loop after the current tick finishes.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// step advances one tick and fires the due callbacks.
func (e *Engine) step() {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(tick)
	}

	if e.StatusPeriod > 0 && tick%e.StatusPeriod == 0 && e.OnStatus != nil {
		e.OnStatus(tick)
	}

	if e.AutosavePeriod > 0 && tick%e.AutosavePeriod == 0 && e.OnAutosave != nil {
		e.OnAutosave(tick)
	}
}

// Uptime converts the tick count to the wall-clock duration it
// represents at real-time speed.
func (e *Engine) Uptime() time.Duration {
	return time.Duration(e.CurrentTick()) * e.Interval
}
