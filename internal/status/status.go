// Package status provides a thread-safe tracker of acquisition outcomes
// for the dht-reader process. It is read by the periodic status log line
// and by the JSON dump; nothing here touches hardware.
package status

import (
	"errors"
	"sync"
	"time"

	"github.com/Who8MyLunch/Who8MyRPi/internal/dht"
)

// Counts tallies acquisition outcomes since startup.
type Counts struct {
	Attempts   int
	Good       int
	Timeout    int // stuck line, no frame at all
	ShortFrame int
	NoAck      int
	Checksum   int
	OutOfRange int
	Other      int
}

// Config echoes the effective runtime configuration for display.
type Config struct {
	Pin                int
	Mode               string
	PollMicros         int
	PhaseTimeoutMillis int
	MaxBits            int
	RawSamples         int
	IntervalSeconds    int
}

// RawInfo describes the last raw diagnostic capture.
type RawInfo struct {
	Samples int
	Rate    float64
	AllHigh bool
}

// Snapshot is a point-in-time view of process state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Counts      Counts
	LastReading *dht.Reading
	LastGoodAt  time.Time
	LastRaw     *RawInfo
	StartTime   time.Time
	Now         time.Time
	Config      Config
}

// Uptime returns the duration since the process started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable process state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config echo.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordReading registers a successful, checksum-valid reading.
func (t *Tracker) RecordReading(now time.Time, r dht.Reading) {
	t.mu.Lock()
	t.snap.Counts.Attempts++
	t.snap.Counts.Good++
	reading := r
	t.snap.LastReading = &reading
	t.snap.LastGoodAt = now
	t.mu.Unlock()
}

// RecordFailure registers a failed attempt, classified by error.
// An empty bit sequence (sensor never answered) is recorded with a nil
// error as a timeout.
func (t *Tracker) RecordFailure(err error) {
	t.mu.Lock()
	t.snap.Counts.Attempts++
	switch {
	case err == nil:
		t.snap.Counts.Timeout++
	case errors.Is(err, dht.ErrShortFrame):
		t.snap.Counts.ShortFrame++
	case errors.Is(err, dht.ErrNoAck):
		t.snap.Counts.NoAck++
	case errors.Is(err, dht.ErrChecksum):
		t.snap.Counts.Checksum++
	case errors.Is(err, dht.ErrOutOfRange):
		t.snap.Counts.OutOfRange++
	default:
		t.snap.Counts.Other++
	}
	t.mu.Unlock()
}

// RecordRaw registers a raw diagnostic capture.
func (t *Tracker) RecordRaw(info RawInfo) {
	t.mu.Lock()
	t.snap.Counts.Attempts++
	raw := info
	t.snap.LastRaw = &raw
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the process state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
