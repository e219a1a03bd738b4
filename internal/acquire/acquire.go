// Package acquire implements bit acquisition for the single-wire timing
// protocol spoken by DHT22-class sensors: the host start pulse, the
// busy-wait pulse-width decoder, and a raw fixed-cadence sampler for
// diagnostics. The package has no hardware dependencies of its own; all
// I/O and time goes through the gpio.Port capability, so everything here
// is testable against a scripted fake.
package acquire

import (
	"errors"

	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

// ErrTimeout is returned when a busy-wait phase exceeds its deadline
// without observing the expected line transition. A timeout is a normal
// operating condition (sensor absent or done talking), not a fault.
var ErrTimeout = errors.New("timed out waiting for line transition")

// Default tuning values. The protocol tolerates wide timing variation so
// these only need the right order of magnitude.
const (
	DefaultPollMicros         = 1
	DefaultPhaseTimeoutMillis = 1000
	DefaultMaxBits            = 50
	DefaultRawSamples         = 4000
)

// Options tunes the pulse-width decoder.
type Options struct {
	// PollMicros is the busy-wait polling interval in microseconds.
	PollMicros int

	// PhaseTimeoutMillis bounds each busy-wait phase with a wall-clock
	// deadline against the port's monotonic millisecond counter.
	PhaseTimeoutMillis int

	// MaxBits caps the number of bits one acquisition collects.
	MaxBits int
}

func (o Options) withDefaults() Options {
	if o.PollMicros <= 0 {
		o.PollMicros = DefaultPollMicros
	}
	if o.PhaseTimeoutMillis <= 0 {
		o.PhaseTimeoutMillis = DefaultPhaseTimeoutMillis
	}
	if o.MaxBits <= 0 {
		o.MaxBits = DefaultMaxBits
	}
	return o
}

// RawOptions tunes the raw sampler.
type RawOptions struct {
	// Samples is the exact number of line levels to record.
	Samples int

	// PollMicros is the delay between consecutive samples in microseconds.
	PollMicros int
}

func (o RawOptions) withDefaults() RawOptions {
	if o.Samples <= 0 {
		o.Samples = DefaultRawSamples
	}
	if o.PollMicros <= 0 {
		o.PollMicros = DefaultPollMicros
	}
	return o
}

// RawCapture is an oscilloscope-style record of raw line levels.
type RawCapture struct {
	// Levels holds the recorded line levels in sample order.
	Levels []gpio.Level

	// StartMillis and StopMillis bracket the capture on the port's
	// monotonic millisecond clock.
	StartMillis int64
	StopMillis  int64

	// AllHigh is set when every recorded level was high. The line idles
	// high, so an all-high capture means the sensor never responded.
	// This is a warning, not an error.
	AllHigh bool
}

// ElapsedMillis returns the wall-clock duration of the capture.
func (c RawCapture) ElapsedMillis() int64 {
	return c.StopMillis - c.StartMillis
}

// Rate returns the achieved sampling rate in samples per second, or 0 if
// the capture was too short for the millisecond clock to resolve.
func (c RawCapture) Rate() float64 {
	elapsed := c.ElapsedMillis()
	if elapsed <= 0 {
		return 0
	}
	return float64(len(c.Levels)) / (float64(elapsed) / 1000.0)
}

// Result is the outcome of one acquisition session. Exactly one of Bits
// and Raw is populated, depending on the sampler used.
type Result struct {
	// Bits is the decoded bit sequence, possibly shorter than requested
	// when the sensor stopped transmitting. Never padded.
	Bits []int

	// Raw is the raw capture, in raw mode.
	Raw *RawCapture
}
