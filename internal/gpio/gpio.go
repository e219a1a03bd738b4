// Package gpio provides single-pin digital I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Mode configures a pin's direction.
type Mode int

const (
	Input Mode = iota
	Output
)

// Level is a digital line level.
type Level int

const (
	Low Level = iota
	High
)

// Pull configures a pin's internal pull resistor.
type Pull int

const (
	PullOff Pull = iota
	PullDown
	PullUp
)

// Port is the GPIO capability the acquisition core runs against.
// All pin numbers use BCM numbering. Pin-mode state is process-wide;
// callers must serialize access to a given pin.
type Port interface {
	// SetMode configures the pin direction.
	SetMode(pin int, mode Mode) error

	// Read returns the current line level of an input pin.
	Read(pin int) (Level, error)

	// Write drives an output pin to the given level.
	Write(pin int, level Level) error

	// SetPull configures the pin's pull resistor.
	SetPull(pin int, pull Pull) error

	// DelayMicros blocks the calling goroutine for d microseconds.
	// Sub-millisecond delays busy-wait; there is no suspension point.
	DelayMicros(d int)

	// DelayMillis blocks the calling goroutine for d milliseconds.
	DelayMillis(d int)

	// NowMillis returns a monotonic millisecond counter. The epoch is
	// arbitrary but fixed for the lifetime of the Port.
	NowMillis() int64

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinData  = 4  // sensor data line
	DefaultPinPower = 22 // sensor power switch
)

func (m Mode) String() string {
	if m == Output {
		return "output"
	}
	return "input"
}

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

func (p Pull) String() string {
	switch p {
	case PullDown:
		return "pull-down"
	case PullUp:
		return "pull-up"
	}
	return "pull-off"
}
