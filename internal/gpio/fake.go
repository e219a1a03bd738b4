package gpio

import "errors"

// OpKind identifies a recorded port operation.
type OpKind int

const (
	OpSetMode OpKind = iota
	OpWrite
	OpSetPull
	OpDelayMicros
	OpDelayMillis
)

// Op is a single recorded port operation. Reads are not recorded (a busy
// polling loop produces thousands); use ReadCount instead.
type Op struct {
	Kind   OpKind
	Pin    int
	Mode   Mode  // OpSetMode
	Level  Level // OpWrite
	Pull   Pull  // OpSetPull
	Amount int   // delay amount: µs for OpDelayMicros, ms for OpDelayMillis
}

// Segment is one stretch of a scripted waveform: the line holds Level for
// Micros microseconds of virtual time.
type Segment struct {
	Level  Level
	Micros int64
}

// HighFor returns a segment holding the line high for us microseconds.
func HighFor(us int64) Segment { return Segment{Level: High, Micros: us} }

// LowFor returns a segment holding the line low for us microseconds.
func LowFor(us int64) Segment { return Segment{Level: Low, Micros: us} }

// FakePort is a test double with a scripted data line and a virtual clock.
//
// The data line is described as a waveform over virtual time rather than a
// queue of values: Read returns the level of the segment covering the
// current clock, and the clock advances only through DelayMicros and
// DelayMillis. Polling loops therefore observe exactly the pulse widths the
// script describes, independent of how often they read. Past the end of the
// waveform the last level persists, which is how a stuck line is simulated.
type FakePort struct {
	// Waveform is the scripted data line.
	Waveform []Segment

	// Ops records mode, write, pull and delay calls in order.
	Ops []Op

	// ReadCount counts Read calls.
	ReadCount int

	// Micros is the virtual clock in microseconds.
	Micros int64

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// SetModeError, if set, will be returned by SetMode()
	SetModeError error

	// WriteError, if set, will be returned by Write()
	WriteError error
}

// NewFakePort creates a FakePort with the given scripted waveform.
func NewFakePort(waveform []Segment) *FakePort {
	return &FakePort{Waveform: waveform}
}

// SetMode records the call.
func (f *FakePort) SetMode(pin int, mode Mode) error {
	if f.SetModeError != nil {
		return f.SetModeError
	}
	f.Ops = append(f.Ops, Op{Kind: OpSetMode, Pin: pin, Mode: mode})
	return nil
}

// Read returns the waveform level at the current virtual clock.
// Past the end of the waveform the last level persists.
func (f *FakePort) Read(pin int) (Level, error) {
	f.ReadCount++
	if f.ReadError != nil {
		return Low, f.ReadError
	}
	if len(f.Waveform) == 0 {
		return Low, errors.New("no waveform scripted")
	}
	t := f.Micros
	for _, seg := range f.Waveform {
		if t < seg.Micros {
			return seg.Level, nil
		}
		t -= seg.Micros
	}
	return f.Waveform[len(f.Waveform)-1].Level, nil
}

// Write records the call.
func (f *FakePort) Write(pin int, level Level) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Ops = append(f.Ops, Op{Kind: OpWrite, Pin: pin, Level: level})
	return nil
}

// SetPull records the call.
func (f *FakePort) SetPull(pin int, pull Pull) error {
	f.Ops = append(f.Ops, Op{Kind: OpSetPull, Pin: pin, Pull: pull})
	return nil
}

// DelayMicros advances the virtual clock by d microseconds.
// Consecutive delays of the same kind coalesce into one op, so a polling
// loop's millions of delays do not grow the log unboundedly.
func (f *FakePort) DelayMicros(d int) {
	f.logDelay(OpDelayMicros, d)
	f.Micros += int64(d)
}

// DelayMillis advances the virtual clock by d milliseconds.
func (f *FakePort) DelayMillis(d int) {
	f.logDelay(OpDelayMillis, d)
	f.Micros += int64(d) * 1000
}

func (f *FakePort) logDelay(kind OpKind, amount int) {
	if n := len(f.Ops); n > 0 && f.Ops[n-1].Kind == kind {
		f.Ops[n-1].Amount += amount
		return
	}
	f.Ops = append(f.Ops, Op{Kind: kind, Amount: amount})
}

// NowMillis returns the virtual clock in milliseconds.
func (f *FakePort) NowMillis() int64 {
	return f.Micros / 1000
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the clock, clears the op log and reopens the port.
func (f *FakePort) Reset() {
	f.Ops = nil
	f.ReadCount = 0
	f.Micros = 0
	f.Closed = false
}
