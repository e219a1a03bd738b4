//go:build !linux

package gpio

import "errors"

// RealPort is not available on non-Linux platforms.
type RealPort struct{}

// NewRealPort returns an error on non-Linux platforms.
func NewRealPort() (*RealPort, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// NewRealPortChip returns an error on non-Linux platforms.
func NewRealPortChip(name string) (*RealPort, error) {
	return NewRealPort()
}

// SetMode is not implemented on non-Linux platforms.
func (p *RealPort) SetMode(pin int, mode Mode) error {
	return errors.New("gpio: not supported")
}

// Read is not implemented on non-Linux platforms.
func (p *RealPort) Read(pin int) (Level, error) {
	return Low, errors.New("gpio: not supported")
}

// Write is not implemented on non-Linux platforms.
func (p *RealPort) Write(pin int, level Level) error {
	return errors.New("gpio: not supported")
}

// SetPull is not implemented on non-Linux platforms.
func (p *RealPort) SetPull(pin int, pull Pull) error {
	return errors.New("gpio: not supported")
}

// DelayMicros does nothing on non-Linux platforms.
func (p *RealPort) DelayMicros(d int) {}

// DelayMillis does nothing on non-Linux platforms.
func (p *RealPort) DelayMillis(d int) {}

// NowMillis always returns 0 on non-Linux platforms.
func (p *RealPort) NowMillis() int64 {
	return 0
}

// Close is not implemented on non-Linux platforms.
func (p *RealPort) Close() error {
	return nil
}
