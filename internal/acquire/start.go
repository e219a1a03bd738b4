package acquire

import (
	"fmt"

	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

// StartConfig tunes the host start pulse that requests a reading.
//
// Observed implementations disagree on the low hold: some hold for tens of
// microseconds, some for tens of milliseconds. The datasheet requires at
// least 1 ms, so the hold is expressed in whole milliseconds with a 10 ms
// default.
type StartConfig struct {
	// LowHoldMillis is how long the host holds the line low.
	LowHoldMillis int

	// HighHoldMicros is the brief high pulse before releasing the line.
	// The sensor tolerates anything in the 1-20 µs range.
	HighHoldMicros int
}

// Default start pulse timing.
const (
	DefaultLowHoldMillis  = 10
	DefaultHighHoldMicros = 20
)

func (c StartConfig) withDefaults() StartConfig {
	if c.LowHoldMillis <= 0 {
		c.LowHoldMillis = DefaultLowHoldMillis
	}
	if c.HighHoldMicros <= 0 {
		c.HighHoldMicros = DefaultHighHoldMicros
	}
	return c
}

// SendStart transmits the start pulse: drive the line low for the hold
// time, pulse it high briefly, then release it to input with the pull-up
// engaged so the sensor can answer. GPIO failures propagate unchanged.
func SendStart(p gpio.Port, pin int, cfg StartConfig) error {
	cfg = cfg.withDefaults()

	if err := p.SetMode(pin, gpio.Output); err != nil {
		return fmt.Errorf("set output mode: %w", err)
	}
	if err := p.Write(pin, gpio.Low); err != nil {
		return fmt.Errorf("drive low: %w", err)
	}
	p.DelayMillis(cfg.LowHoldMillis)

	if err := p.Write(pin, gpio.High); err != nil {
		return fmt.Errorf("drive high: %w", err)
	}
	p.DelayMicros(cfg.HighHoldMicros)

	if err := p.SetMode(pin, gpio.Input); err != nil {
		return fmt.Errorf("set input mode: %w", err)
	}
	if err := p.SetPull(pin, gpio.PullUp); err != nil {
		return fmt.Errorf("set pull-up: %w", err)
	}
	return nil
}
