package config

import (
	"fmt"

	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

// Validate checks configuration correctness.
// It performs declarative validation only and MUST NOT mutate.
// Zero values mean "use the default" and are always valid; explicit
// values must make sense on their own.
func Validate(cfg *Config) error {
	if cfg.Pin < 0 {
		return fmt.Errorf("pin must not be negative, got %d", cfg.Pin)
	}

	switch cfg.Mode {
	case "", ModeBit, ModeRaw:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeBit, ModeRaw, cfg.Mode)
	}

	switch cfg.Unit {
	case "", UnitCelsius, UnitFahrenheit:
	default:
		return fmt.Errorf("unit must be %q or %q, got %q", UnitCelsius, UnitFahrenheit, cfg.Unit)
	}

	if cfg.IntervalSeconds < 0 {
		return fmt.Errorf("interval_seconds must not be negative, got %d", cfg.IntervalSeconds)
	}

	if cfg.Acquire.PollMicros < 0 {
		return fmt.Errorf("acquire.poll_micros must not be negative, got %d", cfg.Acquire.PollMicros)
	}
	if cfg.Acquire.PhaseTimeoutMillis < 0 {
		return fmt.Errorf("acquire.phase_timeout_millis must not be negative, got %d", cfg.Acquire.PhaseTimeoutMillis)
	}
	if cfg.Acquire.MaxBits < 0 {
		return fmt.Errorf("acquire.max_bits must not be negative, got %d", cfg.Acquire.MaxBits)
	}

	if cfg.Raw.Samples < 0 {
		return fmt.Errorf("raw.samples must not be negative, got %d", cfg.Raw.Samples)
	}
	if cfg.Raw.PollMicros < 0 {
		return fmt.Errorf("raw.poll_micros must not be negative, got %d", cfg.Raw.PollMicros)
	}

	// The datasheet requires holding the line low for at least 1 ms; an
	// explicit sub-millisecond hold cannot be expressed here, only
	// negative values can be wrong.
	if cfg.Start.LowHoldMillis < 0 {
		return fmt.Errorf("start.low_hold_millis must not be negative, got %d", cfg.Start.LowHoldMillis)
	}
	if cfg.Start.HighHoldMicros < 0 {
		return fmt.Errorf("start.high_hold_micros must not be negative, got %d", cfg.Start.HighHoldMicros)
	}

	// Panel pins must not collide with the data line. Pin 0 means "use
	// the default data pin", so compare against the effective value.
	dataPin := cfg.Pin
	if dataPin == 0 {
		dataPin = gpio.DefaultPinData
	}
	for name, pin := range map[string]*int{
		"panel.pin_ok":    cfg.Panel.PinOK,
		"panel.pin_err":   cfg.Panel.PinErr,
		"panel.pin_power": cfg.Panel.PinPower,
	} {
		if pin == nil {
			continue
		}
		if *pin < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, *pin)
		}
		if *pin == dataPin {
			return fmt.Errorf("%s conflicts with the data pin %d", name, dataPin)
		}
	}

	return nil
}
