package config

import (
	"github.com/Who8MyLunch/Who8MyRPi/internal/acquire"
	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

// Normalize fills in defaults for every zero-valued field.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Pin == 0 {
		cfg.Pin = gpio.DefaultPinData
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeBit
	}
	if cfg.Unit == "" {
		cfg.Unit = UnitCelsius
	}

	if cfg.Acquire.PollMicros == 0 {
		cfg.Acquire.PollMicros = acquire.DefaultPollMicros
	}
	if cfg.Acquire.PhaseTimeoutMillis == 0 {
		cfg.Acquire.PhaseTimeoutMillis = acquire.DefaultPhaseTimeoutMillis
	}
	if cfg.Acquire.MaxBits == 0 {
		cfg.Acquire.MaxBits = acquire.DefaultMaxBits
	}

	if cfg.Raw.Samples == 0 {
		cfg.Raw.Samples = acquire.DefaultRawSamples
	}
	if cfg.Raw.PollMicros == 0 {
		cfg.Raw.PollMicros = acquire.DefaultPollMicros
	}

	if cfg.Start.LowHoldMillis == 0 {
		cfg.Start.LowHoldMillis = acquire.DefaultLowHoldMillis
	}
	if cfg.Start.HighHoldMicros == 0 {
		cfg.Start.HighHoldMicros = acquire.DefaultHighHoldMicros
	}
}

// Default returns a fully normalized default configuration, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}
