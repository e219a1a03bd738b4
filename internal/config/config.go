// Package config loads and checks the dht-reader configuration file.
// The file is optional: flags can express everything, and flag values
// override file values. Validate never mutates; Normalize fills defaults
// and must run after Validate.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Who8MyLunch/Who8MyRPi/internal/acquire"
)

// Acquisition modes.
const (
	ModeBit = "bit"
	ModeRaw = "raw"
)

// Temperature units.
const (
	UnitCelsius    = "c"
	UnitFahrenheit = "f"
)

// Config is the full dht-reader configuration.
type Config struct {
	// Pin is the BCM number of the sensor data line.
	Pin int `yaml:"pin"`

	// Mode selects bit decoding or raw diagnostic capture.
	Mode string `yaml:"mode"`

	// Unit selects the temperature unit for display.
	Unit string `yaml:"unit"`

	// IntervalSeconds enables periodic sampling; 0 means a single shot.
	IntervalSeconds int `yaml:"interval_seconds"`

	Acquire AcquireConfig `yaml:"acquire"`
	Raw     RawConfig     `yaml:"raw"`
	Start   StartConfig   `yaml:"start"`
	Panel   PanelConfig   `yaml:"panel"`
}

// AcquireConfig tunes the pulse-width decoder.
type AcquireConfig struct {
	PollMicros         int `yaml:"poll_micros"`
	PhaseTimeoutMillis int `yaml:"phase_timeout_millis"`
	MaxBits            int `yaml:"max_bits"`
}

// RawConfig tunes the raw diagnostic sampler.
type RawConfig struct {
	Samples    int `yaml:"samples"`
	PollMicros int `yaml:"poll_micros"`
}

// StartConfig tunes the host start pulse.
type StartConfig struct {
	LowHoldMillis  int `yaml:"low_hold_millis"`
	HighHoldMicros int `yaml:"high_hold_micros"`
}

// PanelConfig holds the optional indicator and power pins. Nil means the
// corresponding hardware is not wired up.
type PanelConfig struct {
	PinOK    *int `yaml:"pin_ok"`
	PinErr   *int `yaml:"pin_err"`
	PinPower *int `yaml:"pin_power"`
}

// Load reads and decodes a YAML config file. The result is not yet
// validated or normalized.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// DecoderOptions converts to the acquisition core's decoder options.
func (c *Config) DecoderOptions() acquire.Options {
	return acquire.Options{
		PollMicros:         c.Acquire.PollMicros,
		PhaseTimeoutMillis: c.Acquire.PhaseTimeoutMillis,
		MaxBits:            c.Acquire.MaxBits,
	}
}

// SamplerOptions converts to the acquisition core's raw sampler options.
func (c *Config) SamplerOptions() acquire.RawOptions {
	return acquire.RawOptions{
		Samples:    c.Raw.Samples,
		PollMicros: c.Raw.PollMicros,
	}
}

// StartPulse converts to the acquisition core's start pulse config.
func (c *Config) StartPulse() acquire.StartConfig {
	return acquire.StartConfig{
		LowHoldMillis:  c.Start.LowHoldMillis,
		HighHoldMicros: c.Start.HighHoldMicros,
	}
}
