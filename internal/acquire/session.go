package acquire

import (
	"fmt"

	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

// Sampler turns post-start line activity into a Result. Everything else
// about an acquisition (start pulse, pin setup, timeout handling) is
// shared and lives in Session.
type Sampler interface {
	Sample(p gpio.Port, pin int) (Result, error)
}

// BitSampler decodes pulse widths into a bit sequence.
type BitSampler struct {
	Opts Options
}

// Sample collects up to Opts.MaxBits decoded bits. A short sequence is a
// degraded result, not an error.
func (s BitSampler) Sample(p gpio.Port, pin int) (Result, error) {
	bits, err := ReadBits(p, pin, s.Opts)
	if err != nil {
		return Result{Bits: bits}, err
	}
	return Result{Bits: bits}, nil
}

// RawSampler records raw line levels without interpretation.
type RawSampler struct {
	Opts RawOptions
}

// Sample records exactly Opts.Samples levels.
func (s RawSampler) Sample(p gpio.Port, pin int) (Result, error) {
	c, err := SampleRaw(p, pin, s.Opts)
	if err != nil {
		return Result{Raw: &c}, err
	}
	return Result{Raw: &c}, nil
}

// Session is one complete acquisition: start pulse, then sampling. A
// Session holds no state between runs; the zero value with a pin and a
// sampler is ready to use. Callers must serialize sessions per pin.
type Session struct {
	Pin     int
	Start   StartConfig
	Sampler Sampler
}

// Run performs the acquisition. GPIO capability failures (the only fatal
// class) propagate. Anything the sensor can do wrong, such as not
// answering or stopping early, shows up as a degraded Result instead; a
// disconnected sensor is a normal operating condition.
func (s Session) Run(p gpio.Port) (Result, error) {
	sampler := s.Sampler
	if sampler == nil {
		sampler = BitSampler{}
	}

	if err := SendStart(p, s.Pin, s.Start); err != nil {
		return Result{}, fmt.Errorf("start sequence: %w", err)
	}
	res, err := sampler.Sample(p, s.Pin)
	if err != nil {
		return res, fmt.Errorf("sample: %w", err)
	}
	return res, nil
}
