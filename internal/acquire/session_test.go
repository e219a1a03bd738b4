package acquire

import (
	"errors"
	"testing"

	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

func TestSessionBitMode(t *testing.T) {
	cells := make([][2]int64, 10)
	for i := range cells {
		cells[i] = [2]int64{50, 70}
	}
	f := gpio.NewFakePort(dataWaveform(cells))

	s := Session{
		Pin:     gpio.DefaultPinData,
		Sampler: BitSampler{Opts: Options{PollMicros: 1, PhaseTimeoutMillis: 2, MaxBits: 50}},
	}
	res, err := s.Run(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Raw != nil {
		t.Error("bit mode should not produce a raw capture")
	}
	if len(res.Bits) != 10 {
		t.Errorf("expected 10 bits, got %d", len(res.Bits))
	}
	for i, b := range res.Bits {
		if b != 1 {
			t.Errorf("bit %d: expected 1, got %d", i, b)
		}
	}
}

func TestSessionRawMode(t *testing.T) {
	f := gpio.NewFakePort([]gpio.Segment{gpio.HighFor(1)})

	s := Session{
		Pin:     gpio.DefaultPinData,
		Sampler: RawSampler{Opts: RawOptions{Samples: 200, PollMicros: 1}},
	}
	res, err := s.Run(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Raw == nil {
		t.Fatal("raw mode should produce a raw capture")
	}
	if len(res.Raw.Levels) != 200 {
		t.Errorf("expected 200 samples, got %d", len(res.Raw.Levels))
	}
	if !res.Raw.AllHigh {
		t.Error("idle line: expected all-high warning")
	}
}

func TestSessionStuckHighLineDegrades(t *testing.T) {
	// Sensor disconnected, line idle-high forever: the session returns an
	// empty bit sequence, not an error.
	f := gpio.NewFakePort([]gpio.Segment{gpio.HighFor(1)})

	s := Session{
		Pin:     gpio.DefaultPinData,
		Sampler: BitSampler{Opts: Options{PollMicros: 1, PhaseTimeoutMillis: 2, MaxBits: 50}},
	}
	res, err := s.Run(f)
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}
	if len(res.Bits) != 0 {
		t.Errorf("expected empty bit sequence, got %d bits", len(res.Bits))
	}
}

func TestSessionStartFailureIsFatal(t *testing.T) {
	f := gpio.NewFakePort([]gpio.Segment{gpio.HighFor(1)})
	f.SetModeError = errors.New("chip gone")

	s := Session{Pin: gpio.DefaultPinData}
	_, err := s.Run(f)
	if err == nil {
		t.Fatal("expected error when GPIO setup fails")
	}
	if !errors.Is(err, f.SetModeError) {
		t.Errorf("expected wrapped SetMode error, got %v", err)
	}
}

func TestSessionDefaultSamplerIsBitMode(t *testing.T) {
	cells := [][2]int64{{50, 70}, {50, 26}}
	f := gpio.NewFakePort(dataWaveform(cells))

	s := Session{Pin: gpio.DefaultPinData}
	res, err := s.Run(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Raw != nil {
		t.Error("default sampler should be bit mode")
	}
	if len(res.Bits) != 2 || res.Bits[0] != 1 || res.Bits[1] != 0 {
		t.Errorf("expected bits [1 0], got %v", res.Bits)
	}
}
