package internal

import (
	"errors"
	"testing"

	"github.com/Who8MyLunch/Who8MyRPi/internal/acquire"
	"github.com/Who8MyLunch/Who8MyRPi/internal/dht"
	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

// sensorWaveform scripts a complete sensor answer against virtual time:
// idle high while the host sends its start pulse, the 80µs/80µs
// acknowledgement, 40 data bits, then release back to idle-high.
func sensorWaveform(payload [5]int, startPulseMicros int64) []gpio.Segment {
	segs := []gpio.Segment{gpio.HighFor(startPulseMicros + 100)}
	segs = append(segs, gpio.LowFor(80), gpio.HighFor(80))
	for _, b := range payload {
		for i := 7; i >= 0; i-- {
			segs = append(segs, gpio.LowFor(50))
			if (b>>i)&1 == 1 {
				segs = append(segs, gpio.HighFor(70))
			} else {
				segs = append(segs, gpio.HighFor(26))
			}
		}
	}
	return append(segs, gpio.LowFor(50), gpio.HighFor(1))
}

func payloadFor(rhTenths, tcTenths int) [5]int {
	tw := tcTenths
	if tw < 0 {
		tw = -tw | 0x8000
	}
	b := [5]int{rhTenths >> 8, rhTenths & 0xFF, tw >> 8, tw & 0xFF}
	b[4] = (b[0] + b[1] + b[2] + b[3]) & 0xFF
	return b
}

// TestIntegrationFullAcquisition drives a session against a scripted
// waveform and checks the decoded reading end to end.
func TestIntegrationFullAcquisition(t *testing.T) {
	start := acquire.StartConfig{LowHoldMillis: 1, HighHoldMicros: 20}
	opts := acquire.Options{PollMicros: 1, PhaseTimeoutMillis: 2, MaxBits: 50}

	f := gpio.NewFakePort(sensorWaveform(payloadFor(652, 251), 1020))

	session := acquire.Session{
		Pin:     gpio.DefaultPinData,
		Start:   start,
		Sampler: acquire.BitSampler{Opts: opts},
	}
	res, err := session.Run(f)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if len(res.Bits) != dht.FrameBits {
		t.Fatalf("expected %d bits, got %d", dht.FrameBits, len(res.Bits))
	}

	reading, err := dht.ParseReading(res.Bits)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if reading.Humidity != 65.2 {
		t.Errorf("humidity: expected 65.2, got %g", reading.Humidity)
	}
	if reading.Temperature != 25.1 {
		t.Errorf("temperature: expected 25.1, got %g", reading.Temperature)
	}
}

// TestIntegrationNegativeTemperature exercises the sign bit through the
// whole pipeline.
func TestIntegrationNegativeTemperature(t *testing.T) {
	f := gpio.NewFakePort(sensorWaveform(payloadFor(331, -105), 1020))

	session := acquire.Session{
		Pin:     gpio.DefaultPinData,
		Start:   acquire.StartConfig{LowHoldMillis: 1, HighHoldMicros: 20},
		Sampler: acquire.BitSampler{Opts: acquire.Options{PollMicros: 1, PhaseTimeoutMillis: 2, MaxBits: 50}},
	}
	res, err := session.Run(f)
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	reading, err := dht.ParseReading(res.Bits)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if reading.Temperature != -10.5 {
		t.Errorf("temperature: expected -10.5, got %g", reading.Temperature)
	}
	if reading.Humidity != 33.1 {
		t.Errorf("humidity: expected 33.1, got %g", reading.Humidity)
	}
}

// TestIntegrationUnresponsiveSensor checks that a dead line degrades to
// an empty bit sequence, which the frame parser then rejects.
func TestIntegrationUnresponsiveSensor(t *testing.T) {
	f := gpio.NewFakePort([]gpio.Segment{gpio.HighFor(1)})

	session := acquire.Session{
		Pin:     gpio.DefaultPinData,
		Start:   acquire.StartConfig{LowHoldMillis: 1, HighHoldMicros: 20},
		Sampler: acquire.BitSampler{Opts: acquire.Options{PollMicros: 1, PhaseTimeoutMillis: 2, MaxBits: 50}},
	}
	res, err := session.Run(f)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if len(res.Bits) != 0 {
		t.Fatalf("expected no bits from a stuck line, got %d", len(res.Bits))
	}

	_, err = dht.ParseReading(res.Bits)
	if !errors.Is(err, dht.ErrShortFrame) {
		t.Errorf("expected short frame error, got %v", err)
	}
}

// TestIntegrationCorruptedBit flips one pulse width and expects the
// checksum to catch it.
func TestIntegrationCorruptedBit(t *testing.T) {
	segs := sensorWaveform(payloadFor(652, 251), 1020)
	// Segment layout: idle, ack low, ack high, then (low, high) per bit.
	// Flip the high pulse of data bit 0.
	segs[4] = gpio.HighFor(96 - segs[4].Micros)

	f := gpio.NewFakePort(segs)
	session := acquire.Session{
		Pin:     gpio.DefaultPinData,
		Start:   acquire.StartConfig{LowHoldMillis: 1, HighHoldMicros: 20},
		Sampler: acquire.BitSampler{Opts: acquire.Options{PollMicros: 1, PhaseTimeoutMillis: 2, MaxBits: 50}},
	}
	res, err := session.Run(f)
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	_, err = dht.ParseReading(res.Bits)
	if !errors.Is(err, dht.ErrChecksum) {
		t.Errorf("expected checksum error, got %v", err)
	}
}

// TestIntegrationRawCapture runs the diagnostic sampler end to end.
func TestIntegrationRawCapture(t *testing.T) {
	f := gpio.NewFakePort(sensorWaveform(payloadFor(652, 251), 1020))

	session := acquire.Session{
		Pin:     gpio.DefaultPinData,
		Start:   acquire.StartConfig{LowHoldMillis: 1, HighHoldMicros: 20},
		Sampler: acquire.RawSampler{Opts: acquire.RawOptions{Samples: 500, PollMicros: 1}},
	}
	res, err := session.Run(f)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if res.Raw == nil {
		t.Fatal("expected raw capture")
	}
	if len(res.Raw.Levels) != 500 {
		t.Errorf("expected 500 samples, got %d", len(res.Raw.Levels))
	}
	if res.Raw.AllHigh {
		t.Error("capture spans sensor pulses, should not be all high")
	}
}
