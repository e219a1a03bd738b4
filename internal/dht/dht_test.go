package dht

import (
	"errors"
	"math"
	"testing"
)

// frameBits builds a 41-bit frame: the ack bit followed by the five
// payload bytes MSB first.
func frameBits(ack int, payload [5]int) []int {
	bits := []int{ack}
	for _, b := range payload {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

// checksummed fills in the fifth byte from the first four.
func checksummed(b0, b1, b2, b3 int) [5]int {
	return [5]int{b0, b1, b2, b3, (b0 + b1 + b2 + b3) & 0xFF}
}

func TestParseReadingGoodFrame(t *testing.T) {
	// RH 65.2 %, T 25.1 °C.
	bits := frameBits(1, checksummed(0x02, 0x8C, 0x00, 0xFB))

	r, err := ParseReading(bits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Humidity != 65.2 {
		t.Errorf("humidity: expected 65.2, got %g", r.Humidity)
	}
	if r.Temperature != 25.1 {
		t.Errorf("temperature: expected 25.1, got %g", r.Temperature)
	}
}

func TestParseReadingNegativeTemperature(t *testing.T) {
	// RH 50.0 %, T -10.1 °C (sign bit, not two's complement).
	bits := frameBits(1, checksummed(0x01, 0xF4, 0x80, 0x65))

	r, err := ParseReading(bits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Humidity != 50.0 {
		t.Errorf("humidity: expected 50.0, got %g", r.Humidity)
	}
	if r.Temperature != -10.1 {
		t.Errorf("temperature: expected -10.1, got %g", r.Temperature)
	}
}

func TestParseReadingShortFrame(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"empty", 0},
		{"a few bits", 7},
		{"data bits but no ack", 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits := make([]int, tt.n)
			_, err := ParseReading(bits)
			if !errors.Is(err, ErrShortFrame) {
				t.Errorf("expected ErrShortFrame, got %v", err)
			}
		})
	}
}

func TestParseReadingNoAck(t *testing.T) {
	bits := frameBits(0, checksummed(0x02, 0x8C, 0x00, 0xFB))

	_, err := ParseReading(bits)
	if !errors.Is(err, ErrNoAck) {
		t.Errorf("expected ErrNoAck, got %v", err)
	}
}

func TestParseReadingChecksumMismatch(t *testing.T) {
	payload := checksummed(0x02, 0x8C, 0x00, 0xFB)
	payload[4] ^= 0x01
	bits := frameBits(1, payload)

	_, err := ParseReading(bits)
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestParseReadingOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		payload [5]int
	}{
		// 110.0 %RH and 90.0 °C, both past the sensor's limits.
		{"humidity above 100%", checksummed(0x04, 0x4C, 0x00, 0xFB)},
		{"temperature above 80C", checksummed(0x02, 0x8C, 0x03, 0x84)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReading(frameBits(1, tt.payload))
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}
		})
	}
}

func TestParseReadingExtraTrailingBits(t *testing.T) {
	// An acquisition capped above FrameBits may carry trailing noise;
	// only the first 41 bits matter.
	bits := frameBits(1, checksummed(0x02, 0x8C, 0x00, 0xFB))
	bits = append(bits, 1, 0, 1)

	r, err := ParseReading(bits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Humidity != 65.2 {
		t.Errorf("humidity: expected 65.2, got %g", r.Humidity)
	}
}

func TestTemperatureConversions(t *testing.T) {
	tests := []struct {
		c, f float64
	}{
		{0, 32},
		{100, 212},
		{-40, -40},
		{25.1, 77.18},
	}
	for _, tt := range tests {
		if got := CToF(tt.c); math.Abs(got-tt.f) > 1e-9 {
			t.Errorf("CToF(%g): expected %g, got %g", tt.c, tt.f, got)
		}
		if got := FToC(tt.f); math.Abs(got-tt.c) > 1e-9 {
			t.Errorf("FToC(%g): expected %g, got %g", tt.f, tt.c, got)
		}
	}

	r := Reading{Temperature: 25.1}
	if got := r.TemperatureF(); math.Abs(got-77.18) > 1e-9 {
		t.Errorf("TemperatureF: expected 77.18, got %g", got)
	}
}
