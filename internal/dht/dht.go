// Package dht parses the 40-bit DHT22 payload into physical readings.
// This package has NO hardware dependencies: it consumes the bit sequence
// produced by the acquisition core and nothing else.
package dht

import (
	"errors"
	"fmt"
)

// Frame geometry. The sensor answers the start pulse with one
// acknowledgement bit, then 40 data bits: humidity word, temperature
// word, checksum byte.
const (
	AckBits   = 1
	DataBits  = 40
	FrameBits = AckBits + DataBits
)

// Parse failure taxonomy. All of these are recoverable: the caller skips
// the sample and tries again later.
var (
	ErrShortFrame = errors.New("short frame")
	ErrNoAck      = errors.New("sensor acknowledgement bit not set")
	ErrChecksum   = errors.New("checksum mismatch")
	ErrOutOfRange = errors.New("value out of sensor range")
)

// Reading is one decoded sensor sample.
type Reading struct {
	// Humidity is relative humidity in percent, 0-100.
	Humidity float64

	// Temperature is in degrees Celsius, -40 to 80.
	Temperature float64
}

// TemperatureF returns the temperature in degrees Fahrenheit.
func (r Reading) TemperatureF() float64 {
	return CToF(r.Temperature)
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// FToC converts Fahrenheit to Celsius.
func FToC(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

// ParseReading decodes an acquired bit sequence into a Reading.
//
// The sequence must hold at least FrameBits bits (a truncated acquisition
// fails with ErrShortFrame), the leading acknowledgement bit must be 1,
// and the payload checksum must match. Temperature uses a sign bit rather
// than two's complement: 0x8000 set means negative.
func ParseReading(bits []int) (Reading, error) {
	if len(bits) < FrameBits {
		return Reading{}, fmt.Errorf("%w: got %d of %d bits", ErrShortFrame, len(bits), FrameBits)
	}
	if bits[0] != 1 {
		return Reading{}, ErrNoAck
	}

	b := bytesFromBits(bits[AckBits : AckBits+DataBits])

	sum := uint8(b[0] + b[1] + b[2] + b[3])
	if sum != uint8(b[4]) {
		return Reading{}, fmt.Errorf("%w: computed %#02x, sensor sent %#02x", ErrChecksum, sum, b[4])
	}

	rh := int(b[0])<<8 | int(b[1])
	tc := int(b[2])<<8 | int(b[3])
	if tc&0x8000 != 0 {
		tc = -(tc &^ 0x8000)
	}

	// Sensor range: 0-100 %RH, -40-80 °C, both in tenths.
	if rh < 0 || rh > 1000 {
		return Reading{}, fmt.Errorf("%w: humidity %d", ErrOutOfRange, rh)
	}
	if tc < -400 || tc > 800 {
		return Reading{}, fmt.Errorf("%w: temperature %d", ErrOutOfRange, tc)
	}

	return Reading{
		Humidity:    float64(rh) / 10.0,
		Temperature: float64(tc) / 10.0,
	}, nil
}

// bytesFromBits packs bits (MSB first) into bytes. len(bits) must be a
// multiple of 8.
func bytesFromBits(bits []int) []int {
	out := make([]int, len(bits)/8)
	for i, bit := range bits {
		out[i/8] = out[i/8]<<1 | (bit & 1)
	}
	return out
}
