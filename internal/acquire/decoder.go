package acquire

import (
	"errors"
	"fmt"

	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

// ReadBit decodes one bit from the line by measuring adjacent pulse widths.
//
// Three busy-wait phases, each polling at opts.PollMicros:
//
//  1. wait for the line to drop low (the sensor may still be finishing the
//     previous bit, or idling);
//  2. count polls while the line stays low; the leading low phase has the
//     same length for every bit;
//  3. count polls while the line stays high; this width carries the bit.
//
// The bit is 1 when the high phase lasted at least as long as the low
// phase, 0 otherwise. Comparing adjacent phases instead of absolute
// durations keeps the decoder indifferent to the poll interval and to
// clock drift.
//
// Each phase is bounded by a wall-clock deadline of
// opts.PhaseTimeoutMillis; a phase that never sees its transition returns
// ErrTimeout. ReadBit therefore returns within three phase timeouts even
// with the sensor unplugged.
func ReadBit(p gpio.Port, pin int, opts Options) (int, error) {
	opts = opts.withDefaults()

	if _, err := pollWhile(p, pin, gpio.High, opts); err != nil {
		return 0, fmt.Errorf("wait ready: %w", err)
	}
	lowCount, err := pollWhile(p, pin, gpio.Low, opts)
	if err != nil {
		return 0, fmt.Errorf("low phase: %w", err)
	}
	highCount, err := pollWhile(p, pin, gpio.High, opts)
	if err != nil {
		return 0, fmt.Errorf("high phase: %w", err)
	}

	if highCount >= lowCount {
		return 1, nil
	}
	return 0, nil
}

// pollWhile busy-polls the line until it leaves the given level, returning
// the number of polls spent there. It returns ErrTimeout once the phase
// deadline passes without a transition; the count so far is still
// returned. Capability read errors propagate unchanged.
func pollWhile(p gpio.Port, pin int, level gpio.Level, opts Options) (int, error) {
	deadline := p.NowMillis() + int64(opts.PhaseTimeoutMillis)
	count := 0
	for {
		l, err := p.Read(pin)
		if err != nil {
			return count, err
		}
		if l != level {
			return count, nil
		}
		count++
		if p.NowMillis() >= deadline {
			return count, ErrTimeout
		}
		p.DelayMicros(opts.PollMicros)
	}
}

// ReadBits decodes bits until opts.MaxBits are collected or the sensor
// stops transmitting. The first timeout truncates: the bits collected so
// far are returned at their true length, never padded, and truncation is
// not an error. Capability errors do propagate.
func ReadBits(p gpio.Port, pin int, opts Options) ([]int, error) {
	opts = opts.withDefaults()

	bits := make([]int, 0, opts.MaxBits)
	for len(bits) < opts.MaxBits {
		b, err := ReadBit(p, pin, opts)
		if errors.Is(err, ErrTimeout) {
			return bits, nil
		}
		if err != nil {
			return bits, err
		}
		bits = append(bits, b)
	}
	return bits, nil
}
