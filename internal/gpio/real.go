//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealPort drives actual hardware through the Linux GPIO character device.
// Lines are requested lazily on first SetMode and reconfigured in place on
// direction changes, so one acquisition can flip a pin between output and
// input without releasing it.
type RealPort struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
	modes map[int]Mode
	epoch time.Time
}

// NewRealPort opens the GPIO chip for actual Raspberry Pi hardware.
func NewRealPort() (*RealPort, error) {
	return NewRealPortChip("gpiochip0")
}

// NewRealPortChip opens the named GPIO chip.
func NewRealPortChip(name string) (*RealPort, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealPort{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
		modes: make(map[int]Mode),
		epoch: time.Now(),
	}, nil
}

// SetMode configures the pin direction, requesting the line on first use.
func (p *RealPort) SetMode(pin int, mode Mode) error {
	line, ok := p.lines[pin]
	if !ok {
		var err error
		if mode == Output {
			line, err = p.chip.RequestLine(pin, gpiocdev.AsOutput(1))
		} else {
			line, err = p.chip.RequestLine(pin, gpiocdev.AsInput)
		}
		if err != nil {
			return fmt.Errorf("request pin %d as %s: %w", pin, mode, err)
		}
		p.lines[pin] = line
		p.modes[pin] = mode
		return nil
	}

	if p.modes[pin] == mode {
		return nil
	}
	var err error
	if mode == Output {
		err = line.Reconfigure(gpiocdev.AsOutput(1))
	} else {
		err = line.Reconfigure(gpiocdev.AsInput)
	}
	if err != nil {
		return fmt.Errorf("reconfigure pin %d as %s: %w", pin, mode, err)
	}
	p.modes[pin] = mode
	return nil
}

// Read returns the current line level of an input pin.
func (p *RealPort) Read(pin int) (Level, error) {
	line, ok := p.lines[pin]
	if !ok {
		return Low, fmt.Errorf("read pin %d: mode not set", pin)
	}
	v, err := line.Value()
	if err != nil {
		return Low, fmt.Errorf("read pin %d: %w", pin, err)
	}
	if v != 0 {
		return High, nil
	}
	return Low, nil
}

// Write drives an output pin to the given level.
func (p *RealPort) Write(pin int, level Level) error {
	line, ok := p.lines[pin]
	if !ok || p.modes[pin] != Output {
		return fmt.Errorf("write pin %d: not configured as output", pin)
	}
	v := 0
	if level == High {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// SetPull configures the pin's pull resistor.
func (p *RealPort) SetPull(pin int, pull Pull) error {
	line, ok := p.lines[pin]
	if !ok {
		return fmt.Errorf("set pull on pin %d: mode not set", pin)
	}
	var opt gpiocdev.LineConfigOption
	switch pull {
	case PullUp:
		opt = gpiocdev.WithPullUp
	case PullDown:
		opt = gpiocdev.WithPullDown
	default:
		opt = gpiocdev.WithBiasDisabled
	}
	if err := line.Reconfigure(opt); err != nil {
		return fmt.Errorf("set %s on pin %d: %w", pull, pin, err)
	}
	return nil
}

// DelayMicros busy-waits for d microseconds. time.Sleep granularity on a
// stock kernel is far coarser than the microsecond budgets of the sensor
// protocol, so short delays spin on the clock instead of sleeping.
func (p *RealPort) DelayMicros(d int) {
	if d <= 0 {
		return
	}
	dur := time.Duration(d) * time.Microsecond
	if dur >= time.Millisecond {
		time.Sleep(dur)
		return
	}
	deadline := time.Now().Add(dur)
	for time.Now().Before(deadline) {
	}
}

// DelayMillis sleeps for d milliseconds.
func (p *RealPort) DelayMillis(d int) {
	if d <= 0 {
		return
	}
	time.Sleep(time.Duration(d) * time.Millisecond)
}

// NowMillis returns milliseconds since the port was opened (monotonic).
func (p *RealPort) NowMillis() int64 {
	return time.Since(p.epoch).Milliseconds()
}

// Close releases all requested lines and the chip. Pins are reconfigured
// to input first so the bus is left floating for the next process.
func (p *RealPort) Close() error {
	var errs []error
	for pin, line := range p.lines {
		if p.modes[pin] == Output {
			if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
				errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
			}
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
