package acquire

import (
	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
)

// SampleRaw records the raw line level at a fixed cadence: read, delay,
// repeat, exactly opts.Samples times. There is no early exit on value;
// this is a pure oscilloscope-style capture for debugging the decoder.
// Capability read errors propagate with the partial capture; they are the
// only way the capture comes back short.
func SampleRaw(p gpio.Port, pin int, opts RawOptions) (RawCapture, error) {
	opts = opts.withDefaults()

	c := RawCapture{
		Levels:      make([]gpio.Level, 0, opts.Samples),
		StartMillis: p.NowMillis(),
	}
	allHigh := true
	for i := 0; i < opts.Samples; i++ {
		l, err := p.Read(pin)
		if err != nil {
			c.StopMillis = p.NowMillis()
			return c, err
		}
		c.Levels = append(c.Levels, l)
		if l != gpio.High {
			allHigh = false
		}
		p.DelayMicros(opts.PollMicros)
	}
	c.StopMillis = p.NowMillis()
	c.AllHigh = allHigh && len(c.Levels) > 0
	return c, nil
}
