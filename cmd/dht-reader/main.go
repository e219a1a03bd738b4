// Command dht-reader acquires readings from a DHT22-class sensor on a
// GPIO pin: single-shot or periodic, with a raw-capture diagnostic mode
// for debugging the pulse-width decoder.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Who8MyLunch/Who8MyRPi/internal/acquire"
	"github.com/Who8MyLunch/Who8MyRPi/internal/config"
	"github.com/Who8MyLunch/Who8MyRPi/internal/dht"
	"github.com/Who8MyLunch/Who8MyRPi/internal/gpio"
	"github.com/Who8MyLunch/Who8MyRPi/internal/status"
)

// powerSettleMillis is how long the sensor gets to boot after the power
// pin is driven high.
const powerSettleMillis = 5000

func main() {
	configPath := flag.String("config", "", "YAML config file (flags override file values)")
	pin := flag.Int("pin", 0, "BCM pin number of the sensor data line (0 = default)")
	mode := flag.String("mode", "", `acquisition mode: "bit" or "raw"`)
	unit := flag.String("unit", "", `temperature unit: "c" or "f"`)
	interval := flag.Duration("interval", 0, "periodic sampling interval (0 = single shot)")
	poll := flag.Int("poll", 0, "decoder poll interval in microseconds")
	timeout := flag.Int("timeout", 0, "per-phase timeout in milliseconds")
	maxBits := flag.Int("max-bits", 0, "bit sequence capacity")
	rawSamples := flag.Int("raw-samples", 0, "raw capture sample count")
	rawPoll := flag.Int("raw-poll", 0, "raw capture poll interval in microseconds")
	lowHold := flag.Int("low-hold", 0, "start pulse low hold in milliseconds")
	highHold := flag.Int("high-hold", 0, "start pulse high hold in microseconds")
	pinOK := flag.Int("pin-ok", -1, "BCM pin of the OK status LED (-1 = none)")
	pinErr := flag.Int("pin-err", -1, "BCM pin of the error status LED (-1 = none)")
	pinPower := flag.Int("pin-power", -1, "BCM pin of the sensor power switch (-1 = none)")
	dumpRaw := flag.Bool("dump", false, "print raw capture levels as a 0/1 string")
	printState := flag.Bool("print-state", false, "print current line level and exit")

	flag.Parse()

	cfg, err := buildConfig(*configPath, flagOverrides{
		Pin:        *pin,
		Mode:       *mode,
		Unit:       *unit,
		Interval:   *interval,
		Poll:       *poll,
		Timeout:    *timeout,
		MaxBits:    *maxBits,
		RawSamples: *rawSamples,
		RawPoll:    *rawPoll,
		LowHold:    *lowHold,
		HighHold:   *highHold,
		PinOK:      *pinOK,
		PinErr:     *pinErr,
		PinPower:   *pinPower,
	})
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(cfg, *printState, *dumpRaw); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// flagOverrides carries flag values into the config merge. Zero values
// (or -1 for the optional pins) mean the flag was left alone.
type flagOverrides struct {
	Pin        int
	Mode       string
	Unit       string
	Interval   time.Duration
	Poll       int
	Timeout    int
	MaxBits    int
	RawSamples int
	RawPoll    int
	LowHold    int
	HighHold   int
	PinOK      int
	PinErr     int
	PinPower   int
}

// buildConfig loads the optional config file, applies flag overrides,
// validates and normalizes.
func buildConfig(path string, f flagOverrides) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.Pin != 0 {
		cfg.Pin = f.Pin
	}
	if f.Mode != "" {
		cfg.Mode = f.Mode
	}
	if f.Unit != "" {
		cfg.Unit = f.Unit
	}
	if f.Interval != 0 {
		cfg.IntervalSeconds = int(f.Interval / time.Second)
	}
	if f.Poll != 0 {
		cfg.Acquire.PollMicros = f.Poll
	}
	if f.Timeout != 0 {
		cfg.Acquire.PhaseTimeoutMillis = f.Timeout
	}
	if f.MaxBits != 0 {
		cfg.Acquire.MaxBits = f.MaxBits
	}
	if f.RawSamples != 0 {
		cfg.Raw.Samples = f.RawSamples
	}
	if f.RawPoll != 0 {
		cfg.Raw.PollMicros = f.RawPoll
	}
	if f.LowHold != 0 {
		cfg.Start.LowHoldMillis = f.LowHold
	}
	if f.HighHold != 0 {
		cfg.Start.HighHoldMicros = f.HighHold
	}
	if f.PinOK >= 0 {
		v := f.PinOK
		cfg.Panel.PinOK = &v
	}
	if f.PinErr >= 0 {
		v := f.PinErr
		cfg.Panel.PinErr = &v
	}
	if f.PinPower >= 0 {
		v := f.PinPower
		cfg.Panel.PinPower = &v
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

func run(cfg *config.Config, printState, dumpRaw bool) error {
	// Initialize GPIO
	port, err := gpio.NewRealPort()
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer port.Close()

	// Print state mode
	if printState {
		if err := port.SetMode(cfg.Pin, gpio.Input); err != nil {
			return fmt.Errorf("set input mode: %w", err)
		}
		level, err := port.Read(cfg.Pin)
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("pin %d: %s\n", cfg.Pin, strings.ToUpper(level.String()))
		return nil
	}

	// Power the sensor up and give it time to settle.
	if err := powerOn(port, cfg); err != nil {
		return err
	}
	defer powerOff(port, cfg)

	tracker := status.NewTracker(time.Now(), status.Config{
		Pin:                cfg.Pin,
		Mode:               cfg.Mode,
		PollMicros:         cfg.Acquire.PollMicros,
		PhaseTimeoutMillis: cfg.Acquire.PhaseTimeoutMillis,
		MaxBits:            cfg.Acquire.MaxBits,
		RawSamples:         cfg.Raw.Samples,
		IntervalSeconds:    cfg.IntervalSeconds,
	})

	log.Printf("started: pin=%d mode=%s poll=%dµs timeout=%dms interval=%ds",
		cfg.Pin, cfg.Mode, cfg.Acquire.PollMicros, cfg.Acquire.PhaseTimeoutMillis, cfg.IntervalSeconds)

	if cfg.IntervalSeconds == 0 {
		attempt(port, cfg, tracker, time.Now, dumpRaw)
		return printStatus(tracker)
	}

	ticker := time.NewTicker(time.Duration(cfg.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(port, cfg, tracker, time.Now, ticker.C, sigCh, dumpRaw)
}

// runLoop performs one acquisition per tick until a signal arrives.
func runLoop(port gpio.Port, cfg *config.Config, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, dumpRaw bool) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return printStatus(tracker)

		case <-tick:
			attempt(port, cfg, tracker, now, dumpRaw)
		}
	}
}

// attempt runs one acquisition session and records the outcome. Nothing
// the sensor does wrong is fatal here; only the GPIO capability can fail
// the process, and even that is just logged so a periodic run rides out
// transient faults.
func attempt(port gpio.Port, cfg *config.Config, tracker *status.Tracker, now func() time.Time, dumpRaw bool) {
	session := acquire.Session{
		Pin:     cfg.Pin,
		Start:   cfg.StartPulse(),
		Sampler: samplerFor(cfg),
	}

	res, err := session.Run(port)
	if err != nil {
		log.Printf("acquisition error: %v", err)
		tracker.RecordFailure(err)
		setStatusLED(port, cfg, false)
		return
	}

	if cfg.Mode == config.ModeRaw {
		c := res.Raw
		info := status.RawInfo{Samples: len(c.Levels), Rate: c.Rate(), AllHigh: c.AllHigh}
		tracker.RecordRaw(info)
		log.Printf("raw capture: samples=%d elapsed=%dms rate=%.0f/s", len(c.Levels), c.ElapsedMillis(), c.Rate())
		if c.AllHigh {
			log.Printf("warning: line idle-high for entire capture, sensor not responding")
		}
		if dumpRaw {
			fmt.Println(levelsString(c.Levels))
		}
		setStatusLED(port, cfg, !c.AllHigh)
		return
	}

	if len(res.Bits) == 0 {
		log.Printf("no response from sensor (line stuck high)")
		tracker.RecordFailure(nil)
		setStatusLED(port, cfg, false)
		return
	}

	reading, err := dht.ParseReading(res.Bits)
	if err != nil {
		log.Printf("bad frame (%d bits): %v", len(res.Bits), err)
		tracker.RecordFailure(err)
		setStatusLED(port, cfg, false)
		return
	}

	tracker.RecordReading(now(), reading)
	setStatusLED(port, cfg, true)
	log.Printf("pin: %2d, %s, RH: %.1f%%", cfg.Pin, formatTemperature(reading, cfg.Unit), reading.Humidity)
}

// samplerFor picks the acquisition sampler for the configured mode.
func samplerFor(cfg *config.Config) acquire.Sampler {
	if cfg.Mode == config.ModeRaw {
		return acquire.RawSampler{Opts: cfg.SamplerOptions()}
	}
	return acquire.BitSampler{Opts: cfg.DecoderOptions()}
}

// formatTemperature renders the temperature in the configured unit.
func formatTemperature(r dht.Reading, unit string) string {
	if unit == config.UnitFahrenheit {
		return fmt.Sprintf("Tf: %.1f", r.TemperatureF())
	}
	return fmt.Sprintf("Tc: %.1f", r.Temperature)
}

// levelsString renders a raw capture as a compact 0/1 string.
func levelsString(levels []gpio.Level) string {
	var b strings.Builder
	b.Grow(len(levels))
	for _, l := range levels {
		if l == gpio.High {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// setStatusLED reflects the last attempt's outcome on the panel LEDs,
// if configured: ok high + err low on success, the reverse on failure.
func setStatusLED(port gpio.Port, cfg *config.Config, ok bool) {
	if cfg.Panel.PinOK == nil || cfg.Panel.PinErr == nil {
		return
	}
	okLevel, errLevel := gpio.Low, gpio.High
	if ok {
		okLevel, errLevel = gpio.High, gpio.Low
	}
	if err := port.SetMode(*cfg.Panel.PinOK, gpio.Output); err != nil {
		log.Printf("status led: %v", err)
		return
	}
	if err := port.SetMode(*cfg.Panel.PinErr, gpio.Output); err != nil {
		log.Printf("status led: %v", err)
		return
	}
	if err := port.Write(*cfg.Panel.PinOK, okLevel); err != nil {
		log.Printf("status led: %v", err)
	}
	if err := port.Write(*cfg.Panel.PinErr, errLevel); err != nil {
		log.Printf("status led: %v", err)
	}
}

// powerOn drives the sensor power pin high and waits for the sensor to
// boot. A missing power pin means the sensor is wired straight to 3V3.
func powerOn(port gpio.Port, cfg *config.Config) error {
	if cfg.Panel.PinPower == nil {
		return nil
	}
	pin := *cfg.Panel.PinPower
	if err := port.SetMode(pin, gpio.Output); err != nil {
		return fmt.Errorf("power pin %d: %w", pin, err)
	}
	if err := port.Write(pin, gpio.High); err != nil {
		return fmt.Errorf("power pin %d: %w", pin, err)
	}
	port.DelayMillis(powerSettleMillis)
	return nil
}

// powerOff cuts sensor power on shutdown.
func powerOff(port gpio.Port, cfg *config.Config) {
	if cfg.Panel.PinPower == nil {
		return
	}
	if err := port.Write(*cfg.Panel.PinPower, gpio.Low); err != nil {
		log.Printf("power off: %v", err)
	}
}

// printStatus writes the JSON status document to stdout.
func printStatus(tracker *status.Tracker) error {
	data, err := status.FormatStatus(tracker.Snapshot())
	if err != nil {
		return fmt.Errorf("format status: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
