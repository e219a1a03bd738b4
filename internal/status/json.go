package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Counts        CountsJSON   `json:"counts"`
	LastReading   *ReadingJSON `json:"last_reading,omitempty"`
	LastRaw       *RawJSON     `json:"last_raw,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// CountsJSON is the JSON representation of outcome counts.
type CountsJSON struct {
	Attempts   int `json:"attempts"`
	Good       int `json:"good"`
	Timeout    int `json:"timeout"`
	ShortFrame int `json:"short_frame"`
	NoAck      int `json:"no_ack"`
	Checksum   int `json:"checksum"`
	OutOfRange int `json:"out_of_range"`
	Other      int `json:"other"`
}

// ReadingJSON is the JSON representation of the last good reading.
type ReadingJSON struct {
	Humidity     float64 `json:"humidity"`
	TemperatureC float64 `json:"temperature_c"`
	TemperatureF float64 `json:"temperature_f"`
	Timestamp    string  `json:"timestamp"`
}

// RawJSON is the JSON representation of the last raw capture.
type RawJSON struct {
	Samples int     `json:"samples"`
	Rate    float64 `json:"rate"`
	AllHigh bool    `json:"all_high"`
}

// ConfigJSON is the JSON representation of the effective configuration.
type ConfigJSON struct {
	Pin                int    `json:"pin"`
	Mode               string `json:"mode"`
	PollMicros         int    `json:"poll_micros"`
	PhaseTimeoutMillis int    `json:"phase_timeout_millis"`
	MaxBits            int    `json:"max_bits"`
	RawSamples         int    `json:"raw_samples"`
	IntervalSeconds    int    `json:"interval_seconds"`
}

// FormatStatus creates the JSON status document for a snapshot.
func FormatStatus(s Snapshot) ([]byte, error) {
	inner := StatusInner{
		UptimeSeconds: int64(s.Uptime().Seconds()),
		StartTime:     s.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     s.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			Attempts:   s.Counts.Attempts,
			Good:       s.Counts.Good,
			Timeout:    s.Counts.Timeout,
			ShortFrame: s.Counts.ShortFrame,
			NoAck:      s.Counts.NoAck,
			Checksum:   s.Counts.Checksum,
			OutOfRange: s.Counts.OutOfRange,
			Other:      s.Counts.Other,
		},
		Config: ConfigJSON{
			Pin:                s.Config.Pin,
			Mode:               s.Config.Mode,
			PollMicros:         s.Config.PollMicros,
			PhaseTimeoutMillis: s.Config.PhaseTimeoutMillis,
			MaxBits:            s.Config.MaxBits,
			RawSamples:         s.Config.RawSamples,
			IntervalSeconds:    s.Config.IntervalSeconds,
		},
	}

	if s.LastReading != nil {
		inner.LastReading = &ReadingJSON{
			Humidity:     s.LastReading.Humidity,
			TemperatureC: s.LastReading.Temperature,
			TemperatureF: s.LastReading.TemperatureF(),
			Timestamp:    s.LastGoodAt.UTC().Format(time.RFC3339),
		}
	}
	if s.LastRaw != nil {
		inner.LastRaw = &RawJSON{
			Samples: s.LastRaw.Samples,
			Rate:    s.LastRaw.Rate,
			AllHigh: s.LastRaw.AllHigh,
		}
	}

	return json.Marshal(StatusJSON{Status: inner})
}
