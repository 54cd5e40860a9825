package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventTimeLayout is the fixed timestamp layout used by every event series
// in the canonical document ("YYYY-MM-DDThh:mmZ", minute precision).
const EventTimeLayout = "2006-01-02T15:04Z"

// SentinelTime is substituted for absent or malformed event timestamps so
// that feature math stays total. One bad record must not abort a training run.
var SentinelTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseEventTime parses a fixed-layout event timestamp. The second return
// value reports whether the input actually parsed; on failure the sentinel
// date is returned so call sites can log the defaulting without changing
// behavior.
func ParseEventTime(s string) (time.Time, bool) {
	t, err := time.Parse(EventTimeLayout, s)
	if err != nil {
		return SentinelTime, false
	}
	return t.UTC(), true
}

// Number is a float64 that tolerates the acquisition layer's loose typing:
// JSON numbers, numeric strings, or placeholders like "N/A" (coerced to 0).
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*n = Number(v)
			return nil
		}
	}
	*n = 0
	return nil
}

// FlareEvent is a solar flare record. ClassType's first letter (A/B/C/M/X)
// encodes intensity; Duration is in seconds.
type FlareEvent struct {
	ClassType string `json:"classType"`
	BeginTime string `json:"beginTime"`
	PeakTime  string `json:"peakTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Duration  Number `json:"duration"`
}

// StormEvent is a geomagnetic storm record with its planetary Kp index.
type StormEvent struct {
	StartTime string `json:"startTime"`
	KpIndex   Number `json:"kpIndex"`
}

// CMEEvent is a coronal mass ejection record.
type CMEEvent struct {
	StartTime string `json:"startTime"`
	Speed     Number `json:"speed"`
	Type      string `json:"type"`
}

// SEPEvent is a solar energetic particle event record.
type SEPEvent struct {
	EventTime string `json:"eventTime"`
	Source    string `json:"source"`
}

// IPSEvent is an interplanetary shock record.
type IPSEvent struct {
	EventTime string `json:"eventTime"`
	Location  string `json:"location"`
}

// EventDocument is the canonical multi-series dataset produced by the
// acquisition layer and consumed by the training and inference paths.
type EventDocument struct {
	Timestamp               string       `json:"timestamp"`
	SolarFlares             []FlareEvent `json:"solar_flares"`
	GeomagneticStorms       []StormEvent `json:"geomagnetic_storms"`
	CoronalMassEjections    []CMEEvent   `json:"coronal_mass_ejections"`
	SolarEnergeticParticles []SEPEvent   `json:"solar_energetic_particles"`
	InterplanetaryShocks    []IPSEvent   `json:"interplanetary_shocks"`
}

// PredictionEntry is one persisted forecast. Entries are append-only and
// unique on (predicted_class, estimated_date).
type PredictionEntry struct {
	PredictedClass string `json:"predicted_class"`
	EstimatedDays  int    `json:"estimated_days"`
	EstimatedDate  string `json:"estimated_date"`
	Timestamp      string `json:"timestamp"`
}
