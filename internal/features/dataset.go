package features

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"flarecast/internal/models"
)

// MinTrainingFlares is the minimum flare count for a training run. Below it
// the split would leave too few held-out events to score against.
const MinTrainingFlares = 10

// ErrInsufficientData means there are too few flare events to train or
// predict. It is reported, not fatal: no models are written and callers exit
// cleanly.
var ErrInsufficientData = errors.New("insufficient flare data")

// Dataset holds parallel classification and regression design matrices built
// from the same interior flares, so a shared split keeps their held-out
// partitions aligned.
type Dataset struct {
	Classification [][]float64
	Intensity      []int
	Regression     [][]float64
	Interval       []int
}

func (d *Dataset) Len() int { return len(d.Classification) }

// SortFlares orders flares chronologically by begin timestamp. The fixed
// timestamp layout makes lexicographic order chronological.
func SortFlares(flares []models.FlareEvent) {
	sort.SliceStable(flares, func(i, j int) bool {
		return flares[i].BeginTime < flares[j].BeginTime
	})
}

// Weekday returns the Monday-based weekday (0=Monday .. 6=Sunday).
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DaysBetween returns the whole days elapsed from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// Build walks the chronologically sorted flare series and produces the
// training dataset. Only interior flares contribute rows: the first has no
// previous event for lag, the last no next event for the interval label, so
// the matrices have exactly n-2 rows for n flares.
func Build(doc *models.EventDocument) (*Dataset, error) {
	flares := make([]models.FlareEvent, len(doc.SolarFlares))
	copy(flares, doc.SolarFlares)
	SortFlares(flares)

	if len(flares) < MinTrainingFlares {
		return nil, fmt.Errorf("have %d flares, need at least %d: %w",
			len(flares), MinTrainingFlares, ErrInsufficientData)
	}

	ds := &Dataset{}
	for i := 1; i < len(flares)-1; i++ {
		cur := flares[i]
		base := Extract(cur, doc.GeomagneticStorms, doc.CoronalMassEjections,
			doc.SolarEnergeticParticles, doc.InterplanetaryShocks)

		curT, _ := models.ParseEventTime(cur.BeginTime)
		prevT, _ := models.ParseEventTime(flares[i-1].BeginTime)
		nextT, _ := models.ParseEventTime(flares[i+1].BeginTime)

		lag := DaysBetween(prevT, curT)
		if lag < 1 {
			lag = 1
		}
		interval := DaysBetween(curT, nextT)
		if interval < 1 {
			interval = 1
		}

		full := TrainingVector(base, Weekday(curT), lag)
		ds.Classification = append(ds.Classification, full)
		ds.Intensity = append(ds.Intensity, int(base[3]))
		ds.Regression = append(ds.Regression, RegressionVector(full))
		ds.Interval = append(ds.Interval, interval)
	}

	return ds, nil
}
