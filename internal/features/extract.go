package features

import (
	"strings"

	"flarecast/internal/models"
)

// Base feature vector layout produced by Extract:
//
//	[day, hour, month, intensity, storm_level, duration, cme_count, sep_count, ips_count]
//
// The training vector inserts weekday after month and lag before the counts:
//
//	[day, hour, month, weekday, storm_level, duration, lag, cme_count, sep_count, ips_count]
//
// Lag (days since the previous flare) is a legitimate classification feature:
// it is computed from event i-1 and known at prediction time. It is excluded
// from the regression vector because the regression target is itself a day
// interval, and a feature encoding elapsed time between neighboring events
// would trivially dominate the target. This asymmetry is intentional.
const (
	LagIndex           = 6
	ClassifierFeatures = 10
	RegressorFeatures  = 9
)

// ClassIntensity maps a flare class string to its ordinal intensity by first
// letter: X=5, M=4, C=3, B=2, A=1. Absent or unrecognized classes default to 1.
func ClassIntensity(classType string) int {
	if classType == "" {
		return 1
	}
	switch classType[0] {
	case 'X':
		return 5
	case 'M':
		return 4
	case 'C':
		return 3
	case 'B':
		return 2
	case 'A':
		return 1
	}
	return 1
}

// Extract converts one flare plus its contextual series into the 9 base
// features. It is pure and total: malformed or missing timestamps fall back
// to the sentinel date, never an error.
//
// Storm matching policy: the first storm whose start date shares the flare's
// calendar date wins, not the nearest in time. CME/SEP/IPS are same-day
// occurrence counts.
func Extract(flare models.FlareEvent, storms []models.StormEvent, cmes []models.CMEEvent, seps []models.SEPEvent, ips []models.IPSEvent) []float64 {
	begin := flare.BeginTime
	if begin == "" {
		begin = models.SentinelTime.Format(models.EventTimeLayout)
	}
	t, _ := models.ParseEventTime(begin)

	datePrefix := begin
	if len(datePrefix) > 10 {
		datePrefix = datePrefix[:10]
	}

	stormLevel := 0.0
	for _, storm := range storms {
		if strings.HasPrefix(storm.StartTime, datePrefix) {
			stormLevel = float64(storm.KpIndex)
			break
		}
	}

	flareDate := t.Format("2006-01-02")
	cmeCount := 0
	for _, cme := range cmes {
		if strings.HasPrefix(cme.StartTime, flareDate) {
			cmeCount++
		}
	}
	sepCount := 0
	for _, sep := range seps {
		if strings.HasPrefix(sep.EventTime, flareDate) {
			sepCount++
		}
	}
	ipsCount := 0
	for _, shock := range ips {
		if strings.HasPrefix(shock.EventTime, flareDate) {
			ipsCount++
		}
	}

	return []float64{
		float64(t.Day()),
		float64(t.Hour()),
		float64(int(t.Month())),
		float64(ClassIntensity(flare.ClassType)),
		stormLevel,
		float64(flare.Duration),
		float64(cmeCount),
		float64(sepCount),
		float64(ipsCount),
	}
}

// TrainingVector assembles the full 10-feature classification vector from the
// base features plus the temporal features computed by the caller.
func TrainingVector(base []float64, weekday, lag int) []float64 {
	return []float64{
		base[0], base[1], base[2],
		float64(weekday),
		base[4], base[5],
		float64(lag),
		base[6], base[7], base[8],
	}
}

// RegressionVector returns the classification vector with lag removed.
func RegressionVector(full []float64) []float64 {
	out := make([]float64, 0, len(full)-1)
	out = append(out, full[:LagIndex]...)
	out = append(out, full[LagIndex+1:]...)
	return out
}
