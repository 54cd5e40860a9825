package predictor

import (
	"fmt"
	"log"
	"time"

	"flarecast/internal/features"
	"flarecast/internal/ledger"
	"flarecast/internal/metrics"
	"flarecast/internal/model"
	"flarecast/internal/models"
	"flarecast/internal/store"
)

// Result is one inference outcome: the persisted entry, whether persistence
// actually occurred (false means an identical prediction already existed),
// and a human-readable summary for display layers.
type Result struct {
	Summary string
	Entry   models.PredictionEntry
	Stored  bool
}

// Predictor builds the feature vector for the most recent flare, runs both
// models, and records the forecast in the ledger.
type Predictor struct {
	events *store.EventStore
	models *model.Store
	ledger *ledger.Ledger
	now    func() time.Time
}

func New(events *store.EventStore, modelStore *model.Store, ldg *ledger.Ledger) *Predictor {
	return &Predictor{events: events, models: modelStore, ledger: ldg, now: time.Now}
}

// ClassLabel maps an ordinal intensity back to its flare class label.
func ClassLabel(ordinal int) string {
	switch ordinal {
	case 5:
		return "X-Class"
	case 4:
		return "M-Class"
	case 3:
		return "C-Class"
	case 2:
		return "B-Class"
	case 1:
		return "A-Class"
	}
	return fmt.Sprintf("Unknown (%d)", ordinal)
}

// PredictNext forecasts the next flare's class and horizon from the two most
// recent flares, using the same temporal feature rules as dataset
// construction.
//
// The reported horizon is recomputed against "now" rather than against the
// latest flare, so it shrinks as time passes even without retraining. That
// surfaces data freshness and is deliberate behavior, floored at 1 day.
func (p *Predictor) PredictNext() (*Result, error) {
	doc, err := p.events.Load()
	if err != nil {
		return nil, err
	}

	flares := make([]models.FlareEvent, len(doc.SolarFlares))
	copy(flares, doc.SolarFlares)
	features.SortFlares(flares)

	if len(flares) < 2 {
		return nil, fmt.Errorf("have %d flares, need at least 2 for prediction: %w",
			len(flares), features.ErrInsufficientData)
	}

	latest, prev := flares[len(flares)-1], flares[len(flares)-2]
	base := features.Extract(latest, doc.GeomagneticStorms, doc.CoronalMassEjections,
		doc.SolarEnergeticParticles, doc.InterplanetaryShocks)

	latestT, _ := models.ParseEventTime(latest.BeginTime)
	prevT, _ := models.ParseEventTime(prev.BeginTime)
	lag := features.DaysBetween(prevT, latestT)
	if lag < 1 {
		lag = 1
	}

	full := features.TrainingVector(base, features.Weekday(latestT), lag)
	regVec := features.RegressionVector(full)

	classifier, regressor, err := p.models.Models(false)
	if err != nil {
		return nil, err
	}

	class := classifier.Predict(full)
	interval := regressor.Predict(regVec)
	if interval < 1 {
		interval = 1
	}
	label := ClassLabel(class)

	estimated := latestT.Add(time.Duration(interval * 24 * float64(time.Hour)))
	now := p.now().UTC()
	days := int(estimated.Sub(now) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}

	entry := models.PredictionEntry{
		PredictedClass: label,
		EstimatedDays:  days,
		EstimatedDate:  now.AddDate(0, 0, days).Format("2006-01-02"),
		Timestamp:      now.Format("2006-01-02T15:04:05Z"),
	}

	stored, err := p.ledger.Append(entry)
	if err != nil {
		return nil, err
	}
	metrics.RecordPrediction(stored)
	if !stored {
		log.Printf("Duplicate prediction for %s on %s, not saving", entry.PredictedClass, entry.EstimatedDate)
	}

	return &Result{
		Summary: fmt.Sprintf("Predicted Solar Event Class: %s (Estimated in %d days)", label, days),
		Entry:   entry,
		Stored:  stored,
	}, nil
}
