package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TrainingRunsTotal tracks training runs by outcome
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flarecast_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"status"},
	)

	// TrainingDuration tracks how long a full training run takes
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flarecast_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ModelAccuracy is the held-out accuracy of the last trained classifier
	ModelAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flarecast_classifier_accuracy",
			Help: "Held-out accuracy of the last trained intensity classifier",
		},
	)

	// ModelMAE is the held-out mean absolute error of the last trained regressor
	ModelMAE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flarecast_regressor_mae_days",
			Help: "Held-out mean absolute error (days) of the last trained interval regressor",
		},
	)

	// PredictionsTotal tracks predictions by persistence outcome
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flarecast_predictions_total",
			Help: "Total number of predictions produced",
		},
		[]string{"outcome"},
	)

	// DBQueriesTotal tracks the total number of archive database queries
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flarecast_db_queries_total",
			Help: "Total number of archive database queries executed",
		},
		[]string{"query_type", "table", "status"},
	)

	// DBQueryDuration tracks the duration of archive database queries
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flarecast_db_query_duration_seconds",
			Help:    "Duration of archive database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "table"},
	)

	// AppInfo provides static information about the application
	AppInfo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flarecast_app_info",
			Help: "Application information (always 1)",
		},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flarecast_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppInfo.Set(1)
	AppStartTime.SetToCurrentTime()
}

// RecordTraining records one training run
func RecordTraining(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TrainingRunsTotal.WithLabelValues(status).Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// SetModelScores publishes the held-out scores of the last training run
func SetModelScores(accuracy, mae float64) {
	ModelAccuracy.Set(accuracy)
	ModelMAE.Set(mae)
}

// RecordPrediction records one prediction and whether it was persisted or
// deduplicated
func RecordPrediction(stored bool) {
	outcome := "stored"
	if !stored {
		outcome = "duplicate"
	}
	PredictionsTotal.WithLabelValues(outcome).Inc()
}

// RecordDBQuery records an archive database query execution
func RecordDBQuery(queryType, table string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueriesTotal.WithLabelValues(queryType, table, status).Inc()
	DBQueryDuration.WithLabelValues(queryType, table).Observe(duration.Seconds())
}
