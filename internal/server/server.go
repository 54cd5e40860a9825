package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flarecast/internal/features"
	"flarecast/internal/ledger"
	"flarecast/internal/model"
	"flarecast/internal/predictor"
	"flarecast/internal/store"
)

type TrainRequest struct {
	Force bool `json:"force"`
}

// Server represents the HTTP server
type Server struct {
	models    *model.Store
	predictor *predictor.Predictor
	ledger    *ledger.Ledger
	mux       *http.ServeMux
}

// NewServer creates a new HTTP server
func NewServer(models *model.Store, pred *predictor.Predictor, ldg *ledger.Ledger) *Server {
	s := &Server{
		models:    models,
		predictor: pred,
		ledger:    ldg,
		mux:       http.NewServeMux(),
	}

	// Register routes
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/train", s.handleTrain)
	s.mux.HandleFunc("/predict", s.handlePredict)
	s.mux.HandleFunc("/history", s.handleHistory)
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

// handleTrain triggers a training run. The optional body {"force": bool}
// defaults to a forced retrain.
func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := TrainRequest{Force: true}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	if !req.Force {
		if _, _, err := s.models.Models(false); err != nil {
			writeDataError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
		return
	}

	m, err := s.models.Retrain()
	if err != nil {
		writeDataError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     "trained",
		"accuracy":   m.Accuracy,
		"mae_days":   m.MAE,
		"train_size": m.TrainSize,
		"test_size":  m.TestSize,
	})
}

// handlePredict runs one inference and returns the summary plus the
// structured, possibly deduplicated, ledger entry.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.predictor.PredictNext()
	if err != nil {
		writeDataError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summary":    result.Summary,
		"prediction": result.Entry,
		"stored":     result.Stored,
	})
}

// handleHistory returns the persisted predictions in storage order
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.ReadAll()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rendered, err := s.ledger.RenderHistory()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":       len(entries),
		"history":     rendered,
		"predictions": entries,
	})
}

// writeDataError maps pipeline errors onto HTTP statuses: missing input data
// and too-few events are client-visible conditions, everything else is a 500.
func writeDataError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDataUnavailable):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, features.ErrInsufficientData):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
