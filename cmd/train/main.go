package main

import (
	"errors"
	"log"

	"flarecast/internal/config"
	"flarecast/internal/features"
	"flarecast/internal/model"
	"flarecast/internal/store"
)

func main() {
	cfg, err := config.Load("./config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	events := store.NewEventStore(cfg.Data.EventsFile)
	modelStore := model.NewStore(events, cfg.Data)

	log.Println("Training models...")
	m, err := modelStore.Retrain()
	if errors.Is(err, store.ErrDataUnavailable) {
		log.Printf("No data available for training: %v", err)
		return
	}
	if errors.Is(err, features.ErrInsufficientData) {
		log.Printf("Not enough data for training: %v", err)
		return
	}
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	log.Printf("✓ Training complete: accuracy=%.3f, MAE=%.3f days (train=%d, test=%d)",
		m.Accuracy, m.MAE, m.TrainSize, m.TestSize)
}
