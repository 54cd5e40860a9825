package main

import (
	"fmt"
	"log"

	"flarecast/internal/config"
	"flarecast/internal/ledger"
	"flarecast/internal/model"
	"flarecast/internal/predictor"
	"flarecast/internal/store"
)

func main() {
	cfg, err := config.Load("./config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	events := store.NewEventStore(cfg.Data.EventsFile)
	modelStore := model.NewStore(events, cfg.Data)
	ldg := ledger.New(cfg.Data.LedgerFile)
	pred := predictor.New(events, modelStore, ldg)

	result, err := pred.PredictNext()
	if err != nil {
		log.Fatalf("Prediction failed: %v", err)
	}

	fmt.Println(result.Summary)
	if !result.Stored {
		fmt.Println("(duplicate prediction, not saved)")
	}

	history, err := ldg.RenderHistory()
	if err != nil {
		log.Fatalf("Failed to load prediction history: %v", err)
	}
	fmt.Println("=== Past Predictions ===")
	fmt.Println(history)
}
