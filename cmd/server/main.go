package main

import (
	"log"

	"flarecast/internal/config"
	"flarecast/internal/ledger"
	"flarecast/internal/model"
	"flarecast/internal/predictor"
	"flarecast/internal/server"
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

	httpServer := server.NewServer(modelStore, pred, ldg)

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := httpServer.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
