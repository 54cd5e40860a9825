package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"flarecast/internal/config"
	"flarecast/internal/donki"
	"flarecast/internal/models"
	"flarecast/internal/store"
)

const refreshInterval = 6 * time.Hour

func main() {
	once := flag.Bool("once", false, "fetch a single window and exit instead of running the refresh loop")
	flag.Parse()

	cfg, err := config.Load("./config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	apiKey := cfg.DONKI.APIKey
	if envKey := os.Getenv("NASA_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		log.Fatalf("No NASA API key configured (set donki.api_key or NASA_API_KEY)")
	}

	redisCfg := config.GetRedisConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	client := donki.NewClient(apiKey)
	events := store.NewEventStore(cfg.Data.EventsFile)

	fetchOnce(client, events, redisClient, redisCfg.Stream, cfg.DONKI.HistoryYears)
	if *once {
		return
	}

	go startRefreshLoop(client, events, redisClient, redisCfg.Stream, cfg.DONKI.HistoryYears)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("Fetcher running. Press Ctrl+C to stop...")
	<-quit

	log.Println("Shutting down fetcher...")
}

// startRefreshLoop periodically re-fetches the full event window
func startRefreshLoop(client *donki.Client, events *store.EventStore, redisClient *redis.Client, stream string, historyYears int) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for range ticker.C {
		log.Println("Refreshing space weather data from DONKI")
		fetchOnce(client, events, redisClient, stream, historyYears)
	}
}

func fetchOnce(client *donki.Client, events *store.EventStore, redisClient *redis.Client, stream string, historyYears int) {
	end := time.Now().UTC()
	start := end.AddDate(-historyYears, 0, 0)

	doc, err := client.FetchDocument(start, end)
	if err != nil {
		log.Printf("Failed to fetch space weather data: %v", err)
		return
	}

	if err := events.Save(doc); err != nil {
		log.Printf("Failed to save event document: %v", err)
		return
	}
	log.Printf("✓ Saved event document with %d flares", len(doc.SolarFlares))

	sendToRedis(redisClient, stream, doc)
}

// sendToRedis serializes the fetched document and publishes it to a Redis
// stream for the archive consumer
func sendToRedis(redisClient *redis.Client, stream string, doc *models.EventDocument) {
	data, err := json.Marshal(map[string]interface{}{
		"fetched_at": doc.Timestamp,
		"document":   doc,
	})
	if err != nil {
		log.Printf("Failed to serialize document: %v", err)
		return
	}

	err = redisClient.XAdd(context.Background(), &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		log.Printf("Failed to publish to Redis: %v", err)
	} else {
		log.Printf("Published event document to Redis stream %s", stream)
	}
}
