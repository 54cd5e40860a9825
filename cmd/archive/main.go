package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"flarecast/internal/archive"
	"flarecast/internal/config"
	"flarecast/internal/models"
)

func main() {
	cfg, err := config.Load("./config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	db, err := archive.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize archive database: %v", err)
	}
	defer db.Close()

	if recent, err := db.RecentFlares(1); err == nil && len(recent) > 0 {
		log.Printf("Resuming archive, latest flare: %s at %s", recent[0].ClassType, recent[0].BeginTime)
	}

	consumerGroup := "archive_consumers"
	consumerName := "archiver-1"
	stream := cfg.Redis.Stream

	// Create consumer group if it doesn't exist
	err = redisClient.XGroupCreate(context.Background(), stream, consumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		log.Fatalf("Failed to create consumer group: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-quit
		log.Println("Shutting down archive service...")
		cancel()
	}()

	log.Println("Archive service started, reading from Redis stream. Press Ctrl+C to stop...")

	for {
		msgs, err := redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: consumerName,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    time.Second * 5,
		}).Result()

		if ctx.Err() != nil {
			break
		}

		if err != nil && err != redis.Nil {
			log.Printf("Error reading from Redis: %v", err)
			continue
		}

		for _, msg := range msgs {
			for _, m := range msg.Messages {
				if ctx.Err() != nil {
					log.Println("Archive service stopped")
					return
				}

				var payload struct {
					FetchedAt string                `json:"fetched_at"`
					Document  *models.EventDocument `json:"document"`
				}

				dataStr, ok := m.Values["data"].(string)
				if !ok {
					log.Printf("Warning: message %s has no 'data' field", m.ID)
					continue
				}
				if err := json.Unmarshal([]byte(dataStr), &payload); err != nil {
					log.Printf("Failed to unmarshal message: %v", err)
					continue
				}
				if payload.Document == nil {
					log.Printf("Message %s carries no document", m.ID)
					continue
				}

				if err := db.StoreDocument(payload.Document); err != nil {
					log.Printf("Failed to archive document fetched at %s: %v", payload.FetchedAt, err)
					continue
				}

				if counts, err := db.CountBySeries(); err == nil {
					log.Printf("Archive now holds: %v", counts)
				}

				redisClient.XAck(context.Background(), stream, consumerGroup, m.ID)
			}
		}
	}

	log.Println("Archive service stopped")
}
