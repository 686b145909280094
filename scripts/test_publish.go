//go:build ignore
// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type LocationFixEvent struct {
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Source    string     `json:"source,omitempty"`
}

func ptr[T any](v T) *T {
	return &v
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	lat := flag.Float64("lat", 40.7128, "Latitude")
	lon := flag.Float64("lon", -74.0060, "Longitude")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Запоминаем последний id стрима обновлений, чтобы ждать только новые
	lastID := "$"
	if msgs, err := client.XRevRangeN(ctx, "stream:overlay:updated", "+", "-", 1).Result(); err == nil && len(msgs) > 0 {
		lastID = msgs[0].ID
	}

	event := LocationFixEvent{
		Latitude:  ptr(*lat),
		Longitude: ptr(*lon),
		Timestamp: ptr(time.Now().UTC()),
		Source:    "test_publish",
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:location:fix",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Fix published\n")
	fmt.Printf("   Stream: stream:location:fix\n")
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Coordinates: %.6f, %.6f\n", *event.Latitude, *event.Longitude)

	// Оверлей обновляется только по первому фиксу сессии трекинга:
	// разрешение должно быть выдано, трекинг запущен
	fmt.Printf("\nWaiting for stream:overlay:updated...\n")

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for {
		streams, err := client.XRead(readCtx, &redis.XReadArgs{
			Streams: []string{"stream:overlay:updated", lastID},
			Count:   1,
			Block:   time.Second,
		}).Result()
		if readCtx.Err() != nil {
			fmt.Println("Timeout waiting for overlay update")
			return
		}
		if err != nil {
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				var update map[string]interface{}
				if err := json.Unmarshal([]byte(dataStr), &update); err != nil {
					continue
				}
				pretty, _ := json.MarshalIndent(update, "", "  ")
				fmt.Printf("\nOverlay updated:\n%s\n", pretty)

				cached, err := client.Get(ctx, "overlay:current").Bytes()
				if err == nil {
					fmt.Printf("Snapshot in overlay:current: %d bytes\n", len(cached))
				}
				return
			}
		}
	}
}
