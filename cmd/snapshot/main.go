// Command snapshot regenerates the movies.json collection offline, so the
// server can start without hammering the catalog API. Run it whenever the
// snapshot should be refreshed:
//
//	OMDB_API_KEY=... go run ./cmd/snapshot
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/avoronin/kinogrid/internal/config"
	"github.com/avoronin/kinogrid/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := log.New(os.Stdout, "[snapshot] ", log.LstdFlags)

	omdbService := services.NewOMDBService(services.OMDBConfig{
		APIKey:  cfg.OMDB.APIKey,
		BaseURL: cfg.OMDB.BaseURL,
		Timeout: cfg.OMDB.Timeout,
	})

	// The generator enriches everything it finds and drops items whose
	// detail fetch failed, so the snapshot only carries full records.
	aggregateService := services.NewAggregateService(omdbService, services.AggregateConfig{
		SearchBatchSize: cfg.Aggregate.SearchBatchSize,
		DetailBatchSize: cfg.Aggregate.DetailBatchSize,
		BatchPause:      cfg.Aggregate.BatchPause,
		MaxDetails:      0,
		KeepPartial:     false,
	}, logger)

	keywords := cfg.Aggregate.Keywords
	if len(keywords) == 0 {
		keywords = services.DefaultKeywords
	}

	logger.Printf("Generating %s from %d keywords, this can take a few minutes", cfg.Snapshot.File, len(keywords))
	start := time.Now()

	movies, err := aggregateService.Aggregate(context.Background(), keywords)
	if err != nil {
		logger.Fatalf("Aggregation failed: %v", err)
	}

	if err := services.WriteSnapshot(cfg.Snapshot.File, movies); err != nil {
		logger.Fatalf("Failed to write snapshot: %v", err)
	}

	logger.Printf("Wrote %d movies to %s in %s", len(movies), cfg.Snapshot.File, time.Since(start).Round(time.Second))
}
