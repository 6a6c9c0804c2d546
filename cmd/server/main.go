package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/avoronin/kinogrid/internal/config"
	"github.com/avoronin/kinogrid/internal/database"
	"github.com/avoronin/kinogrid/internal/handlers"
	"github.com/avoronin/kinogrid/internal/middleware"
	"github.com/avoronin/kinogrid/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := log.New(os.Stdout, "[kinogrid] ", log.LstdFlags|log.Lshortfile)
	logger.Printf("Starting kinogrid server in %s mode", cfg.Server.Env)

	// Initialize Redis when the favorites slot lives there; the file backend
	// needs no external service at all.
	var redisClient *database.RedisClient
	if cfg.Favorites.Backend == "redis" {
		redisClient, err = database.NewRedisClient(database.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       0,
			TLS:      cfg.Redis.TLS,
		})
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	// Initialize the favorites slot
	var slot services.Slot
	if redisClient != nil {
		slot = database.NewFavoritesSlot(redisClient, "kinogrid:favorites")
	} else {
		slot = services.NewFileSlot(cfg.Favorites.File)
	}

	// Initialize services
	omdbService := services.NewOMDBService(services.OMDBConfig{
		APIKey:  cfg.OMDB.APIKey,
		BaseURL: cfg.OMDB.BaseURL,
		Timeout: cfg.OMDB.Timeout,
	})
	favoritesService := services.NewFavoritesService(slot)
	aggregateService := services.NewAggregateService(omdbService, services.AggregateConfig{
		SearchBatchSize: cfg.Aggregate.SearchBatchSize,
		DetailBatchSize: cfg.Aggregate.DetailBatchSize,
		BatchPause:      cfg.Aggregate.BatchPause,
		MaxDetails:      cfg.Aggregate.MaxDetails,
		KeepPartial:     true,
	}, logger)

	keywords := cfg.Aggregate.Keywords
	if len(keywords) == 0 {
		keywords = services.DefaultKeywords
	}
	libraryService := services.NewLibraryService(omdbService, aggregateService, favoritesService, keywords, cfg.Snapshot.File, logger)

	// Fill the collection: snapshot first, live aggregation as fallback.
	// An unreachable catalog is not fatal; the server starts with an empty
	// grid and /api/movies/refresh can retry later.
	if err := libraryService.Load(context.Background()); err != nil {
		logger.Printf("Starting with empty collection: %v", err)
	}

	// Initialize rate limiter (100 req/min, enforced in production only)
	limit := func(h http.Handler) http.Handler { return h }
	if redisClient != nil {
		rateLimiter := middleware.NewRateLimiter(redisClient.Client, 100, time.Minute, cfg.IsProduction())
		limit = rateLimiter.Limit
	}

	// Initialize handlers
	validate := validator.New()
	movieHandler := handlers.NewMovieHandler(libraryService, validate, logger)
	favoritesHandler := handlers.NewFavoritesHandler(favoritesService, logger)
	catalogHandler := handlers.NewCatalogHandler(omdbService, logger)

	// Set up HTTP router
	mux := http.NewServeMux()

	// Movie API routes
	mux.Handle("GET /api/movies", limit(http.HandlerFunc(movieHandler.List)))
	mux.Handle("GET /api/movies/{id}", limit(http.HandlerFunc(movieHandler.Get)))
	mux.Handle("POST /api/movies/refresh", limit(http.HandlerFunc(movieHandler.Refresh)))

	// Live catalog search
	mux.Handle("GET /api/search", limit(http.HandlerFunc(catalogHandler.Search)))

	// Favorites routes
	mux.Handle("GET /api/favorites", limit(http.HandlerFunc(favoritesHandler.List)))
	mux.Handle("POST /api/favorites/toggle", limit(http.HandlerFunc(favoritesHandler.Toggle)))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, `{"status":"unhealthy","redis":"down","movies":%d}`, libraryService.Count())
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","movies":%d}`, libraryService.Count())
	})

	// Wrap with logging middleware
	handler := middleware.Logger(logger)(mux)

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server exited")
}
