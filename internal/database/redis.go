package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the redis client
type RedisClient struct {
	*redis.Client
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping Redis: %w", err)
	}

	log.Println("Successfully connected to Redis")

	return &RedisClient{Client: client}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r.Client != nil {
		log.Println("Closing Redis connection")
		return r.Client.Close()
	}
	return nil
}

// Health checks the Redis connection health
func (r *RedisClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.Ping(ctx).Err()
}

// FavoritesSlot stores the serialized favorites list under a single key.
// It satisfies the services.Slot contract.
type FavoritesSlot struct {
	client *RedisClient
	key    string
}

// NewFavoritesSlot creates a Redis-backed favorites slot
func NewFavoritesSlot(client *RedisClient, key string) *FavoritesSlot {
	if key == "" {
		key = "kinogrid:favorites"
	}
	return &FavoritesSlot{
		client: client,
		key:    key,
	}
}

// Get reads the slot. A missing key reports ok=false, not an error.
func (s *FavoritesSlot) Get(ctx context.Context) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read favorites slot: %w", err)
	}
	return val, true, nil
}

// Set replaces the slot contents. Favorites never expire.
func (s *FavoritesSlot) Set(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write favorites slot: %w", err)
	}
	return nil
}
