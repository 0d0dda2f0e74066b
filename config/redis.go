package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// NewRedisClient returns nil when redis is disabled or unreachable; callers
// treat a nil client as "no cache, no events".
func NewRedisClient(config RedisConfig) *redis.Client {
	if !config.Enabled {
		log.Println("Redis disabled, running without cache and order events")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		log.Printf("Failed to connect to Redis, continuing without it: %v", err)
		rdb.Close()
		return nil
	}
	log.Printf("Redis connected: %s", pong)

	return rdb
}
