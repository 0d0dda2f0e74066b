package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	Redis    RedisConfig
	DB       DBConfig
	Auth     AuthConfig
	POS      POSConfig
	Location *time.Location
}

type HTTPConfig struct {
	Port        string
	RateLimit   string
	CORSOrigins []string
}

type GRPCConfig struct {
	Port string
}

type DBConfig struct {
	DSN      string
	SeedDemo bool
}

type AuthConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	SessionSecure bool
}

type POSConfig struct {
	OrderListLimit int
	TopItemsLimit  int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		sessionTTL = 24 * time.Hour
	}

	loc, err := time.LoadLocation(getEnv("POS_TIMEZONE", "Local"))
	if err != nil {
		log.Printf("Unknown POS_TIMEZONE, falling back to Local: %v", err)
		loc = time.Local
	}

	env := getEnv("APP_ENV", "development")

	return Config{
		Env: env,
		HTTP: HTTPConfig{
			Port:        getEnv("HTTP_PORT", "8080"),
			RateLimit:   getEnv("RATE_LIMIT", "300-M"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		GRPC: GRPCConfig{
			Port: getEnv("GRPC_PORT", "50053"),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN:      getEnv("POS_DSN", ""),
			SeedDemo: getBool("SEED_DEMO_DATA", false),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "pos-secret-key"),
			SessionTTL:    sessionTTL,
			SessionSecure: getBool("SESSION_SECURE", env == "production"),
		},
		POS: POSConfig{
			OrderListLimit: 1000,
			TopItemsLimit:  5,
		},
		Location: loc,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
