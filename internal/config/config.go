package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"wager_service/internal/domain"
	"wager_service/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string
	LogJSON     bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Stake bounds
	MinStake domain.Amount
	MaxStake domain.Amount

	// Dedup / throttle
	DedupWindow       time.Duration
	MinActionInterval time.Duration

	// Sweep
	SweepInterval  time.Duration
	SessionTimeout time.Duration

	// Transport rate limits
	APIRateLimit   int
	APIRateWindow  time.Duration
	GameRateLimit  int
	GameRateWindow time.Duration

	AdminPlayerIDs []int64
	DevAuthEnabled bool
	HistoryBuffer  int
}

// Load reads configuration from the environment. Required variables
// terminate the process when missing.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Admin player ids, comma separated
	var adminIDs []int64
	if raw := os.Getenv("ADMIN_PLAYER_IDS"); raw != "" {
		for _, idStr := range strings.Split(raw, ",") {
			idStr = strings.TrimSpace(idStr)
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,
		LogLevel:    envString("LOG_LEVEL", "info"),
		LogJSON:     os.Getenv("LOG_JSON") == "true",

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		MinStake: envAmount("MIN_STAKE", domain.Amount(100)),       // 1.00
		MaxStake: envAmount("MAX_STAKE", domain.Amount(100000_00)), // 100000.00

		DedupWindow:       envMillis("DEDUP_WINDOW_MS", 350),
		MinActionInterval: envMillis("MIN_ACTION_INTERVAL_MS", 350),

		SweepInterval:  envSeconds("SWEEP_INTERVAL_SECONDS", 60),
		SessionTimeout: envSeconds("SESSION_TIMEOUT_SECONDS", 300),

		APIRateLimit:   envInt("API_RATE_LIMIT", 60),
		APIRateWindow:  envSeconds("API_RATE_WINDOW_SECONDS", 60),
		GameRateLimit:  envInt("GAME_RATE_LIMIT", 60),
		GameRateWindow: envSeconds("GAME_RATE_WINDOW_SECONDS", 60),

		AdminPlayerIDs: adminIDs,
		DevAuthEnabled: os.Getenv("DEV_AUTH_ENABLED") == "true",
		HistoryBuffer:  envInt("HISTORY_BUFFER", 256),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envSeconds(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Second
}

func envMillis(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Millisecond
}

func envAmount(key string, def domain.Amount) domain.Amount {
	if v := os.Getenv(key); v != "" {
		if a, err := domain.ParseAmount(v); err == nil && a > 0 {
			return a
		}
		logger.Warn("ignoring invalid amount in env", "key", key, "value", v)
	}
	return def
}
