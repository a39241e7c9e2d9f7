package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     string
	LogLevel string

	DBDriver string
	DBDSN    string

	// JWTSecret signs staff tokens when Cognito is not configured.
	JWTSecret      string
	CognitoRegion  string
	CognitoEnabled bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// BookingLocation resolves calendar dates (?date=YYYY-MM-DD) to instants.
	BookingLocation *time.Location
	ReserveTimeout  time.Duration
	CORSOrigins     []string
}

// Load reads an optional .env file and builds the configuration from the
// environment. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// LoadStore is Load for tools that only talk to the database and need no
// auth or cache settings.
func LoadStore() (*Config, error) {
	_ = godotenv.Load()
	return storeFromEnv()
}

func FromEnv() (*Config, error) {
	cfg, err := storeFromEnv()
	if err != nil {
		return nil, err
	}

	cfg.Port = getEnv("PORT", "6060")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.CognitoRegion = os.Getenv("COGNITO_REGION")
	cfg.CognitoEnabled = cfg.CognitoRegion != ""
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))

	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReserveTimeout, err = getDuration("RESERVE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	if !cfg.CognitoEnabled && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("either JWT_SECRET or COGNITO_REGION must be set")
	}
	return cfg, nil
}

func storeFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DBDriver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:    getEnv("DB_DSN", "./database.db"),
	}

	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	tz := getEnv("BOOKING_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", tz, err)
	}
	cfg.BookingLocation = loc
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
