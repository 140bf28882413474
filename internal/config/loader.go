package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Store drivers accepted by BOOKING_STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort    int
	StoreDriver string
	SQLiteDSN   string
	PostgresDSN string
	JWTSecret   string
	Location    *time.Location

	RedisAddr string
	LockTTL   time.Duration
	LockWait  time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  string
	LogFormat string
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Every missing required value and
// every malformed value is collected and reported in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:    8080,
		StoreDriver: DriverSQLite,
		SQLiteDSN:   "booking.db",
		Location:    time.UTC,
		LockTTL:     10 * time.Second,
		LockWait:    5 * time.Second,
		KafkaTopic:  "coworking.reservations",
		LogLevel:    "info",
		LogFormat:   "json",
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if portValue := env("BOOKING_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := strings.ToLower(env("BOOKING_STORE_DRIVER")); driver != "" {
		switch driver {
		case DriverSQLite, DriverPostgres, DriverMemory:
			cfg.StoreDriver = driver
		default:
			invalid = append(invalid, "BOOKING_STORE_DRIVER")
		}
	}

	if dsn := env("BOOKING_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.PostgresDSN = env("BOOKING_POSTGRES_DSN")
	if cfg.StoreDriver == DriverPostgres && cfg.PostgresDSN == "" {
		missing = append(missing, "BOOKING_POSTGRES_DSN")
	}

	if secret := env("BOOKING_JWT_SECRET"); secret == "" {
		missing = append(missing, "BOOKING_JWT_SECRET")
	} else {
		cfg.JWTSecret = secret
	}

	if tz := env("BOOKING_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, "BOOKING_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	cfg.RedisAddr = env("BOOKING_REDIS_ADDR")

	if d, ok := parseDuration("BOOKING_LOCK_TTL"); !ok {
		invalid = append(invalid, "BOOKING_LOCK_TTL")
	} else if d > 0 {
		cfg.LockTTL = d
	}
	if d, ok := parseDuration("BOOKING_LOCK_WAIT"); !ok {
		invalid = append(invalid, "BOOKING_LOCK_WAIT")
	} else if d > 0 {
		cfg.LockWait = d
	}

	for _, broker := range strings.Split(env("BOOKING_KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}
	if topic := env("BOOKING_KAFKA_TOPIC"); topic != "" {
		cfg.KafkaTopic = topic
	}

	if level := env("BOOKING_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := strings.ToLower(env("BOOKING_LOG_FORMAT")); format != "" {
		if format != "json" && format != "text" {
			invalid = append(invalid, "BOOKING_LOG_FORMAT")
		} else {
			cfg.LogFormat = format
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// HTTPAddr returns the listen address for the HTTP server.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// parseDuration reports ok=false for a set but malformed or non-positive value.
// An unset key yields zero.
func parseDuration(key string) (time.Duration, bool) {
	raw := env(key)
	if raw == "" {
		return 0, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
