package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"fleetops/internal/geo"
)

// Config is the process configuration, assembled once at boot and passed to
// whatever needs it.
type Config struct {
	HTTPAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	JWTSecret string
	TokenTTL  time.Duration

	RedisURL string
	CacheTTL time.Duration
	// CacheTimeout bounds every cache call; a timed-out read is a miss.
	CacheTimeout time.Duration

	DriverRegistryURL    string
	ConductorRegistryURL string
	BusRegistryURL       string
	RegistryTimeout      time.Duration

	CORSOrigins []string

	// RentalVicinityKM is the maximum distance between a rental pickup or
	// drop-off point and the nearest known stop.
	RentalVicinityKM float64
	WaterBoxes       []geo.Box

	ImageBaseURL string

	LogFile  string
	LogLevel string
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on env vars")
	}

	cfg := Config{
		HTTPAddr:             getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "postgres"),
		DBPassword:           getEnv("DB_PASSWORD", "password"),
		DBName:               getEnv("DB_NAME", "fleetops"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		DBTimezone:           getEnv("DB_TIMEZONE", "UTC"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		DriverRegistryURL:    getEnv("DRIVER_REGISTRY_URL", ""),
		ConductorRegistryURL: getEnv("CONDUCTOR_REGISTRY_URL", ""),
		BusRegistryURL:       getEnv("BUS_REGISTRY_URL", ""),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "*")),
		ImageBaseURL:         strings.TrimRight(getEnv("IMAGE_BASE_URL", ""), "/"),
		LogFile:              getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 72*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CacheTimeout, err = getDuration("CACHE_TIMEOUT", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RegistryTimeout, err = getDuration("REGISTRY_TIMEOUT", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RentalVicinityKM, err = getFloat("RENTAL_VICINITY_KM", 50); err != nil {
		return Config{}, err
	}
	cfg.WaterBoxes = geo.DefaultWaterBoxes
	if raw := getEnv("RENTAL_WATER_BOXES", ""); raw != "" {
		if cfg.WaterBoxes, err = geo.ParseBoxes(raw); err != nil {
			return Config{}, fmt.Errorf("RENTAL_WATER_BOXES: %w", err)
		}
	}
	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimezone,
	)
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
