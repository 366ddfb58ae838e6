package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultDSN         = "host=localhost user=postgres password=postgres dbname=lager port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort       string
	StoreDriver    string
	DataDir        string
	SeedFile       string // optional, sonst eingebetteter Seed
	SQLitePath     string
	DatabaseDSN    string
	JWTSecret      string
	SessionTTL     time.Duration
	CORSOrigins    string
	MetricsEnabled bool
}

// FromEnv liest die Konfiguration ohne sie zu prüfen.
func FromEnv() *Config {
	dataDir := getEnv("DATA_DIR", "./data")
	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "3000"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverJSON)),
		DataDir:        dataDir,
		SeedFile:       getEnv("SEED_FILE", ""),
		SQLitePath:     getEnv("SQLITE_PATH", filepath.Join(dataDir, "lager.db")),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SessionTTL:     getDuration("SESSION_TTL", 12*time.Hour),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		MetricsEnabled: getBool("METRICS_ENABLED", true),
	}
}

// Validate: Fehler, die einen Start verhindern
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET ist nicht gesetzt")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET muss mindestens 32 Zeichen lang sein")
	}
	switch c.StoreDriver {
	case DriverJSON, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("STORE_DRIVER %q unbekannt (json, sqlite, postgres)", c.StoreDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL muss positiv sein")
	}
	// Sessions laufen über Cookies, AllowCredentials verträgt kein "*"
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if strings.TrimSpace(origin) == "*" {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS darf kein \"*\" enthalten, Origins einzeln angeben")
		}
	}
	return nil
}

func Load() *Config {
	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN verwendet den Standardwert, für Produktion eigene Postgres-Verbindung setzen.")
	}
	if cfg.CORSOrigins == defaultCORSOrigins {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS verwendet den Standardwert, für Produktion eigene Domain setzen.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[WARN] %s=%q ist kein bool, verwende %v", key, v, def)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s=%q ist keine Dauer, verwende %s", key, v, def)
		return def
	}
	return d
}
