// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string   // APP_ENV (dev, test, prod)
	Port           string   // APP_PORT
	LogLevel       string   // LOG_LEVEL (debug, info, warn, error)
	StoreDriver    string   // STORE_DRIVER, mysql or memory
	DBUser         string   // DB_USER
	DBPass         string   // DB_PASS (optional)
	DBHost         string   // DB_HOST
	DBPort         string   // DB_PORT
	DBName         string   // DB_NAME
	DBAutoMigrate  bool     // DB_AUTO_MIGRATE
	JWTSecret      string   // JWT_SECRET
	AccessTTLMin   int      // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays int      // REFRESH_TOKEN_TTL_DAYS
	BcryptCost     int      // BCRYPT_COST
	AdminEmail     string   // ADMIN_EMAIL, the protected seed account
	AdminPassword  string   // ADMIN_PASSWORD; seeding is skipped when empty
	AdminName      string   // ADMIN_NAME
	RabbitURL      string   // RABBITMQ_URL; hand-off is disabled when empty
	HandoffLogDir  string   // HANDOFF_LOG_DIR
	CORSOrigins    []string // CORS_ORIGINS, comma separated
	SeedDemoUsers  int      // SEED_DEMO_USERS; demo data is generated when > 0
}

// loader collects every missing or malformed key so startup reports them
// all at once.
type loader struct{ errs []error }

func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.errs = append(l.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid int for %s: %q", key, s))
	}
	return n
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	var l loader
	cfg := Config{
		Env:            l.must("APP_ENV"),
		Port:           l.must("APP_PORT"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		StoreDriver:    strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),
		DBPass:         os.Getenv("DB_PASS"),
		DBAutoMigrate:  envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:      l.must("JWT_SECRET"),
		AccessTTLMin:   l.mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: l.mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		AdminEmail:     strings.ToLower(envStr("ADMIN_EMAIL", "admin@campus.edu")),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminName:      envStr("ADMIN_NAME", "System Admin"),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		HandoffLogDir:  envStr("HANDOFF_LOG_DIR", "logs"),
		CORSOrigins:    splitList(envStr("CORS_ORIGINS", "*")),
		SeedDemoUsers:  envInt("SEED_DEMO_USERS", 0),
	}
	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = l.must("DB_PORT")
		cfg.DBName = l.must("DB_NAME")
	case DriverMemory:
	default:
		l.errs = append(l.errs, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver))
	}
	return cfg, errors.Join(l.errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
