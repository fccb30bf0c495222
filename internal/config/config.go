package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets and token lifetimes are resolved once at
// startup and handed to the token codec explicitly; nothing reads them again
// at request time.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	DBConnLimit int    // maximum open connections in the pool

	JWTAccessSecret  string        // secret used to sign access tokens
	JWTRefreshSecret string        // separate secret used to sign refresh tokens
	AccessTTL        time.Duration // access token lifetime
	RefreshTTL       time.Duration // refresh token lifetime
	BcryptCost       int           // bcrypt cost for password hashing

	LogLevel  string // debug | info | warn | error
	LogFormat string // console | json
}

// Load reads configuration values from environment variables.  Every missing
// or malformed variable is reported in the returned error so operators can
// fix them in one pass.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:  l.opt("APP_ENV", "dev"),
		Port: l.must("APP_PORT"),

		DBUser:      l.must("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		DBHost:      l.must("DB_HOST"),
		DBPort:      l.must("DB_PORT"),
		DBName:      l.must("DB_NAME"),
		DBConnLimit: l.optInt("DB_CONN_LIMIT", 10),

		JWTAccessSecret:  l.must("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: l.must("JWT_REFRESH_SECRET"),
		AccessTTL:        l.optDur("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:       l.optDur("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:       l.optInt("BCRYPT_COST", 10),

		LogLevel:  strings.ToLower(l.opt("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(l.opt("LOG_FORMAT", "console")),
	}
	if cfg.JWTAccessSecret != "" && cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		l.errs = append(l.errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if cfg.DBConnLimit < 1 {
		l.errs = append(l.errs, fmt.Errorf("DB_CONN_LIMIT must be positive, got %d", cfg.DBConnLimit))
	}
	if err := errors.Join(l.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DBAddr returns host:port of the database server.
func (c Config) DBAddr() string { return c.DBHost + ":" + c.DBPort }

// loader accumulates lookup failures instead of exiting on the first one.
type loader struct{ errs []error }

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		l.errs = append(l.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (l *loader) opt(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (l *loader) optInt(key string, def int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid int for %s: %q", key, s))
		return def
	}
	return n
}

// optDur accepts Go durations ("15m") and the day shorthand used by the
// previous deployment ("7d").
func (l *loader) optDur(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	d, err := parseLifetime(s)
	if err != nil || d <= 0 {
		l.errs = append(l.errs, fmt.Errorf("invalid duration for %s: %q", key, s))
		return def
	}
	return d
}

func parseLifetime(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
