package app

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rksoft/eshop/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is read once at startup and never changes afterwards.
type Config struct {
	JWTKey        []byte        // Required: HS256 secret shared by issuer and verifier (>= 32 bytes)
	JWTIssuer     string        // Required: iss claim, checked on verify
	JWTAudience   string        // Required: aud claim, written but never checked
	TokenValidity time.Duration // Required: access token lifetime

	ListenAddr          string        // HTTP listen address (default: :8080)
	DBDriver            string        // sqlite or postgres (default: sqlite)
	DBPath              string        // SQLite database file (default: auth.db)
	DBDSN               string        // Postgres DSN, required for the postgres driver
	PepperPath          string        // File holding the password pepper (default: pepper)
	RedisAddr           string        // Shared rate limit store; in-memory limits when empty
	RoleAdminRequired   bool          // Require the Admin role for add-role and assign-role
	SwaggerEnabled      bool          // Serve /swagger/
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	Env       string // Environment (dev, staging, prod) (default: dev)
	Version   string
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // json, text (default: json)
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (Config, error) {
	env := envReader(getenv)

	cfg := Config{
		JWTKey:      []byte(getenv("AUTH_JWT_KEY")),
		JWTIssuer:   getenv("AUTH_JWT_ISSUER"),
		JWTAudience: getenv("AUTH_JWT_AUDIENCE"),

		ListenAddr:          env.orDefault("AUTH_LISTEN_ADDR", ":8080"),
		DBDriver:            strings.ToLower(env.orDefault("AUTH_DB_DRIVER", DriverSQLite)),
		DBPath:              env.orDefault("AUTH_DB_PATH", "auth.db"),
		DBDSN:               getenv("AUTH_DB_DSN"),
		PepperPath:          env.orDefault("AUTH_PEPPER_PATH", "pepper"),
		RedisAddr:           getenv("AUTH_REDIS_ADDR"),
		RoleAdminRequired:   env.bool("AUTH_ROLE_ADMIN_REQUIRED", false),
		SwaggerEnabled:      env.bool("AUTH_SWAGGER_ENABLED", false),
		ShutdownGracePeriod: env.duration("AUTH_SHUTDOWN_GRACE", 10*time.Second),

		Env:       env.orDefault("APP_ENV", "dev"),
		Version:   env.orDefault("APP_VERSION", "v0.1.0"),
		LogLevel:  env.orDefault("LOG_LEVEL", "info"),
		LogFormat: env.orDefault("LOG_FORMAT", "json"),
	}

	var errs []error
	required := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}
	required("AUTH_JWT_KEY", string(cfg.JWTKey))
	required("AUTH_JWT_ISSUER", cfg.JWTIssuer)
	required("AUTH_JWT_AUDIENCE", cfg.JWTAudience)

	if len(cfg.JWTKey) > 0 && len(cfg.JWTKey) < jwtx.MinKeySize {
		errs = append(errs, fmt.Errorf("AUTH_JWT_KEY must be at least %d bytes", jwtx.MinKeySize))
	}

	validity, err := parseValidityMinutes(getenv("AUTH_JWT_TOKEN_VALIDITY_MINS"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.TokenValidity = validity

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		required("AUTH_DB_DSN", cfg.DBDSN)
	default:
		errs = append(errs, fmt.Errorf("AUTH_DB_DRIVER %q is not one of sqlite, postgres", cfg.DBDriver))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseValidityMinutes accepts a positive decimal number of minutes that
// amounts to at least one second.
func parseValidityMinutes(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("AUTH_JWT_TOKEN_VALIDITY_MINS is required")
	}

	mins, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(mins) || math.IsInf(mins, 0) {
		return 0, fmt.Errorf("AUTH_JWT_TOKEN_VALIDITY_MINS %q is not a number", raw)
	}
	if mins <= 0 {
		return 0, fmt.Errorf("AUTH_JWT_TOKEN_VALIDITY_MINS must be positive, got %v", mins)
	}
	if mins > float64(math.MaxInt64)/float64(time.Minute) {
		return 0, fmt.Errorf("AUTH_JWT_TOKEN_VALIDITY_MINS %v is too large", mins)
	}

	d := time.Duration(mins * float64(time.Minute))
	if d < time.Second {
		return 0, fmt.Errorf("AUTH_JWT_TOKEN_VALIDITY_MINS %v is shorter than one second", mins)
	}
	return d.Truncate(time.Second), nil
}

type envReader func(string) string

func (e envReader) orDefault(key, defaultValue string) string {
	if value := e(key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) bool(key string, defaultValue bool) bool {
	value := e(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func (e envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := e(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultValue
}
