package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the service configuration assembled from the environment.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	Generator GeneratorConfig
	RateLimit RateLimitConfig

	// BudgetRulesPath optionally points at a TOML file overriding the default budget rules.
	BudgetRulesPath string
}

type ServerConfig struct {
	Port               string
	ReadHeaderTimeout  time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

type StorageConfig struct {
	Backend     string // memory | postgres
	DatabaseURL string
	MaxConns    int
}

type AuthConfig struct {
	Mode       string // jwt | dev
	DevSubject string
	DevIssuer  string
}

type LoggingConfig struct {
	Level      string // debug | info | warn | error
	Format     string // json | text
	Output     string // stdout | file
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type GeneratorConfig struct {
	Provider          string // none | llm
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// Load reads .env files (missing files are ignored) and then the process environment.
// Variables already present in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}

	cfg := Config{
		Server: ServerConfig{
			Port:               e.str("PORT", "8080"),
			ReadHeaderTimeout:  e.duration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ShutdownTimeout:    e.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSAllowedOrigins: e.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			Backend:     e.str("STORAGE_BACKEND", "memory"),
			DatabaseURL: e.str("DATABASE_URL", ""),
			MaxConns:    e.int("DB_MAX_CONNS", 10),
		},
		Auth: AuthConfig{
			Mode:       e.str("AUTH_MODE", "jwt"),
			DevSubject: e.str("DEV_SUBJECT", "dev|local"),
			DevIssuer:  e.str("DEV_ISSUER", "dev"),
		},
		Logging: LoggingConfig{
			Level:      e.str("LOG_LEVEL", "info"),
			Format:     e.str("LOG_FORMAT", "json"),
			Output:     e.str("LOG_OUTPUT", "stdout"),
			FilePath:   e.str("LOG_FILE_PATH", "logs/trip-budget-api.log"),
			MaxSizeMB:  e.int("LOG_MAX_SIZE_MB", 100),
			MaxBackups: e.int("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: e.int("LOG_MAX_AGE_DAYS", 28),
			Compress:   e.bool("LOG_COMPRESS", true),
		},
		Generator: GeneratorConfig{
			Provider:          e.str("GENERATOR_PROVIDER", "none"),
			BaseURL:           e.str("GENERATOR_BASE_URL", ""),
			APIKey:            e.str("GENERATOR_API_KEY", ""),
			Model:             e.str("GENERATOR_MODEL", ""),
			Timeout:           e.duration("GENERATOR_TIMEOUT", 20*time.Second),
			RequestsPerMinute: e.int("GENERATOR_REQUESTS_PER_MINUTE", 30),
		},
		RateLimit: RateLimitConfig{
			Enabled:           e.bool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: e.float("RATE_LIMIT_RPS", 10),
			Burst:             e.int("RATE_LIMIT_BURST", 20),
		},
		BudgetRulesPath: e.str("BUDGET_RULES_FILE", ""),
	}

	if err := errors.Join(e.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be memory or postgres, got %q", c.Storage.Backend))
	}
	if c.Auth.Mode != "jwt" && c.Auth.Mode != "dev" {
		errs = append(errs, fmt.Errorf("AUTH_MODE must be jwt or dev, got %q", c.Auth.Mode))
	}
	switch c.Generator.Provider {
	case "none":
	case "llm":
		if c.Generator.BaseURL == "" {
			errs = append(errs, errors.New("GENERATOR_BASE_URL is required when GENERATOR_PROVIDER=llm"))
		}
	default:
		errs = append(errs, fmt.Errorf("GENERATOR_PROVIDER must be none or llm, got %q", c.Generator.Provider))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0 when rate limiting is enabled"))
	}
	return errors.Join(errs...)
}
