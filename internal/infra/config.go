package infra

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	RolePolicyFirstCome = "first_come"
	RolePolicyPassword  = "password"

	SkipPolicyLeavePending = "leave_pending"
	SkipPolicyConfirmAsIs  = "confirm_as_is"

	ExtractionProviderOpenAI = "openai"
	ExtractionProviderGemini = "gemini"
	ExtractionProviderNone   = "none"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	StoreDriver        string
	DatabaseURL        string
	SQLitePath         string
	RedisURL           string
	ExtractionProvider string
	ExtractionTimeout  time.Duration
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	OpenAIOrg          string
	GeminiAPIKey       string
	GeminiModel        string
	EventConfigPath    string
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	MaxUploadBytes     int64
	SessionLifetime    time.Duration
	Event              EventConfig
}

// EventConfig holds per-event settings that organisers tune between events.
type EventConfig struct {
	Title          string  `yaml:"title"`
	Goal           float64 `yaml:"goal"`
	CurrencySymbol string  `yaml:"currency_symbol"`
	Locale         string  `yaml:"locale"`
	RolePolicy     string  `yaml:"role_policy"`
	AdminSecret    string  `yaml:"admin_secret"`
	EditorSecret   string  `yaml:"editor_secret"`
	SkipPolicy     string  `yaml:"skip_policy"`
	TitleCaseNames bool    `yaml:"title_case_names"`
}

// DefaultEventConfig mirrors the settings used at the first live event.
func DefaultEventConfig() EventConfig {
	return EventConfig{
		Title:          "Live Donations",
		Goal:           2000,
		CurrencySymbol: "$",
		Locale:         "en",
		RolePolicy:     RolePolicyFirstCome,
		SkipPolicy:     SkipPolicyLeavePending,
		TitleCaseNames: true,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQLite)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         getEnv("SQLITE_PATH", "donors.db"),
		RedisURL:           os.Getenv("REDIS_URL"),
		ExtractionProvider: strings.ToLower(getEnv("EXTRACTION_PROVIDER", ExtractionProviderOpenAI)),
		ExtractionTimeout:  time.Second * time.Duration(getEnvInt("EXTRACTION_TIMEOUT_SECONDS", 30)),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:          os.Getenv("OPENAI_ORG"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		EventConfigPath:    os.Getenv("EVENT_CONFIG_PATH"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		SessionLifetime:    time.Hour * time.Duration(getEnvInt("SESSION_LIFETIME_HOURS", 720)),
		Event:              DefaultEventConfig(),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.SessionLifetime <= 0 {
		return nil, fmt.Errorf("SESSION_LIFETIME_HOURS must be positive")
	}

	switch cfg.ExtractionProvider {
	case ExtractionProviderOpenAI, ExtractionProviderGemini, ExtractionProviderNone:
	default:
		return nil, fmt.Errorf("unsupported EXTRACTION_PROVIDER %q", cfg.ExtractionProvider)
	}

	if cfg.EventConfigPath != "" {
		ev, err := LoadEventConfig(cfg.EventConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Event = ev
	}

	return cfg, nil
}

// LoadEventConfig reads a YAML event file on top of DefaultEventConfig.
func LoadEventConfig(path string) (EventConfig, error) {
	ev := DefaultEventConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return ev, fmt.Errorf("read event config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &ev); err != nil {
		return ev, fmt.Errorf("parse event config: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return ev, err
	}
	return ev, nil
}

// Validate checks that the policies named in the file are known.
func (e EventConfig) Validate() error {
	if math.IsNaN(e.Goal) || math.IsInf(e.Goal, 0) || e.Goal <= 0 {
		return errors.New("event config: goal must be a positive number")
	}
	switch e.RolePolicy {
	case RolePolicyFirstCome:
	case RolePolicyPassword:
		if e.AdminSecret == "" || e.EditorSecret == "" {
			return errors.New("event config: password role policy needs admin_secret and editor_secret")
		}
	default:
		return fmt.Errorf("event config: unknown role_policy %q", e.RolePolicy)
	}
	switch e.SkipPolicy {
	case SkipPolicyLeavePending, SkipPolicyConfirmAsIs:
	default:
		return fmt.Errorf("event config: unknown skip_policy %q", e.SkipPolicy)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
