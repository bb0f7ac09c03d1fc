package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/fairprice-backend/internal/clients/redis"
	"github.com/yungbote/fairprice-backend/internal/data/db"
	"github.com/yungbote/fairprice-backend/internal/observability"
	"github.com/yungbote/fairprice-backend/internal/platform/envutil"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/platform/openai"
	"github.com/yungbote/fairprice-backend/internal/pricing"
)

const insecureDefaultSecret = "defaultsecret"

// Config is read once at startup. Values come from defaults, then the
// optional YAML file named by CONFIG_FILE, then the environment.
type Config struct {
	LogMode     string   `yaml:"log_mode"`
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	MetricsAddr string   `yaml:"metrics_addr"`
	AutoMigrate bool     `yaml:"auto_migrate"`

	Postgres db.PostgresConfig `yaml:"postgres"`
	Redis    redis.Config      `yaml:"redis"`

	JWTSecretKey string `yaml:"-"`
	JWTIssuer    string `yaml:"jwt_issuer"`

	Pricing              pricing.Policy `yaml:"pricing"`
	ExplanationTimeoutMS int            `yaml:"explanation_timeout_ms"`
	OpenAI               openai.Config  `yaml:"-"`

	Otel observability.OtelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogMode:     "development",
		Port:        "8080",
		AutoMigrate: true,
		Postgres: db.PostgresConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "fairprice",
			SSLMode: "disable",
		},
		Redis:                redis.Config{Channel: "fairprice.reports"},
		JWTSecretKey:         insecureDefaultSecret,
		Pricing:              pricing.DefaultPolicy(),
		ExplanationTimeoutMS: 3000,
		Otel:                 observability.OtelConfig{ServiceName: "fairprice", SampleRatio: 0.1},
	}
}

func (c Config) ExplanationTimeout() time.Duration {
	return time.Duration(c.ExplanationTimeoutMS) * time.Millisecond
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.LogMode)) {
	case "prod", "production":
		return true
	}
	return false
}

func LoadConfig(log *logger.Logger) (Config, error) {
	return loadConfig(log, strings.TrimSpace(os.Getenv("CONFIG_FILE")))
}

func loadConfig(log *logger.Logger, path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if log != nil && cfg.JWTSecretKey == insecureDefaultSecret {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Port = envutil.String("PORT", cfg.Port)
	if v := envutil.String("CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	cfg.MetricsAddr = envutil.String("METRICS_ADDR", cfg.MetricsAddr)
	cfg.AutoMigrate = envutil.Bool("AUTO_MIGRATE", cfg.AutoMigrate)

	cfg.Postgres.Host = envutil.String("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = envutil.String("POSTGRES_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = envutil.String("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = envutil.String("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Name = envutil.String("POSTGRES_NAME", cfg.Postgres.Name)
	cfg.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.Postgres.SSLMode)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.JWTIssuer = envutil.String("JWT_ISSUER", cfg.JWTIssuer)

	cfg.Pricing.HighPct = envutil.Float("PRICE_HIGH_THRESHOLD_PCT", cfg.Pricing.HighPct)
	cfg.Pricing.UnusualPct = envutil.Float("PRICE_UNUSUAL_THRESHOLD_PCT", cfg.Pricing.UnusualPct)
	cfg.ExplanationTimeoutMS = envutil.Int("EXPLANATION_TIMEOUT_MS", cfg.ExplanationTimeoutMS)
	cfg.OpenAI = openai.ConfigFromEnv()

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Version = envutil.String("SERVICE_VERSION", cfg.Otel.Version)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio)
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Pricing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pricing: %w", err))
	}
	if c.ExplanationTimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("EXPLANATION_TIMEOUT_MS must be positive, got %d", c.ExplanationTimeoutMS))
	}
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.IsProduction() && c.JWTSecretKey == insecureDefaultSecret {
		errs = append(errs, errors.New("JWT_SECRET_KEY must be set in production"))
	}
	return errors.Join(errs...)
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
