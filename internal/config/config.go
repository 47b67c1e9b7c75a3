package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/revcycle/recovery/internal/domain/opportunity"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	DBSchema       string        `mapstructure:"DB_SCHEMA"`
	MigrationsDir  string        `mapstructure:"MIGRATIONS_DIR"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	MinCohortClaims    int     `mapstructure:"MIN_COHORT_CLAIMS"`
	ScoreRateWeight    float64 `mapstructure:"SCORE_RATE_WEIGHT"`
	ScoreDollarDivisor float64 `mapstructure:"SCORE_DOLLAR_DIVISOR"`
	ScoreDollarCap     float64 `mapstructure:"SCORE_DOLLAR_CAP"`
	ScoreVolumeDivisor float64 `mapstructure:"SCORE_VOLUME_DIVISOR"`
	ScoreVolumeCap     float64 `mapstructure:"SCORE_VOLUME_CAP"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA", "MIGRATIONS_DIR",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT",
	"MIN_COHORT_CLAIMS",
	"SCORE_RATE_WEIGHT", "SCORE_DOLLAR_DIVISOR", "SCORE_DOLLAR_CAP",
	"SCORE_VOLUME_DIVISOR", "SCORE_VOLUME_CAP",
}

// Load reads configuration from the environment and an optional .env file.
// DATABASE_URL is not checked here because offline commands run without a
// database; see RequireDatabase.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "3002")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("MIN_COHORT_CLAIMS", 5)
	v.SetDefault("SCORE_RATE_WEIGHT", 0.5)
	v.SetDefault("SCORE_DOLLAR_DIVISOR", 10)
	v.SetDefault("SCORE_DOLLAR_CAP", 30)
	v.SetDefault("SCORE_VOLUME_DIVISOR", 5)
	v.SetDefault("SCORE_VOLUME_CAP", 20)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RequireDatabase fails when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid pool size: min %d, max %d", c.DBMinConns, c.DBMaxConns)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled, got %d", c.RateLimitBurst)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.MinCohortClaims < 1 {
		return fmt.Errorf("MIN_COHORT_CLAIMS must be at least 1, got %d", c.MinCohortClaims)
	}
	if err := c.ScoreWeights().Validate(); err != nil {
		return fmt.Errorf("invalid scoring tunables: %w", err)
	}
	return nil
}

// ScoreWeights returns the opportunity scoring tunables.
func (c *Config) ScoreWeights() opportunity.Weights {
	return opportunity.Weights{
		RateWeight:    c.ScoreRateWeight,
		DollarDivisor: c.ScoreDollarDivisor,
		DollarCap:     c.ScoreDollarCap,
		VolumeDivisor: c.ScoreVolumeDivisor,
		VolumeCap:     c.ScoreVolumeCap,
	}
}
