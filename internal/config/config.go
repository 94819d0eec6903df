package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the server configuration, loaded from environment variables
// with an optional .env file for development.
type Config struct {
	Port                 string   `mapstructure:"PORT"`
	Env                  string   `mapstructure:"ENV"`
	CORSOrigins          []string `mapstructure:"CORS_ORIGINS"`
	MaxBodySize          string   `mapstructure:"MAX_BODY_SIZE"`
	AuthSecret           string   `mapstructure:"AUTH_SECRET"`
	AuthIssuer           string   `mapstructure:"AUTH_ISSUER"`
	TerminologyURL       string   `mapstructure:"TERMINOLOGY_URL"`
	TerminologyTimeoutMS int      `mapstructure:"TERMINOLOGY_TIMEOUT_MS"`
	RateLimitRPS         float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst       int      `mapstructure:"RATE_LIMIT_BURST"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MAX_BODY_SIZE", "10M")
	v.SetDefault("TERMINOLOGY_TIMEOUT_MS", 3000)
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MAX_BODY_SIZE")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("TERMINOLOGY_URL")
	v.BindEnv("TERMINOLOGY_TIMEOUT_MS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

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

	if !cfg.IsDev() && cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is required outside development")
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.Env, "development")
}
