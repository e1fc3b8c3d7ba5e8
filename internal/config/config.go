package config

import (
	"fmt"
	"strings"
	"time"

	"certachain/internal/chain"

	"github.com/spf13/viper"
)

// Config is the runtime configuration of the service.
type Config struct {
	AppPort         string
	DatabaseDriver  string
	DatabaseDSN     string
	JWTSecret       string
	RabbitMQURL     string
	PasswordHashing string
	Chain           chain.Policy
	ChainTimeout    time.Duration
}

// SetDefaults registers the default value of every configuration key.
func SetDefaults(v *viper.Viper) {
	def := chain.DefaultPolicy()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "certachain.db")
	v.SetDefault("JWT_SECRET", "change_me_in_production")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PASSWORD_HASHING", "plaintext")
	v.SetDefault("CHAIN_FAILURE_RATE", def.FailureRate)
	v.SetDefault("CHAIN_ISSUE_DELAY_MIN", def.IssueDelay.Min)
	v.SetDefault("CHAIN_ISSUE_DELAY_MAX", def.IssueDelay.Max)
	v.SetDefault("CHAIN_VERIFY_DELAY_MIN", def.VerifyDelay.Min)
	v.SetDefault("CHAIN_VERIFY_DELAY_MAX", def.VerifyDelay.Max)
	v.SetDefault("CHAIN_TIMEOUT", 10*time.Second)
}

// Load reads the configuration from the environment and, when configFile
// is not empty, from that file. Environment variables win over the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		DatabaseDriver:  strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		PasswordHashing: strings.ToLower(v.GetString("PASSWORD_HASHING")),
		Chain: chain.Policy{
			FailureRate: v.GetFloat64("CHAIN_FAILURE_RATE"),
			IssueDelay: chain.DelayRange{
				Min: v.GetDuration("CHAIN_ISSUE_DELAY_MIN"),
				Max: v.GetDuration("CHAIN_ISSUE_DELAY_MAX"),
			},
			VerifyDelay: chain.DelayRange{
				Min: v.GetDuration("CHAIN_VERIFY_DELAY_MIN"),
				Max: v.GetDuration("CHAIN_VERIFY_DELAY_MAX"),
			},
		},
		ChainTimeout: v.GetDuration("CHAIN_TIMEOUT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// minDuration is the smallest non-zero duration accepted. Durations are
// written with a unit ("800ms", "1.2s"); a bare number is read as
// nanoseconds and lands below it.
const minDuration = time.Millisecond

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if err := c.Chain.Validate(); err != nil {
		return fmt.Errorf("invalid chain settings: %w", err)
	}

	durations := []struct {
		key string
		d   time.Duration
	}{
		{"CHAIN_ISSUE_DELAY_MIN", c.Chain.IssueDelay.Min},
		{"CHAIN_ISSUE_DELAY_MAX", c.Chain.IssueDelay.Max},
		{"CHAIN_VERIFY_DELAY_MIN", c.Chain.VerifyDelay.Min},
		{"CHAIN_VERIFY_DELAY_MAX", c.Chain.VerifyDelay.Max},
	}
	for _, e := range durations {
		if e.d != 0 && e.d < minDuration {
			return fmt.Errorf("%s is %s; write durations with a unit, e.g. 800ms", e.key, e.d)
		}
	}
	if c.ChainTimeout < minDuration {
		return fmt.Errorf("CHAIN_TIMEOUT is %s; write durations with a unit, e.g. 10s", c.ChainTimeout)
	}
	return nil
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 10 * time.Second
