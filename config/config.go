// Package config loads the delivery core's configuration from an optional
// YAML file, environment variables, and built-in defaults, in that
// precedence order.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the Sentinel delivery core.
type Config struct {
	// Vendor selects the default SIEM destination for the factory.
	// Empty means "no default": Factory.Create with no explicit key fails.
	Vendor string `mapstructure:"vendor"`

	// Source is the tag stamped onto events sent via the shared client
	Source string `mapstructure:"source" validate:"required"`

	// FanoutIsolation makes composite fan-out visit every child and
	// aggregate failures instead of aborting on the first error
	FanoutIsolation bool `mapstructure:"fanout_isolation"`

	Elastic struct {
		Endpoint string `mapstructure:"endpoint" validate:"required,url"`
		Token    string `mapstructure:"token"`
	} `mapstructure:"elastic"`

	Splunk struct {
		HECURL   string `mapstructure:"hec_url" validate:"required,url"`
		HECToken string `mapstructure:"hec_token"`
	} `mapstructure:"splunk"`

	Redis struct {
		Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db" validate:"gte=0"`
		Key      string `mapstructure:"key" validate:"required"`
	} `mapstructure:"redis"`

	// Guard configures the access-controlled, rate-limited delivery proxy
	Guard struct {
		Endpoint string `mapstructure:"endpoint" validate:"required,url"`
		// Token is the credential the guarded sink requires. No default:
		// an empty token makes every guarded delivery fail.
		Token string `mapstructure:"token"`
		// RateLimit is the admitted events per one-second window
		RateLimit int `mapstructure:"rate_limit" validate:"gte=0"`
	} `mapstructure:"guard"`

	Audit struct {
		// LogPath is the append-only JSONL audit log destination
		LogPath string `mapstructure:"log_path" validate:"required"`
	} `mapstructure:"audit"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Listen  string `mapstructure:"listen" validate:"required,hostname_port"`
	} `mapstructure:"metrics"`
}

// setDefaults sets the built-in literal defaults, the lowest precedence tier.
func setDefaults(v *viper.Viper) {
	v.SetDefault("vendor", "")
	v.SetDefault("source", "sentinel-agent")
	v.SetDefault("fanout_isolation", false)

	v.SetDefault("elastic.endpoint", "https://elastic.example/_bulk")
	v.SetDefault("elastic.token", "demo-token")
	v.SetDefault("splunk.hec_url", "https://splunk.example:8088/services/collector")
	v.SetDefault("splunk.hec_token", "demo-hec-token")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "sentinel:events")

	v.SetDefault("guard.endpoint", "https://siem.example/api/events")
	v.SetDefault("guard.token", "")
	v.SetDefault("guard.rate_limit", 5)

	v.SetDefault("audit.log_path", "soc_audit_log.jsonl")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9090")
}

// bindEnv wires the conventional environment variable names. A bound env
// var beats the built-in literal default for its key; values passed
// explicitly to constructors beat both.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("vendor", "SIEM_VENDOR")
	_ = v.BindEnv("source", "SIEM_SOURCE")
	_ = v.BindEnv("elastic.endpoint", "ELASTIC_ENDPOINT")
	_ = v.BindEnv("elastic.token", "ELASTIC_TOKEN")
	_ = v.BindEnv("splunk.hec_url", "SPLUNK_HEC_URL")
	_ = v.BindEnv("splunk.hec_token", "SPLUNK_HEC_TOKEN")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("guard.endpoint", "SIEM_ENDPOINT")
	_ = v.BindEnv("guard.token", "SIEM_TOKEN")
	_ = v.BindEnv("guard.rate_limit", "SIEM_RATE_LIMIT")
	_ = v.BindEnv("audit.log_path", "SOC_AUDIT_LOG")
}

// Load reads configuration from the given file path (optional; "" skips
// the file), environment variables, and defaults, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			return nil, fmt.Errorf("config file %s not found: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints on the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
