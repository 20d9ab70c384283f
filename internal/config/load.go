package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and from
// environment variables with the RETENT_ prefix. Environment variables
// take precedence. Returns a populated, validated Config.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("RETENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables suffice.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("scheduler.desired_retention", 0.9)
	v.SetDefault("scheduler.learning_steps", []time.Duration{time.Minute, 10 * time.Minute})
	v.SetDefault("scheduler.relearning_steps", []time.Duration{10 * time.Minute})
	v.SetDefault("scheduler.maximum_interval", 36500)

	v.SetDefault("optimizer.conservative", true)
	v.SetDefault("optimizer.conservative_factor", 0.5)
	v.SetDefault("optimizer.max_param_change", 0.1)
	v.SetDefault("optimizer.sweep_interval", time.Hour)
}
