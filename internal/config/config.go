package config

import "time"

// Config holds all application configuration, organized into logical
// groups.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// SchedulerConfig contains the scheduling-model settings shared across
// learners. Per-learner parameter vectors live in the database, not
// here.
type SchedulerConfig struct {
	DesiredRetention float64         `mapstructure:"desired_retention" validate:"required,gt=0,lt=1"`
	LearningSteps    []time.Duration `mapstructure:"learning_steps"`
	RelearningSteps  []time.Duration `mapstructure:"relearning_steps"`
	MaximumInterval  int             `mapstructure:"maximum_interval" validate:"required,gte=1"`
}

// OptimizerConfig names the optimization constants that would otherwise
// be magic literals.
type OptimizerConfig struct {
	// Conservative halves suggested deltas before applying them.
	Conservative bool `mapstructure:"conservative"`
	// ConservativeFactor scales deltas in conservative mode.
	ConservativeFactor float64 `mapstructure:"conservative_factor" validate:"required,gt=0,lte=1"`
	// MaxParamChange caps the magnitude of any single applied delta.
	MaxParamChange float64 `mapstructure:"max_param_change" validate:"required,gt=0"`
	// SweepInterval is how often the background job scans learners for
	// optimization eligibility.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`
}
