// Package config loads the command line and service configuration from the
// environment.
//
// Variables are read with the ANTHRO_ prefix, after an optional .env file:
//
//	ANTHRO_LOG_LEVEL       debug | info | warn | error (default info)
//	ANTHRO_LOG_FORMAT      text | json (default text)
//	ANTHRO_WORKERS         batch workers, 0 for one per CPU
//	ANTHRO_TABLES          path to a .toml or .yaml reference table
//	ANTHRO_STRICT          treat warnings as errors
//	ANTHRO_DISABLED_RULES  comma separated rule ids to skip
//	ANTHRO_AMQP_URL        broker URL for report publishing
//	ANTHRO_AMQP_QUEUE      queue name (default anthrocheck.reports)
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/reference"
)

// Prefix is prepended to every variable name.
const Prefix = "ANTHRO_"

var (
	// ErrParsingConfig wraps failures to read the environment.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig wraps validation failures.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the process configuration.
type Config struct {
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat     string   `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	Workers       int      `env:"WORKERS" envDefault:"0" validate:"gte=0"`
	Tables        string   `env:"TABLES" validate:"omitempty,file"`
	Strict        bool     `env:"STRICT"`
	DisabledRules []string `env:"DISABLED_RULES" envSeparator:"," validate:"dive,rule"`
	AMQPURL       string   `env:"AMQP_URL" validate:"omitempty,url"`
	AMQPQueue     string   `env:"AMQP_QUEUE" envDefault:"anthrocheck.reports" validate:"required"`
}

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("rule", func(fl validator.FieldLevel) bool {
		return ac.RuleID(fl.Field().String()).Valid()
	})
	return v
})

// Load reads the given .env files (or ./.env when present and none are
// given), then parses and validates the environment. Variables already set
// in the process take precedence over file values.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	return nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Rules returns the disabled rules as rule ids.
func (c *Config) Rules() []ac.RuleID {
	rules := make([]ac.RuleID, len(c.DisabledRules))
	for i, r := range c.DisabledRules {
		rules[i] = ac.RuleID(r)
	}
	return rules
}

// EngineOptions converts the configuration to engine options, loading the
// reference table when one is configured.
func (c *Config) EngineOptions() ([]ac.Option, error) {
	opts := []ac.Option{
		ac.WithStrictMode(c.Strict),
		ac.WithWorkerCount(c.Workers),
		ac.WithDisabledRules(c.Rules()...),
	}
	if c.Tables != "" {
		table, err := reference.LoadFile(c.Tables)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, ac.WithTable(table))
	}
	return opts, nil
}
