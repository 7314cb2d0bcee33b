// Package config provides Viper-based configuration loading for the EXP calculator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path; empty means stderr. Reports
	// are written to stdout, so logs default away from it.
	Output string `mapstructure:"output"`
}

// CalculatorConfig holds the analysis and report settings.
type CalculatorConfig struct {
	// Multiplier applies the 1.5x held-item bonus to every battle.
	Multiplier bool `mapstructure:"multiplier"`
	// ReferenceMaxRate is the trigger rate that scores an efficiency equal to the
	// expected EXP.
	ReferenceMaxRate int `mapstructure:"reference_max_rate"`
	// TopN bounds each efficiency ranking.
	TopN int `mapstructure:"top_n"`
	// Verbose adds the per-slot breakdown to text reports.
	Verbose bool `mapstructure:"verbose"`
	// Color enables ANSI colour in text reports.
	Color bool `mapstructure:"color"`
	// GameFilter restricts analysis to one version: "", "Ruby", "Sapphire" or "Emerald".
	GameFilter string `mapstructure:"game_filter"`
	// Workers bounds the number of locations analysed concurrently.
	Workers int `mapstructure:"workers"`
	// CacheSize is the number of memoised slot means; 0 disables the cache.
	CacheSize int `mapstructure:"cache_size"`
}

// DataConfig locates the input data files.
type DataConfig struct {
	// Dataset is the encounter dataset YAML path.
	Dataset string `mapstructure:"dataset"`
	// Species optionally replaces the built-in species table with a YAML file.
	Species string `mapstructure:"species"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ServerConfig holds the calculator service listen settings.
type ServerConfig struct {
	// GRPCHost is the bind address for the gRPC service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the gRPC service.
	GRPCPort int `mapstructure:"grpc_port"`
	// MetricsHost is the bind address for the Prometheus endpoint.
	MetricsHost string `mapstructure:"metrics_host"`
	// MetricsPort is the TCP port for the Prometheus endpoint; 0 disables it.
	MetricsPort int `mapstructure:"metrics_port"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GRPCAddr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", s.GRPCHost, s.GRPCPort)
}

// MetricsAddr returns the "host:port" metrics address.
func (s ServerConfig) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", s.MetricsHost, s.MetricsPort)
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Calculator CalculatorConfig `mapstructure:"calculator"`
	Data       DataConfig       `mapstructure:"data"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCalculator(c.Calculator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateCalculator(c CalculatorConfig) error {
	var errs []string
	if c.ReferenceMaxRate < 1 {
		errs = append(errs, fmt.Sprintf("calculator.reference_max_rate must be >= 1, got %d", c.ReferenceMaxRate))
	}
	if c.TopN < 1 {
		errs = append(errs, fmt.Sprintf("calculator.top_n must be >= 1, got %d", c.TopN))
	}
	validFilters := map[string]bool{"": true, "Ruby": true, "Sapphire": true, "Emerald": true}
	if !validFilters[c.GameFilter] {
		errs = append(errs, fmt.Sprintf("calculator.game_filter must be one of [Ruby, Sapphire, Emerald] or empty, got %q", c.GameFilter))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Sprintf("calculator.workers must be >= 1, got %d", c.Workers))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Sprintf("calculator.cache_size must be >= 0, got %d", c.CacheSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.GRPCHost == "" {
		errs = append(errs, "server.grpc_host must not be empty")
	}
	if s.GRPCPort < 1 || s.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("server.grpc_port must be 1-65535, got %d", s.GRPCPort))
	}
	if s.MetricsPort < 0 || s.MetricsPort > 65535 {
		errs = append(errs, fmt.Sprintf("server.metrics_port must be 0-65535, got %d", s.MetricsPort))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus environment only.
//
// Precondition: path must be empty or a valid path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	return LoadWith(path, nil)
}

// LoadWith is Load with explicit overrides, keyed by dotted config key, that
// take precedence over the file and the environment. Binaries pass the flags
// the user set.
//
// Postcondition: Returns a valid Config or a non-nil error.
func LoadWith(path string, overrides map[string]interface{}) (Config, error) {
	v := NewViper()

	// Environment variable overrides with EXPCALC_ prefix
	v.SetEnvPrefix("EXPCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	for key, val := range overrides {
		v.Set(key, val)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewViper returns a Viper instance carrying every default. LoadWith layers the
// file, the environment and overrides on top of it.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("calculator.multiplier", false)
	v.SetDefault("calculator.reference_max_rate", 16)
	v.SetDefault("calculator.top_n", 15)
	v.SetDefault("calculator.verbose", false)
	v.SetDefault("calculator.color", false)
	v.SetDefault("calculator.game_filter", "")
	v.SetDefault("calculator.workers", 8)
	v.SetDefault("calculator.cache_size", 4096)

	v.SetDefault("data.dataset", "content/encounters.yaml")
	v.SetDefault("data.species", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "expcalc")
	v.SetDefault("database.password", "expcalc")
	v.SetDefault("database.name", "expcalc")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("server.grpc_host", "127.0.0.1")
	v.SetDefault("server.grpc_port", 50061)
	v.SetDefault("server.metrics_host", "127.0.0.1")
	v.SetDefault("server.metrics_port", 9102)
	v.SetDefault("server.shutdown_timeout", "10s")
}
