// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config defines the rbroker client configuration schema and
// helpers for loading and validating config files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist at
// the given path.
var ErrConfigNotFound = errors.New("rbroker config not found")

// Config is the top-level rbroker client configuration.
type Config struct {
	Connection ConnectionConfig `yaml:"connection" validate:"required"`
	Namespace  NamespaceConfig  `yaml:"namespace"`
	Client     ClientConfig     `yaml:"client"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ConnectionConfig describes how to reach the backend.
type ConnectionConfig struct {
	Address      string        `yaml:"address" validate:"required,hostname_port"`
	DialTimeout  time.Duration `yaml:"dial_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gte=0"`
}

// NamespaceConfig describes namespace naming and caching settings. It is
// validated on Load but not passed to rbroker: the engine's name limit is
// the rbroker.MaxNamespaceName constant and NewClient sizes its own
// namespace cache.
type NamespaceConfig struct {
	MaxNameLength int  `yaml:"max_name_length" validate:"gte=1,lte=4096"`
	CacheCapacity int  `yaml:"cache_capacity" validate:"gte=0"`
}

// ClientConfig records channel capacities matching the ones a Client
// uses. It is validated on Load but not passed to rbroker: NewClient
// sizes its channels from its own constants.
type ClientConfig struct {
	InboxCapacity   int `yaml:"inbox_capacity" validate:"gte=1"`
	OutboxCapacity  int `yaml:"outbox_capacity" validate:"gte=1"`
}

// LoggingConfig controls the logger a CLI or long-running client wires
// up from this config.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Default returns a Config populated with the same defaults a Client
// constructed with no options would use.
func Default() Config {
	return Config{
		Connection: ConnectionConfig{
			Address:      "127.0.0.1:6379",
			DialTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Namespace: NamespaceConfig{
			MaxNameLength: 255,
			CacheCapacity: 128,
		},
		Client: ClientConfig{
			InboxCapacity:  256,
			OutboxCapacity: 256,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfigPath returns the default config path for the current
// working directory.
func DefaultConfigPath() string {
	return "rbroker.yml"
}

// Exists reports whether a config file exists at the given path. It
// returns (false, nil) if the file does not exist.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Load reads and validates the config at path, filling unset fields from
// Default first. It returns ErrConfigNotFound if the file does not
// exist.
func Load(path string) (*Config, error) {
	exists, err := Exists(path)
	if err != nil {
		return nil, fmt.Errorf("checking config existence: %w", err)
	}
	if !exists {
		return nil, ErrConfigNotFound
	}

	// nolint:gosec // G304: reading config file from user-specified path is expected behavior
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
