package utils

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for the decomposition engine and its
// command-line and HTTP front ends
type Config struct {
	// Infeasibility cache
	Cache CacheConfig `yaml:"cache"`

	// Result digest
	Digest DigestConfig `yaml:"digest"`

	// Result verification
	Verify VerifyConfig `yaml:"verify"`

	// Logging
	Log LogConfig `yaml:"log"`

	// HTTP server
	Server ServerConfig `yaml:"server"`
}

// CacheConfig controls the two-square infeasibility cache
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DigestConfig selects the hash used to fingerprint a decomposition set
type DigestConfig struct {
	Function string `yaml:"function"` // "sha256", "sha3" or "poseidon"
}

// VerifyConfig controls the Jacobi completeness check for four squares
type VerifyConfig struct {
	Completeness bool `yaml:"completeness"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Listen      string `yaml:"listen"`
	ReadTimeout string `yaml:"read_timeout"`
	MaxNumber   string `yaml:"max_number"` // largest N accepted over HTTP
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Cache:  CacheConfig{Enabled: true},
		Digest: DigestConfig{Function: "sha3"},
		Verify: VerifyConfig{Completeness: false},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{
			Listen:      "127.0.0.1:8086",
			ReadTimeout: "10s",
			MaxNumber:   "10000000",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Digest.Function {
	case "sha256", "sha3", "poseidon":
	default:
		return fmt.Errorf("digest function must be 'sha256', 'sha3', or 'poseidon', got '%s'", c.Digest.Function)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server listen address must not be empty")
	}

	if d, err := time.ParseDuration(c.Server.ReadTimeout); err != nil || d <= 0 {
		return fmt.Errorf("server read timeout must be a positive duration, got '%s'", c.Server.ReadTimeout)
	}

	if _, err := c.MaxNumber(); err != nil {
		return err
	}

	return nil
}

// LogLevel returns the configured zap level
func (c *Config) LogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level '%s': %w", c.Log.Level, err)
	}
	return level, nil
}

// ReadTimeout returns the server read timeout, falling back to 10s
func (c *Config) ReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ReadTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// MaxNumber returns the largest N the HTTP surface accepts
func (c *Config) MaxNumber() (*big.Int, error) {
	n, ok := new(big.Int).SetString(c.Server.MaxNumber, 10)
	if !ok || n.Sign() < 1 {
		return nil, fmt.Errorf("server max number must be a positive integer, got '%s'", c.Server.MaxNumber)
	}
	return n, nil
}

// WithCache enables or disables the infeasibility cache
func (c *Config) WithCache(enabled bool) *Config {
	c.Cache.Enabled = enabled
	return c
}

// WithDigestFunction sets the digest hash function
func (c *Config) WithDigestFunction(hashFunc string) *Config {
	c.Digest.Function = hashFunc
	return c
}

// WithCompletenessCheck enables or disables the Jacobi check
func (c *Config) WithCompletenessCheck(enabled bool) *Config {
	c.Verify.Completeness = enabled
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.Log.Level = level
	return c
}

// WithListen sets the HTTP listen address
func (c *Config) WithListen(addr string) *Config {
	c.Server.Listen = addr
	return c
}

// WithMaxNumber sets the largest N accepted over HTTP
func (c *Config) WithMaxNumber(n *big.Int) *Config {
	c.Server.MaxNumber = n.String()
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// LoadConfig reads a YAML configuration file on top of the defaults and
// applies environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SUMSQUARES_DIGEST"); v != "" {
		c.Digest.Function = v
	}
	if v := os.Getenv("SUMSQUARES_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("SUMSQUARES_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SUMSQUARES_CACHE"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = enabled
		}
	}
}
