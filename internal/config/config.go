/*
Package config loads runtime settings for the advisor service.
Values come from an optional YAML file (with ${VAR} expansion), then
environment variables (a local .env file is loaded first when present),
then built-in defaults for anything still unset.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For header is
	// believed. Empty means the peer address is the client address.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// GeminiConfig is opaque to the advisor; only the plan requester reads it.
type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	Secret      string `yaml:"secret"`
	CookieName  string `yaml:"cookie_name"`
	MaxSessions int    `yaml:"max_sessions"`
}

type RateLimitConfig struct {
	PerMinute  int `yaml:"per_minute"`
	Burst      int `yaml:"burst"`
	MaxClients int `yaml:"max_clients"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

const (
	DefaultPort        = 8080
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com"
)

// Load reads the YAML file at path if it exists. An empty path falls back to
// CONFIG_PATH. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			expanded := []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(expanded, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.Gemini.BaseURL, "GEMINI_BASE_URL")
	setString(&c.Session.Secret, "SESSION_SECRET")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.Server.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Server.TrustedProxies = append(c.Server.TrustedProxies, p)
			}
		}
	}

	if err := setInt(&c.Server.Port, "PORT"); err != nil {
		return err
	}
	if err := setInt(&c.RateLimit.PerMinute, "RATE_LIMIT_PER_MINUTE"); err != nil {
		return err
	}
	if err := setInt(&c.RateLimit.Burst, "RATE_LIMIT_BURST"); err != nil {
		return err
	}
	if v := os.Getenv("GEMINI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GEMINI_TIMEOUT %q: %w", v, err)
		}
		c.Gemini.Timeout = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// Must outlast the Gemini call.
		c.Server.WriteTimeout = 90 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = time.Minute
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = DefaultGeminiURL
	}
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = 60 * time.Second
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "diet_advisor"
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = 10000
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 3
	}
	if c.RateLimit.MaxClients == 0 {
		c.RateLimit.MaxClients = 4096
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
