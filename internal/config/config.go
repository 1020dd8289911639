package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ProviderConfig holds configuration for a single provider instance
type ProviderConfig struct {
	Type       string        `yaml:"type"`
	APIKey     string        `yaml:"api_key"`
	ModelName  string        `yaml:"model_name"`
	BaseURL    string        `yaml:"base_url"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	// Rate limiting per provider
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"` // gin mode: release, debug, test
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite" or "postgres"
		URL    string `yaml:"url"`    // SQLite path or PostgreSQL URL
	} `yaml:"database"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	AI struct {
		Timeout                 time.Duration    `yaml:"timeout"`
		MaxFailuresBeforeSwitch int              `yaml:"max_failures_before_switch"`
		Providers               []ProviderConfig `yaml:"providers"`
	} `yaml:"ai"`

	Notifications struct {
		Telegram struct {
			Enabled  bool   `yaml:"enabled"`
			BotToken string `yaml:"bot_token"`
			ChatID   int64  `yaml:"chat_id"`
		} `yaml:"telegram"`
	} `yaml:"notifications"`

	Images struct {
		S3 struct {
			Enabled       bool   `yaml:"enabled"`
			Bucket        string `yaml:"bucket"`
			Region        string `yaml:"region"`
			Prefix        string `yaml:"prefix"`
			PublicBaseURL string `yaml:"public_base_url"`
		} `yaml:"s3"`
	} `yaml:"images"`
}

// LoadConfig loads configuration from YAML file. A .env file next to the
// working directory is loaded first so ${VAR} references can resolve.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.expandEnv()
	config.applyDefaults()

	return config, config.Validate()
}

func (c *Config) expandEnv() {
	c.Database.URL = os.ExpandEnv(c.Database.URL)
	c.Auth.JWTSecret = os.ExpandEnv(c.Auth.JWTSecret)
	c.Notifications.Telegram.BotToken = os.ExpandEnv(c.Notifications.Telegram.BotToken)
	c.Images.S3.Bucket = os.ExpandEnv(c.Images.S3.Bucket)

	// Expand environment variables in provider API keys
	for i := range c.AI.Providers {
		c.AI.Providers[i].APIKey = os.ExpandEnv(c.AI.Providers[i].APIKey)
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.URL == "" && c.Database.Driver == "sqlite" {
		c.Database.URL = "./data/stomatrack.db"
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 72 * time.Hour
	}

	if c.AI.Timeout == 0 {
		c.AI.Timeout = 20 * time.Second
	}
	if c.AI.MaxFailuresBeforeSwitch == 0 {
		c.AI.MaxFailuresBeforeSwitch = 3
	}
	for i := range c.AI.Providers {
		if c.AI.Providers[i].MaxRetries == 0 {
			c.AI.Providers[i].MaxRetries = 1
		}
	}

	if c.Images.S3.Prefix == "" {
		c.Images.S3.Prefix = "meal-photos/"
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database url is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Notifications.Telegram.Enabled && c.Notifications.Telegram.BotToken == "" {
		return errors.New("telegram notifications enabled without bot_token")
	}
	if c.Images.S3.Enabled && c.Images.S3.Bucket == "" {
		return errors.New("s3 image archive enabled without bucket")
	}
	return nil
}
