package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		ReadTimeout    time.Duration `yaml:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
		IdleTimeout    time.Duration `yaml:"idleTimeout"`
		AllowedOrigins []string      `yaml:"allowedOrigins"`
	} `yaml:"server"`

	AI struct {
		APIKey         string        `yaml:"apiKey"`
		Model          string        `yaml:"model"`
		BaseURL        string        `yaml:"baseURL"`
		RequestTimeout time.Duration `yaml:"requestTimeout"`
		MaxInputChars  int           `yaml:"maxInputChars"`
	} `yaml:"ai"`

	Prompt struct {
		Source    string `yaml:"source"` // builtin | file | minio
		Path      string `yaml:"path"`
		ObjectKey string `yaml:"objectKey"`
	} `yaml:"prompt"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Session struct {
		TTL        time.Duration `yaml:"ttl"`
		CookieName string        `yaml:"cookieName"`
	} `yaml:"session"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Baseline struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"baseline"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 90 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.AI.Model = "gpt-4o-mini"
	cfg.AI.RequestTimeout = 60 * time.Second
	cfg.AI.MaxInputChars = 8000
	cfg.Prompt.Source = "builtin"
	cfg.Session.TTL = 30 * time.Minute
	cfg.Session.CookieName = "reviewlens_session"
	cfg.Log.Level = "info"
	cfg.Baseline.Enabled = true
	return &cfg
}

// Load baca file config di atas nilai default; file yang tidak ada bukan error.
// OPENAI_API_KEY from the environment wins over the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	return cfg, nil
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AI.APIKey) == "" {
		errs = append(errs, errors.New("ai.apiKey or OPENAI_API_KEY is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is invalid", c.Server.Port))
	}
	if c.AI.RequestTimeout > 0 && c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.AI.RequestTimeout {
		errs = append(errs, fmt.Errorf("server.writeTimeout (%s) must be longer than ai.requestTimeout (%s)",
			c.Server.WriteTimeout, c.AI.RequestTimeout))
	}
	if c.AI.MaxInputChars < 0 {
		errs = append(errs, errors.New("ai.maxInputChars must not be negative"))
	}
	switch c.Prompt.Source {
	case "", "builtin":
	case "file":
		if c.Prompt.Path == "" {
			errs = append(errs, errors.New("prompt.path is required for source file"))
		}
	case "minio":
		if c.Prompt.ObjectKey == "" || c.Minio.Endpoint == "" || c.Minio.BucketName == "" {
			errs = append(errs, errors.New("prompt.objectKey, minio.endpoint and minio.bucketName are required for source minio"))
		}
	default:
		errs = append(errs, fmt.Errorf("prompt.source %q is unknown", c.Prompt.Source))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
