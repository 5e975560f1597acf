// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	GroqKey     string   `yaml:"groq_key"`
	BaseURL     string   `yaml:"base_url"`
	Models      []string `yaml:"models"` // candidate models, priority order
	Temperature float64  `yaml:"temperature"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type StorageConfig struct {
	Backend  string         `yaml:"backend"` // file | redis | postgres
	FilePath string         `yaml:"file_path"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	AI      AIConfig      `yaml:"ai"`
	Storage StorageConfig `yaml:"storage"`

	Runtime RuntimeConfig `yaml:"-"`
}

// DefaultModels is the fixed candidate list, earlier entries preferred.
var DefaultModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.3-8b-instant",
	"mixtral-8x7b-32768",
	"llama-guard-3-8b",
	"whisper-large-v3-turbo",
}

func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// run on pure defaults; fine for dev and for synthetic mode
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5174
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 1 << 20 // 1 MiB, matches the old express limit
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.groq.com/openai/v1"
	}
	if len(cfg.AI.Models) == 0 {
		cfg.AI.Models = append([]string(nil), DefaultModels...)
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.2
	}
	// Credential may also arrive through the environment. Absence is not an
	// error: the gateway degrades to synthetic replies.
	if cfg.AI.GroqKey == "" {
		cfg.AI.GroqKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.FilePath == "" {
		cfg.Storage.FilePath = "sessions.json"
	}

	// Minimal validation
	switch cfg.Storage.Backend {
	case "file":
	case "redis":
		if cfg.Storage.Redis.URL == "" {
			return nil, errors.New("storage.redis.url is required for the redis backend")
		}
	case "postgres":
		if cfg.Storage.Postgres.URL == "" {
			return nil, errors.New("storage.postgres.url is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown storage.backend %q", cfg.Storage.Backend)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
