package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"pharmaconnect_core/internal/logger"
)

type Config struct {
	App struct {
		Env string `yaml:"env"` // development, production, test
	} `yaml:"app"`

	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`

	Storage struct {
		Type       string `yaml:"type"` // badger, memory
		Path       string `yaml:"path"`
		SyncWrites bool   `yaml:"sync_writes"`
	} `yaml:"storage"`

	UI struct {
		ErrorClearDelay time.Duration `yaml:"error_clear_delay"`
	} `yaml:"ui"`

	Workers struct {
		RefreshInterval time.Duration `yaml:"refresh_interval"`
	} `yaml:"workers"`
}

var AppConfig *Config

// Default - значения, если файла конфигурации нет
func Default() *Config {
	var cfg Config
	cfg.App.Env = "production"
	cfg.API.BaseURL = "http://localhost:3000/api"
	cfg.API.Timeout = 30 * time.Second
	cfg.Storage.Type = "badger"
	cfg.Storage.Path = "./data/session"
	cfg.Storage.SyncWrites = true
	cfg.UI.ErrorClearDelay = 5 * time.Second
	cfg.Workers.RefreshInterval = 5 * time.Minute
	return &cfg
}

// LoadConfig читает .env (если есть), затем CONFIG_PATH (по умолчанию
// config/config.yaml) поверх значений по умолчанию, затем переменные окружения.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	f, err := os.Open(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("config file not found, using defaults", "path", configPath)
	case err != nil:
		return nil, fmt.Errorf("open config file at %s: %w", configPath, err)
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config file at %s: %w", configPath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PHARMACONNECT_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("PHARMACONNECT_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("PHARMACONNECT_STORE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("PHARMACONNECT_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PHARMACONNECT_API_TIMEOUT %q: %w", v, err)
		}
		cfg.API.Timeout = d
	}
	return nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	switch c.Storage.Type {
	case "badger":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for badger storage")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	return nil
}

func GetConfig() *Config {
	if AppConfig == nil {
		if _, err := LoadConfig(); err != nil {
			logger.Fatal("Failed to load config", "error", err)
		}
	}
	return AppConfig
}
