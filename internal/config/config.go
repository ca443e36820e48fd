package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server and client configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Client    ClientConfig    `yaml:"client"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, receives a copy of the log output.
	Path string `yaml:"path"`
}

// TransportConfig selects how cmd/server is exposed: "http" or "stdio".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// ClientConfig configures the project service client used by cmd/projects.
type ClientConfig struct {
	URL               string        `yaml:"url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "projector.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Client: ClientConfig{
			URL:     "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("PROJECTOR_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("PROJECTOR_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PROJECTOR_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROJECTOR_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PROJECTOR_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PROJECTOR_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("PROJECTOR_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("PROJECTOR_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if url := os.Getenv("PROJECTOR_CLIENT_URL"); url != "" {
		cfg.Client.URL = url
	}
	if timeoutStr := os.Getenv("PROJECTOR_CLIENT_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROJECTOR_CLIENT_TIMEOUT: %w", err)
		}
		cfg.Client.Timeout = timeout
	}
	if rpsStr := os.Getenv("PROJECTOR_CLIENT_RPS"); rpsStr != "" {
		rps, err := strconv.ParseFloat(rpsStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROJECTOR_CLIENT_RPS: %w", err)
		}
		cfg.Client.RequestsPerSecond = rps
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q: want http or stdio", c.Transport.Mode)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("invalid client timeout %s", c.Client.Timeout)
	}
	if c.Client.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid client requests per second %v", c.Client.RequestsPerSecond)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
