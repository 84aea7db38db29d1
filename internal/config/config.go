package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	AI        AIConfig        `yaml:"ai"`
	Queue     QueueConfig     `yaml:"queue"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// AIConfig points at the generative-AI backend used for plan generation and
// calorie estimates. Model defaults to gemini-1.5-flash when empty.
type AIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// QueueConfig locates the local SQLite spool for workouts that failed to
// reach the database. Dir defaults to ./data.
type QueueConfig struct {
	Dir           string `yaml:"dir"`
	FlushSchedule string `yaml:"flush_schedule"` // cron spec; default "*/5 * * * *"
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix MUSCLEMIND_ and underscore-separated
// paths:
//
//	MUSCLEMIND_SERVER_HOST, MUSCLEMIND_SERVER_PORT,
//	MUSCLEMIND_DB_HOST, MUSCLEMIND_DB_PORT, MUSCLEMIND_DB_NAME,
//	MUSCLEMIND_DB_USER, MUSCLEMIND_DB_PASSWORD, MUSCLEMIND_DB_SSLMODE,
//	MUSCLEMIND_AUTH_API_KEY, MUSCLEMIND_AI_API_KEY, MUSCLEMIND_AI_MODEL,
//	MUSCLEMIND_QUEUE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MUSCLEMIND_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MUSCLEMIND_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MUSCLEMIND_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("MUSCLEMIND_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("MUSCLEMIND_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("MUSCLEMIND_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("MUSCLEMIND_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("MUSCLEMIND_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("MUSCLEMIND_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("MUSCLEMIND_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("MUSCLEMIND_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("MUSCLEMIND_QUEUE_DIR"); v != "" {
		cfg.Queue.Dir = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-1.5-flash"
	}
	if cfg.Queue.Dir == "" {
		cfg.Queue.Dir = "data"
	}
	if cfg.Queue.FlushSchedule == "" {
		cfg.Queue.FlushSchedule = "*/5 * * * *"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}
