package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	// streak state store
	Store         string `toml:"store"`
	StreakFile    string `toml:"streak_file"`
	RedisHost     string `toml:"redis_host"`
	RedisPort     int    `toml:"redis_port"`
	RedisDB       int    `toml:"redis_db"`
	RedisKey      string `toml:"redis_key"`
	RedisPassword string `toml:"-"`
	TimeZone      string `toml:"time_zone"`
	// dashboard
	MaxUploadMB      int      `toml:"max_upload_mb"`
	RenderCacheMB    int      `toml:"render_cache_mb"`
	OpenBrowser      bool     `toml:"open_browser"`
	AllowedOrigins   []string `toml:"allowed_origins"`
	MetricsEnabled   bool     `toml:"metrics_enabled"`
	CountdownSeconds int      `toml:"countdown_seconds"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file, picks the env section, applies the environment
// overrides and fills in defaults
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if port := os.Getenv("FITSTREAK_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid FITSTREAK_PORT [%s]: %w", port, err)
		}
		c.Port = p
	}
	if store := os.Getenv("FITSTREAK_STORE"); store != "" {
		c.Store = store
	}
	if logLevel := os.Getenv("FITSTREAK_LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	c.RedisPassword = os.Getenv("FITSTREAK_REDIS_PASSWORD")
	return nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Store == "" {
		c.Store = StoreFile
	}
	if c.StreakFile == "" {
		c.StreakFile = "fitstreak_data/streak.json"
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.RedisKey == "" {
		c.RedisKey = "fitstreak:streak"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 10
	}
	if c.RenderCacheMB <= 0 {
		c.RenderCacheMB = 32
	}
	if c.CountdownSeconds <= 0 {
		c.CountdownSeconds = 1
	}
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown store [%s], use one of: file, redis, memory", c.Store)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}
