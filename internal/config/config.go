// Package config loads the service configuration and interview scripts.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig  `koanf:"server"`
	Storage    StorageConfig `koanf:"storage"`
	Logging    LoggingConfig `koanf:"logging"`
	Interviews string        `koanf:"interviews"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type StorageConfig struct {
	Type  string      `koanf:"type"` // memory, redis
	Redis RedisConfig `koanf:"redis"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
	Prefix   string        `koanf:"prefix"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
}

// Load reads configuration from an optional YAML file, then overlays
// INTERVIEW_-prefixed environment variables. Double underscores in
// variable names become nesting (INTERVIEW_STORAGE__TYPE=redis).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// Environment variables override file config.
	if err := k.Load(env.Provider("INTERVIEW_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "INTERVIEW_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.addr") {
		k.Set("server.addr", ":8080")
	}
	if !k.Exists("storage.type") {
		k.Set("storage.type", "memory")
	}
	if !k.Exists("storage.redis.addr") {
		k.Set("storage.redis.addr", "localhost:6379")
	}
	if !k.Exists("logging.level") {
		k.Set("logging.level", "info")
	}
	if !k.Exists("interviews") {
		k.Set("interviews", "interviews.yaml")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	switch cfg.Storage.Type {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}

	return &cfg, nil
}
