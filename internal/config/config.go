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
		Port string `yaml:"port"`
	} `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Content ContentConfig `yaml:"content"`
	Chat    struct {
		Rooms []string `yaml:"rooms"`
	} `yaml:"chat"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ContentConfig points at the CSV sources and the question cache lifetime.
type ContentConfig struct {
	TopicsPath    string `yaml:"topics_path"`
	QuestionsPath string `yaml:"questions_path"`
	TTL           string `yaml:"ttl"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format))
	}
	if c.Postgres.URL == "" {
		if c.Content.TopicsPath == "" {
			errs = append(errs, errors.New("content.topics_path: required without postgres.url"))
		}
		if c.Content.QuestionsPath == "" {
			errs = append(errs, errors.New("content.questions_path: required without postgres.url"))
		}
	}
	for name, raw := range map[string]string{"content.ttl": c.Content.TTL, "redis.ttl": c.Redis.TTL} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	for i, room := range c.Chat.Rooms {
		if strings.TrimSpace(room) == "" {
			errs = append(errs, fmt.Errorf("chat.rooms[%d]: empty room name", i))
		}
	}
	return errors.Join(errs...)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
