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

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"

	DefaultPort         = 8080
	DefaultRedisKey     = "users.json"
	DefaultRolloverTime = "00:00"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken     string      `yaml:"telegram_token"`
	WebhookURL        string      `yaml:"webhook_url"`
	Port              int         `yaml:"port"`
	StorageBackend    string      `yaml:"storage_backend"`
	DatabaseURL       string      `yaml:"database_url"`
	Redis             RedisConfig `yaml:"redis"`
	OpenWeatherAPIKey string      `yaml:"openweather_api_key"`
	Timezone          string      `yaml:"timezone"`
	// RolloverTime is the HH:MM of the nightly rollover sweep.
	RolloverTime string `yaml:"rollover_time"`
	// ReportTime is the HH:MM of the evening summary; empty disables it.
	ReportTime string `yaml:"report_time"`

	Location *time.Location `yaml:"-"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// UseWebhook reports whether updates arrive over HTTP instead of long polling.
func (c Config) UseWebhook() bool {
	return c.WebhookURL != ""
}

// Load reads .env, the optional YAML file at CONFIG_PATH, then environment variables.
func Load() (Config, error) {
	return load(".env")
}

func load(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		Port:           DefaultPort,
		StorageBackend: StorageSQLite,
		Redis:          RedisConfig{Key: DefaultRedisKey},
		Timezone:       "Local",
		RolloverTime:   DefaultRolloverTime,
	}

	if path := env("CONFIG_PATH"); path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	setString(&cfg.WebhookURL, "WEBHOOK_URL")
	setString(&cfg.StorageBackend, "STORAGE_BACKEND")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Redis.Key, "REDIS_KEY")
	setString(&cfg.OpenWeatherAPIKey, "OPENWEATHER_API_KEY")
	setString(&cfg.Timezone, "TIMEZONE")
	setString(&cfg.RolloverTime, "ROLLOVER_TIME")
	if _, ok := os.LookupEnv("REPORT_TIME"); ok {
		cfg.ReportTime = env("REPORT_TIME")
	}

	if err := setInt(&cfg.Port, "PORT"); err != nil {
		return err
	}
	return setInt(&cfg.Redis.DB, "REDIS_DB")
}

func (c *Config) validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	c.StorageBackend = strings.ToLower(c.StorageBackend)
	switch c.StorageBackend {
	case StorageSQLite:
	case StorageRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND %q: want %s or %s", c.StorageBackend, StorageSQLite, StorageRedis)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.Redis.Key == "" {
		c.Redis.Key = DefaultRedisKey
	}
	c.WebhookURL = strings.TrimRight(c.WebhookURL, "/")

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	if err := checkClock("ROLLOVER_TIME", c.RolloverTime); err != nil {
		return err
	}
	if c.ReportTime != "" {
		if err := checkClock("REPORT_TIME", c.ReportTime); err != nil {
			return err
		}
	}
	return nil
}

func checkClock(name, value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("%s %q: want HH:MM", name, value)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	raw := env(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s %q: %w", key, raw, err)
	}
	*dst = v
	return nil
}
