package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type WebhookConfig struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

type BotConfig struct {
	Token    string        `yaml:"token"`
	Mode     string        `yaml:"mode"` // polling | webhook
	Workers  int           `yaml:"workers"`
	SendRate int           `yaml:"send_rate" split_words:"true"` // outbound messages per second
	Timeout  time.Duration `yaml:"timeout"`                      // per Bot API call
	Webhook  WebhookConfig `yaml:"webhook" envconfig:"WEBHOOK"`
}

type ChannelConfig struct {
	Username string `yaml:"username"` // @name or numeric chat id
	URL      string `yaml:"url"`
}

type AdminConfig struct {
	ID int64 `yaml:"id"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // file|redis|postgres|sqlite
	Dir    string `yaml:"dir"`    // file driver
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns" split_words:"true"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	URL       string `yaml:"url"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix" split_words:"true"`
}

type StorefrontConfig struct {
	URL            string        `yaml:"url"`
	Locale         string        `yaml:"locale"`
	Country        string        `yaml:"country"`
	AllowCountries string        `yaml:"allow_countries" split_words:"true"`
	Timeout        time.Duration `yaml:"timeout"`
	DisplayOffset  time.Duration `yaml:"display_offset" split_words:"true"`
}

type AnnouncerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	StepTimeout time.Duration `yaml:"step_timeout" split_words:"true"` // per fetch or storage call
	LockTTL     time.Duration `yaml:"lock_ttl" split_words:"true"`     // renewed while a cycle runs
}

type AdminAPIConfig struct {
	JWTSecret string `yaml:"jwt_secret" split_words:"true"`
}

type Config struct {
	Bot        BotConfig        `yaml:"bot" envconfig:"BOT"`
	Channel    ChannelConfig    `yaml:"channel" envconfig:"CHANNEL"`
	Admin      AdminConfig      `yaml:"admin" envconfig:"ADMIN"`
	Log        LogConfig        `yaml:"log" envconfig:"LOG"`
	HTTP       HTTPConfig       `yaml:"http" envconfig:"HTTP"`
	Storage    StorageConfig    `yaml:"storage" envconfig:"STORAGE"`
	Database   DatabaseConfig   `yaml:"database" envconfig:"DATABASE"`
	SQLite     SQLiteConfig     `yaml:"sqlite" envconfig:"SQLITE"`
	Redis      RedisConfig      `yaml:"redis" envconfig:"REDIS"`
	Storefront StorefrontConfig `yaml:"storefront" envconfig:"STOREFRONT"`
	Announcer  AnnouncerConfig  `yaml:"announcer" envconfig:"ANNOUNCER"`
	AdminAPI   AdminAPIConfig   `yaml:"admin_api" envconfig:"ADMIN_API"`

	Runtime RuntimeConfig `yaml:"-" ignored:"true"`
}

const (
	DefaultStorefrontURL = "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions"

	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// LoadConfig reads an optional .env file, an optional YAML file at path and then
// overlays environment variables. Missing required settings are reported as errors.
func LoadConfig(path string, dev bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Bot.Mode == "" {
		c.Bot.Mode = ModePolling
	}
	c.Bot.Mode = strings.ToLower(strings.TrimSpace(c.Bot.Mode))
	if c.Bot.Workers <= 0 {
		c.Bot.Workers = 4
	}
	if c.Bot.SendRate <= 0 {
		c.Bot.SendRate = 25
	}
	if c.Bot.Timeout <= 0 {
		c.Bot.Timeout = 15 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 10000
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Dir == "" {
		c.Storage.Dir = "."
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 4
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "./data/epicloot.db"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "epicloot"
	}
	if c.Storefront.URL == "" {
		c.Storefront.URL = DefaultStorefrontURL
	}
	if c.Storefront.Locale == "" {
		c.Storefront.Locale = "en-US"
	}
	if c.Storefront.Country == "" {
		c.Storefront.Country = "BD"
	}
	if c.Storefront.AllowCountries == "" {
		c.Storefront.AllowCountries = c.Storefront.Country
	}
	if c.Storefront.Timeout <= 0 {
		c.Storefront.Timeout = 20 * time.Second
	}
	if c.Storefront.DisplayOffset == 0 {
		c.Storefront.DisplayOffset = 6 * time.Hour
	}
	if c.Announcer.Interval <= 0 {
		c.Announcer.Interval = 90 * time.Second
	}
	if c.Announcer.StepTimeout <= 0 {
		c.Announcer.StepTimeout = 30 * time.Second
	}
	if c.Announcer.LockTTL <= 0 {
		c.Announcer.LockTTL = time.Minute
	}
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token (BOT_TOKEN) is required")
	}
	if c.Channel.Username == "" {
		return errors.New("channel.username (CHANNEL_USERNAME) is required")
	}
	if c.Channel.URL == "" {
		return errors.New("channel.url (CHANNEL_URL) is required")
	}
	if c.Admin.ID == 0 {
		return errors.New("admin.id (ADMIN_ID) is required")
	}
	switch c.Bot.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Bot.Webhook.URL == "" {
			return errors.New("bot.webhook.url is required in webhook mode")
		}
		if c.Bot.Webhook.Secret == "" {
			return errors.New("bot.webhook.secret is required in webhook mode")
		}
	default:
		return fmt.Errorf("unknown bot.mode %q", c.Bot.Mode)
	}
	switch c.Storage.Driver {
	case "file", "sqlite":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis storage driver")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}
