package config

import (
	"fmt"
	"os"
	"time"

	"KWatch/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider     string `yaml:"provider" validate:"oneof=yahoo polygon"`
		APIKey       string `yaml:"api_key" validate:"required_if=Provider polygon"`
		LookbackDays int    `yaml:"lookback_days" validate:"gte=14,lte=365"`
	} `yaml:"data_source"`
	Watchlist struct {
		File  string            `yaml:"file"`
		Items []model.WatchItem `yaml:"items" validate:"dive"`
	} `yaml:"watchlist"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron" validate:"required"`
	} `yaml:"schedule"`
	Cache struct {
		TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
		RedisAddr string        `yaml:"redis_addr"`
		RedisDB   int           `yaml:"redis_db" validate:"gte=0"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Collector struct {
		Concurrency int `yaml:"concurrency" validate:"gte=1,lte=32"`
	} `yaml:"collector"`
	Log struct {
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Dev   bool   `yaml:"dev"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// envOverrides are read from the environment (and .env) with the KWATCH_ prefix.
// A tagged name is also looked up without the prefix.
type envOverrides struct {
	TelegramBotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string        `envconfig:"TELEGRAM_CHAT_ID"`
	Provider         string        `envconfig:"DATA_PROVIDER"`
	PolygonAPIKey    string        `envconfig:"POLYGON_API_KEY"`
	WatchlistFile    string        `envconfig:"WATCHLIST_FILE"`
	RefreshCron      string        `envconfig:"CRON_REFRESH"`
	CacheTTL         time.Duration `envconfig:"CACHE_TTL"`
	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	SQLitePath       string        `envconfig:"SQLITE_PATH"`
	HTTPAddr         string        `envconfig:"HTTP_ADDR"`
	LogLevel         string        `envconfig:"LOG_LEVEL"`
	Proxy            string        `envconfig:"HTTPS_PROXY"`
}

// DefaultWatchlist is used when neither the config nor the watchlist file lists any ticker.
var DefaultWatchlist = []model.WatchItem{
	{Symbol: "0050.TW", Name: "元大台灣50"},
	{Symbol: "0056.TW", Name: "元大高股息"},
	{Symbol: "0052.TW", Name: "富邦科技"},
	{Symbol: "00646.TW", Name: "元大S&P500"},
	{Symbol: "2002.TW", Name: "中鋼"},
}

var validate = validator.New()

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process("KWATCH", &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.applyEnv(&env)
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv(env *envOverrides) {
	if env.TelegramBotToken != "" {
		c.Telegram.BotToken = env.TelegramBotToken
	}
	if env.TelegramChatID != "" {
		c.Telegram.ChatID = env.TelegramChatID
	}
	if env.Provider != "" {
		c.DataSource.Provider = env.Provider
	}
	if env.PolygonAPIKey != "" {
		c.DataSource.APIKey = env.PolygonAPIKey
	}
	if env.WatchlistFile != "" {
		c.Watchlist.File = env.WatchlistFile
	}
	if env.RefreshCron != "" {
		c.Schedule.RefreshCron = env.RefreshCron
	}
	if env.CacheTTL != 0 {
		c.Cache.TTL = env.CacheTTL
	}
	if env.RedisAddr != "" {
		c.Cache.RedisAddr = env.RedisAddr
	}
	if env.SQLitePath != "" {
		c.Database.SQLitePath = env.SQLitePath
	}
	if env.HTTPAddr != "" {
		c.HTTP.Addr = env.HTTPAddr
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.Proxy != "" {
		c.Proxy = env.Proxy
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.LookbackDays == 0 {
		c.DataSource.LookbackDays = 60
	}
	if c.Watchlist.File == "" {
		c.Watchlist.File = "data/watchlist.json"
	}
	if len(c.Watchlist.Items) == 0 {
		c.Watchlist.Items = append([]model.WatchItem(nil), DefaultWatchlist...)
	}
	if c.Schedule.RefreshCron == "" {
		// 14:30 on weekdays, after the Taiwan close.
		c.Schedule.RefreshCron = "0 30 14 * * 1-5"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/kwatch.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Collector.Concurrency == 0 {
		c.Collector.Concurrency = 4
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
