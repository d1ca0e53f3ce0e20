package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"FuyouSentinel/internal/engine"
)

// Config holds all application configuration.
type Config struct {
	Limits struct {
		Preset          string  `yaml:"preset"`
		Dependent       float64 `yaml:"dependent"`
		SocialInsurance float64 `yaml:"social_insurance"`
		MunicipalTax    float64 `yaml:"municipal_tax"`
		Warning         float64 `yaml:"warning"`
		Danger          float64 `yaml:"danger"`
	} `yaml:"limits"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		UserID  string `yaml:"user_id"`
	} `yaml:"data_source"`
	Schedule struct {
		DailyCron   string `yaml:"daily_cron"`
		MonthlyCron string `yaml:"monthly_cron"`
		YearlyCron  string `yaml:"yearly_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Ledger struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"ledger"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Timezone string `yaml:"timezone"`
	Proxy    string `yaml:"proxy"`
}

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

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("FUYOU_API_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("FUYOU_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("FUYOU_USER_ID"); v != "" {
		cfg.DataSource.UserID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LIMITS_PRESET"); v != "" {
		cfg.Limits.Preset = v
	}
	if v := os.Getenv("DEPENDENT_LIMIT"); v != "" {
		var limit float64
		if _, err := fmt.Sscanf(v, "%f", &limit); err == nil {
			cfg.Limits.Dependent = limit
		}
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TZ_NAME"); v != "" {
		cfg.Timezone = v
	}

	// Defaults
	if cfg.Limits.Preset == "" {
		cfg.Limits.Preset = engine.DefaultPreset
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 21 * * *"
	}
	if cfg.Schedule.MonthlyCron == "" {
		cfg.Schedule.MonthlyCron = "0 0 9 1 * *"
	}
	if cfg.Schedule.YearlyCron == "" {
		cfg.Schedule.YearlyCron = "0 0 0 1 1 *"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Ledger.StateFile == "" {
		cfg.Ledger.StateFile = "data/ledger_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/fuyou.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Tokyo"
	}

	return cfg, nil
}

// EngineLimits resolves the preset and applies per-field overrides.
func (c *Config) EngineLimits() (engine.Limits, error) {
	l, err := engine.Preset(c.Limits.Preset)
	if err != nil {
		return engine.Limits{}, err
	}
	if c.Limits.Dependent > 0 {
		l.Dependent = c.Limits.Dependent
	}
	if c.Limits.SocialInsurance > 0 {
		l.SocialInsurance = c.Limits.SocialInsurance
	}
	if c.Limits.MunicipalTax > 0 {
		l.MunicipalTax = c.Limits.MunicipalTax
	}
	if c.Limits.Warning > 0 {
		l.Warning = c.Limits.Warning
	}
	if c.Limits.Danger > 0 {
		l.Danger = c.Limits.Danger
	}
	return l, nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NotificationsEnabled reports whether Telegram credentials are present.
func (c *Config) NotificationsEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	l, err := c.EngineLimits()
	if err != nil {
		return err
	}
	if err := l.Validate(); err != nil {
		return err
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.DataSource.BaseURL != "" && c.DataSource.UserID == "" {
		return fmt.Errorf("data_source.user_id is required when data_source.base_url is set")
	}
	if c.DataSource.BaseURL == "" && c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required when data_source.base_url is empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
