package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Steam     SteamConfig     `yaml:"steam"`
	Update    UpdateConfig    `yaml:"update"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Notify    NotifyConfig    `yaml:"notify"`
	Retention RetentionConfig `yaml:"retention"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StoreConfig struct {
	Sqlite SqliteConfig `yaml:"sqlite"`
}

type SqliteConfig struct {
	Path          string `yaml:"path"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms"`
}

type SteamConfig struct {
	BaseURL   string `yaml:"base_url"`
	AppID     int    `yaml:"app_id"`
	Currency  int    `yaml:"currency"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type UpdateConfig struct {
	RequestDelaySec int `yaml:"request_delay_sec"`
	AutoIntervalMin int `yaml:"auto_interval_min"`
	StopGraceSec    int `yaml:"stop_grace_sec"`
}

type WatchlistConfig struct {
	Path string `yaml:"path"`
}

type AlertsConfig struct {
	Path string `yaml:"path"`
}

type NotifyConfig struct {
	Webhook        string `yaml:"webhook"`
	Secret         string `yaml:"secret"`
	TimeoutMs      int    `yaml:"timeout_ms"`
	DedupWindowSec int    `yaml:"dedup_window_sec"`
	PerMinute      int    `yaml:"per_minute"`
	Burst          int    `yaml:"burst"`
}

type RetentionConfig struct {
	KeepDays int `yaml:"keep_days"`
}

func Load(path string) (*Config, error) {
	cfg := Config{
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Store: StoreConfig{
			Sqlite: SqliteConfig{
				Path:          "data/skin_prices.db",
				BusyTimeoutMs: 30000,
			},
		},
		Steam: SteamConfig{
			BaseURL:   "https://steamcommunity.com/market/priceoverview/",
			AppID:     730,
			Currency:  3,
			TimeoutMs: 10000,
		},
		Update: UpdateConfig{
			RequestDelaySec: 2,
			AutoIntervalMin: 5,
			StopGraceSec:    3,
		},
		Watchlist: WatchlistConfig{Path: "data/watchlist.json"},
		Alerts:    AlertsConfig{Path: "data/alerts.json"},
		Notify: NotifyConfig{
			TimeoutMs:      5000,
			DedupWindowSec: 3600,
			PerMinute:      10,
		},
		Retention: RetentionConfig{KeepDays: 365},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config file is fine, defaults plus env cover it.
			if err := applyEnvOverrides(&cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("SKIN_TRACKER_DB"); v != "" {
		cfg.Store.Sqlite.Path = v
	}
	if v := os.Getenv("SKIN_TRACKER_WATCHLIST"); v != "" {
		cfg.Watchlist.Path = v
	}
	if v := os.Getenv("SKIN_TRACKER_ALERTS"); v != "" {
		cfg.Alerts.Path = v
	}
	if v := os.Getenv("STEAM_BASE_URL"); v != "" {
		cfg.Steam.BaseURL = v
	}
	if v := os.Getenv("SKIN_TRACKER_WEBHOOK"); v != "" {
		cfg.Notify.Webhook = v
	}
	return nil
}
