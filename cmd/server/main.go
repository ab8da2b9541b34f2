package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/joho/godotenv"

	"skin-tracker/internal/alerts"
	"skin-tracker/internal/api"
	"skin-tracker/internal/config"
	"skin-tracker/internal/notify"
	"skin-tracker/internal/steam"
	"skin-tracker/internal/store"
	"skin-tracker/internal/updater"
	"skin-tracker/internal/watchlist"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("configs/app.yaml")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	h := server.Default(server.WithHostPorts(addr))

	st, err := store.Open(cfg.Store.Sqlite.Path,
		store.WithLogger(logger),
		store.WithBusyTimeout(time.Duration(cfg.Store.Sqlite.BusyTimeoutMs)*time.Millisecond),
	)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("store close error: %v", err)
		}
	}()

	summary := st.Stats()
	logger.Info("database ready",
		"path", st.Path(),
		"skins", summary.UniqueSkins,
		"records", summary.TotalRecords,
	)
	if issues, err := st.ValidateIntegrity(); err != nil {
		log.Fatalf("integrity error: %v", err)
	} else if len(issues) > 0 {
		logger.Warn("integrity check found advisory issues", "count", len(issues))
	}

	wl := watchlist.Load(cfg.Watchlist.Path)
	rules := alerts.Load(cfg.Alerts.Path)

	client := steam.NewClient(steam.ClientConfig{
		BaseURL:  cfg.Steam.BaseURL,
		AppID:    cfg.Steam.AppID,
		Currency: cfg.Steam.Currency,
		Timeout:  time.Duration(cfg.Steam.TimeoutMs) * time.Millisecond,
	})

	status := api.NewStatus()
	alertHook := status.OnAlert
	if cfg.Notify.Webhook != "" {
		webhook := notify.NewClient(cfg.Notify.Webhook, cfg.Notify.Secret,
			time.Duration(cfg.Notify.TimeoutMs)*time.Millisecond)
		dispatcher := notify.NewDispatcher(webhook, notify.Config{
			DedupWindow: time.Duration(cfg.Notify.DedupWindowSec) * time.Second,
			PerMinute:   cfg.Notify.PerMinute,
			Burst:       cfg.Notify.Burst,
		}, logger)
		alertHook = func(skin string, price float64, q steam.Quote) {
			status.OnAlert(skin, price, q)
			threshold, _ := rules.Threshold(skin)
			dispatcher.PriceAlert(skin, price, threshold)
		}
	}

	runner := updater.New(client, st, rules, updater.Hooks{
		Progress:  status.OnProgress,
		Data:      status.OnData,
		Alert:     alertHook,
		Completed: status.OnCompleted,
		Failed:    status.OnFailed,
	}, updater.Config{
		RequestDelay: time.Duration(cfg.Update.RequestDelaySec) * time.Second,
		StopGrace:    time.Duration(cfg.Update.StopGraceSec) * time.Second,
	}, logger)

	if cfg.Update.AutoIntervalMin > 0 {
		runner.StartAuto(time.Duration(cfg.Update.AutoIntervalMin)*time.Minute, wl.Items)
	}
	defer runner.StopAuto()

	api.RegisterRoutes(h, st, wl, rules, runner, status)

	logger.Info("server starting", "addr", addr, "log_level", cfg.Log.Level)
	if err := h.Run(); err != nil {
		log.Fatalf("server run error: %v", err)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
