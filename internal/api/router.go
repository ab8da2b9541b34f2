// Package api exposes the tracker over HTTP. Read endpoints degrade to
// empty results; write and lifecycle endpoints surface typed errors.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"skin-tracker/internal/alerts"
	"skin-tracker/internal/store"
	"skin-tracker/internal/updater"
	"skin-tracker/internal/watchlist"
)

type ItemRequest struct {
	Name string `json:"name"`
}

type AlertRuleRequest struct {
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
}

type ExportRequest struct {
	Skin   string `json:"skin"`
	Path   string `json:"path"`
	Format string `json:"format"`
}

type CleanupRequest struct {
	Days int `json:"days"`
}

type AutoUpdateRequest struct {
	Enabled     bool `json:"enabled"`
	IntervalMin int  `json:"interval_min"`
}

func RegisterRoutes(h *server.Hertz, st *store.Store, wl *watchlist.List, rules *alerts.Rules, runner *updater.Runner, status *Status) {
	h.GET("/healthz", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	h.GET("/api/v1/items", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]any{"items": wl.Items()})
	})

	h.POST("/api/v1/items", func(_ context.Context, c *app.RequestContext) {
		var req ItemRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json body"})
			return
		}
		if err := wl.Add(req.Name); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, map[string]any{"ok": true, "items": wl.Items()})
	})

	h.DELETE("/api/v1/items", func(_ context.Context, c *app.RequestContext) {
		var req ItemRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json body"})
			return
		}
		removed, err := wl.Remove(req.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, map[string]any{"ok": true, "removed": removed})
	})

	h.GET("/api/v1/items/history", func(_ context.Context, c *app.RequestContext) {
		skin := c.Query("skin")
		limit := queryInt(c, "limit")
		days := queryInt(c, "days")
		history := st.History(skin, limit, days)
		c.JSON(http.StatusOK, map[string]any{
			"skin":    skin,
			"count":   len(history),
			"history": history,
		})
	})

	h.GET("/api/v1/items/latest", func(_ context.Context, c *app.RequestContext) {
		skin := c.Query("skin")
		price, ok := st.LatestPrice(skin)
		// Missing data renders as 0.0 here; the store keeps them distinct.
		c.JSON(http.StatusOK, map[string]any{"skin": skin, "price": price, "known": ok})
	})

	h.GET("/api/v1/items/stats", func(_ context.Context, c *app.RequestContext) {
		skin := c.Query("skin")
		days := queryInt(c, "days")
		c.JSON(http.StatusOK, st.PriceStatistics(skin, days))
	})

	h.POST("/api/v1/update", func(_ context.Context, c *app.RequestContext) {
		items := wl.Items()
		if len(items) == 0 {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "watchlist is empty"})
			return
		}
		if !runner.Start(items, false) {
			c.JSON(http.StatusConflict, map[string]any{"ok": false, "error": "update cycle already running"})
			return
		}
		c.JSON(http.StatusAccepted, map[string]any{"ok": true, "items": len(items)})
	})

	h.POST("/api/v1/update/stop", func(_ context.Context, c *app.RequestContext) {
		runner.Stop()
		c.JSON(http.StatusOK, map[string]any{"ok": true, "running": runner.Running()})
	})

	h.GET("/api/v1/update/status", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, status.snapshot(runner.Running()))
	})

	h.POST("/api/v1/update/auto", func(_ context.Context, c *app.RequestContext) {
		var req AutoUpdateRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json body"})
			return
		}
		if req.Enabled {
			runner.StartAuto(time.Duration(req.IntervalMin)*time.Minute, wl.Items)
		} else {
			runner.StopAuto()
		}
		c.JSON(http.StatusOK, map[string]any{"ok": true, "enabled": req.Enabled})
	})

	h.POST("/api/v1/export", func(_ context.Context, c *app.RequestContext) {
		var req ExportRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json body"})
			return
		}
		var err error
		switch req.Format {
		case "", "csv":
			err = st.ExportCSV(req.Skin, req.Path)
		case "xlsx":
			err = st.ExportXLSX(req.Skin, req.Path)
		default:
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "unsupported format: " + req.Format})
			return
		}
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, store.ErrInvalidArgument) {
				code = http.StatusBadRequest
			}
			c.JSON(code, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})

	h.GET("/api/v1/db/stats", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, st.Stats())
	})

	h.GET("/api/v1/db/integrity", func(_ context.Context, c *app.RequestContext) {
		issues, err := st.ValidateIntegrity()
		resp := map[string]any{"issues": issues}
		if err != nil {
			resp["fatal"] = err.Error()
		}
		c.JSON(http.StatusOK, resp)
	})

	h.POST("/api/v1/db/cleanup", func(_ context.Context, c *app.RequestContext) {
		var req CleanupRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json body"})
			return
		}
		if req.Days <= 0 {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "days must be positive"})
			return
		}
		deleted, err := st.CleanupOlderThan(req.Days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, map[string]any{"ok": true, "deleted": deleted})
	})

	h.GET("/api/v1/alerts", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]any{"rules": rules.All()})
	})

	h.POST("/api/v1/alerts", func(_ context.Context, c *app.RequestContext) {
		var req AlertRuleRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json body"})
			return
		}
		if err := rules.Set(req.Name, req.Threshold); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})

	h.DELETE("/api/v1/alerts", func(_ context.Context, c *app.RequestContext) {
		var req AlertRuleRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json body"})
			return
		}
		removed, err := rules.Remove(req.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, map[string]any{"ok": true, "removed": removed})
	})
}

func queryInt(c *app.RequestContext, key string) int {
	v := c.Query(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
