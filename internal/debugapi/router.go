// Package debugapi serves the latest cull snapshot over HTTP and websocket.
package debugapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/udisondev/cullgo/internal/culling"
	"github.com/udisondev/cullgo/internal/model"
	"github.com/udisondev/cullgo/internal/sim"
)

// CategoryResponse is the JSON view of one category's counters.
type CategoryResponse struct {
	Category   string  `json:"category"`
	Scans      uint64  `json:"scans"`
	Members    uint64  `json:"members"`
	AvgMembers float64 `json:"avg_members"`
	Culled     uint64  `json:"culled"`
	Unculled   uint64  `json:"unculled"`
	ScanTimeNs int64   `json:"scan_time_ns"`
}

// StatsResponse is a snapshot with its per-category counters expanded.
type StatsResponse struct {
	*sim.Snapshot
	Categories map[string]CategoryResponse `json:"categories"`
}

func newCategoryResponse(c model.Category, s culling.CategoryStats) CategoryResponse {
	return CategoryResponse{
		Category:   c.String(),
		Scans:      s.Scans,
		Members:    s.Members,
		AvgMembers: s.AvgMembers(),
		Culled:     s.Culled,
		Unculled:   s.Unculled,
		ScanTimeNs: s.ScanTime.Nanoseconds(),
	}
}

func newStatsResponse(snap *sim.Snapshot) StatsResponse {
	resp := StatsResponse{
		Snapshot:   snap,
		Categories: make(map[string]CategoryResponse, model.CategoryCount),
	}
	for _, c := range model.AllCategories() {
		resp.Categories[c.String()] = newCategoryResponse(c, snap.Stats.Category(c))
	}
	return resp
}

type handlers struct {
	src            sim.SnapshotSource
	streamInterval time.Duration
	quit           <-chan struct{}
}

// NewRouter builds the debug API. Websocket streams end when quit is closed.
func NewRouter(src sim.SnapshotSource, streamInterval time.Duration, quit <-chan struct{}) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	h := &handlers{src: src, streamInterval: streamInterval, quit: quit}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", h.health)
	r.GET("/stats", h.stats)
	r.GET("/stats/:category", h.category)
	r.GET("/ws", h.stream)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("debug api request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (h *handlers) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if snap := h.src.Snapshot(); snap != nil {
		resp["frame"] = snap.Frame
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) stats(c *gin.Context) {
	snap := h.src.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, newStatsResponse(snap))
}

func (h *handlers) category(c *gin.Context) {
	name := c.Param("category")
	cat, ok := model.ParseCategory(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category " + name})
		return
	}

	snap := h.src.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(cat, snap.Stats.Category(cat)))
}
