package handler

import (
	"net/http"
	"runtime"
	"time"

	"mc-console-api/internal/store"
	"mc-console-api/internal/ws"
	"mc-console-api/pkg/response"
)

// AdminHandler handles admin/diagnostic HTTP requests.
type AdminHandler struct {
	store     *store.Store
	hub       *ws.Hub
	storeType string // Persistence backend: bolt, sqlite, or mysql
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(st *store.Store, hub *ws.Hub, storeType string) *AdminHandler {
	return &AdminHandler{
		store:     st,
		hub:       hub,
		storeType: storeType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]any)

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType

	// Collection sizes and live derived numbers
	accounts := h.store.Accounts()
	online := 0
	for _, acc := range accounts {
		if acc.IsOnline {
			online++
		}
	}
	stats["collections"] = map[string]any{
		"accounts":     len(accounts),
		"online":       online,
		"parents":      len(h.store.GetParentAccounts()),
		"proxies":      len(h.store.Proxies()),
		"transactions": len(h.store.SpawnerTransactions()),
	}

	// Connected console clients
	stats["ws_clients"] = h.hub.ClientCount()

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]any{
		"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
		"num_gc":     memStats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}

	// Runtime info
	stats["runtime"] = map[string]any{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
