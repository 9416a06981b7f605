package handler

import (
	"encoding/json"
	"net/http"

	"mc-console-api/internal/model"
	"mc-console-api/internal/service"
	"mc-console-api/internal/store"
	"mc-console-api/pkg/apierror"
	"mc-console-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ProxyHandler handles proxy-related HTTP requests.
type ProxyHandler struct {
	console *service.ConsoleService
	store   *store.Store
}

// NewProxyHandler creates a new proxy handler.
func NewProxyHandler(console *service.ConsoleService, st *store.Store) *ProxyHandler {
	return &ProxyHandler{console: console, store: st}
}

// CreateProxyRequest represents the request body for proxy creation.
type CreateProxyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// UpdateProxyRequest represents the request body for proxy updates.
type UpdateProxyRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// ProxyView is a proxy together with its live occupancy count.
type ProxyView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	AccountCount int    `json:"accountCount"`
}

// List handles GET /api/v1/proxies
// Occupancy counts are recomputed from the live account list, never read
// from the stored record.
func (h *ProxyHandler) List(w http.ResponseWriter, r *http.Request) {
	proxies := h.store.Proxies()
	views := make([]ProxyView, len(proxies))
	for i, p := range proxies {
		views[i] = ProxyView{
			ID:           p.ID,
			Name:         p.Name,
			Address:      p.Address,
			AccountCount: h.store.GetProxyAccountCount(p.ID),
		}
	}
	response.OK(w, views)
}

// Create handles POST /api/v1/proxies
func (h *ProxyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Name == "" {
		response.Error(w, apierror.BadRequest("name is required"))
		return
	}
	if req.Address == "" {
		response.Error(w, apierror.BadRequest("address is required"))
		return
	}

	proxy, err := h.console.CreateProxy(store.NewProxy{Name: req.Name, Address: req.Address})
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}

	response.Created(w, proxy)
}

// Update handles PATCH /api/v1/proxies/{id}
func (h *ProxyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	err := h.console.UpdateProxy(id, store.ProxyPatch{Name: req.Name, Address: req.Address})
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}

	proxy, _ := h.store.GetProxy(id)
	response.OK(w, proxy)
}

// Delete handles DELETE /api/v1/proxies/{id}
// Accounts bound to the proxy are kept and unassigned.
func (h *ProxyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.console.DeleteProxy(id); err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.NoContent(w)
}

// Occupancy handles GET /api/v1/proxies/{id}/occupancy
func (h *ProxyHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := h.store.GetProxy(id); !ok {
		response.Error(w, apierror.NotFound("proxy not found"))
		return
	}

	response.OK(w, map[string]any{
		"proxyId":      id,
		"accountCount": h.store.GetProxyAccountCount(id),
		"limit":        model.MaxAccountsPerProxy,
	})
}
