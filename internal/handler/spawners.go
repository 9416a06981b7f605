package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"mc-console-api/internal/model"
	"mc-console-api/internal/service"
	"mc-console-api/internal/store"
	"mc-console-api/pkg/apierror"
	"mc-console-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// SpawnerHandler handles spawner-ledger HTTP requests.
type SpawnerHandler struct {
	console *service.ConsoleService
	store   *store.Store
}

// NewSpawnerHandler creates a new spawner handler.
func NewSpawnerHandler(console *service.ConsoleService, st *store.Store) *SpawnerHandler {
	return &SpawnerHandler{console: console, store: st}
}

// CreateTransactionRequest represents the request body for a ledger entry.
// Date defaults to the current time when omitted.
type CreateTransactionRequest struct {
	Type         string     `json:"type"`
	SpawnerType  string     `json:"spawnerType"`
	Quantity     int        `json:"quantity"`
	PricePerUnit *float64   `json:"pricePerUnit"`
	TotalPrice   *float64   `json:"totalPrice"`
	Notes        string     `json:"notes"`
	Date         *time.Time `json:"date"`
	AccountID    *string    `json:"accountId"`
}

// List handles GET /api/v1/spawners
func (h *SpawnerHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.store.SpawnerTransactions())
}

// Create handles POST /api/v1/spawners
func (h *SpawnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if !model.ValidTransactionType(req.Type) {
		response.Error(w, apierror.BadRequest("type must be purchase, sale or loss"))
		return
	}
	if req.SpawnerType == "" {
		response.Error(w, apierror.BadRequest("spawnerType is required"))
		return
	}
	if req.Quantity < 0 {
		response.Error(w, apierror.BadRequest("quantity must not be negative"))
		return
	}
	if req.PricePerUnit != nil && *req.PricePerUnit < 0 {
		response.Error(w, apierror.BadRequest("pricePerUnit must not be negative"))
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	tx, err := h.console.CreateSpawnerTransaction(store.NewSpawnerTransaction{
		Type:         req.Type,
		SpawnerType:  req.SpawnerType,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		TotalPrice:   req.TotalPrice,
		Notes:        req.Notes,
		Date:         date,
		AccountID:    req.AccountID,
	})
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}

	response.Created(w, tx)
}

// Delete handles DELETE /api/v1/spawners/{id}
// Deleting an unknown id is a no-op, matching the store contract.
func (h *SpawnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteSpawnerTransaction(id); err != nil {
		response.Error(w, apierror.InternalError(err.Error()))
		return
	}
	response.NoContent(w)
}
