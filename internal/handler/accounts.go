package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mc-console-api/internal/model"
	"mc-console-api/internal/service"
	"mc-console-api/internal/store"
	"mc-console-api/pkg/apierror"
	"mc-console-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	console   *service.ConsoleService
	store     *store.Store
	checker   *service.StatusChecker
	statusLog *service.StatusLog
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(
	console *service.ConsoleService,
	st *store.Store,
	checker *service.StatusChecker,
	statusLog *service.StatusLog,
) *AccountHandler {
	return &AccountHandler{
		console:   console,
		store:     st,
		checker:   checker,
		statusLog: statusLog,
	}
}

// CreateAccountRequest represents the request body for account creation.
type CreateAccountRequest struct {
	Username    string            `json:"username"`
	Credentials model.Credentials `json:"credentials"`
	ParentID    *string           `json:"parentId"`
	ProxyID     *string           `json:"proxyId"`
}

// UpdateAccountRequest represents the request body for account updates.
type UpdateAccountRequest struct {
	Username    *string            `json:"username"`
	Credentials *model.Credentials `json:"credentials"`
}

// AssignProxyRequest represents the request body for proxy assignment.
// A null proxyId unassigns the account.
type AssignProxyRequest struct {
	ProxyID *string `json:"proxyId"`
}

// List handles GET /api/v1/accounts
// With ?parents=true only root accounts are returned.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("parents") == "true" {
		response.OK(w, h.store.GetParentAccounts())
		return
	}
	response.OK(w, h.store.Accounts())
}

// Get handles GET /api/v1/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	account, ok := h.store.GetAccount(id)
	if !ok {
		response.Error(w, apierror.NotFound("account not found"))
		return
	}
	response.OK(w, account)
}

// Children handles GET /api/v1/accounts/{id}/children
func (h *AccountHandler) Children(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	response.OK(w, h.store.GetChildAccounts(id))
}

// Create handles POST /api/v1/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Credentials.Email == "" {
		response.Error(w, apierror.BadRequest("credentials.email is required"))
		return
	}

	account, err := h.console.CreateAccount(store.NewAccount{
		Username:    req.Username,
		Credentials: req.Credentials,
		ParentID:    req.ParentID,
		ProxyID:     req.ProxyID,
	})
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}

	response.Created(w, account)
}

// Update handles PATCH /api/v1/accounts/{id}
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	err := h.console.UpdateAccount(id, model.AccountPatch{
		Username:    req.Username,
		Credentials: req.Credentials,
	})
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}

	account, _ := h.store.GetAccount(id)
	response.OK(w, account)
}

// Delete handles DELETE /api/v1/accounts/{id}
// Child accounts are removed in the same operation.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.console.DeleteAccount(id); err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.NoContent(w)
}

// AssignProxy handles PUT /api/v1/accounts/{id}/proxy
func (h *AccountHandler) AssignProxy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AssignProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := h.console.AssignProxy(id, req.ProxyID); err != nil {
		response.Error(w, serviceError(err))
		return
	}

	account, _ := h.store.GetAccount(id)
	response.OK(w, account)
}

// Status handles GET /api/v1/accounts/{id}/status
// Returns the full request/response detail of the most recent probe.
func (h *AccountHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := h.store.GetAccount(id); !ok {
		response.Error(w, apierror.NotFound("account not found"))
		return
	}

	result, ok := h.statusLog.Latest(id)
	if !ok {
		response.Error(w, apierror.NotFound("no probe result recorded yet"))
		return
	}
	response.OK(w, result)
}

// CheckNow handles POST /api/v1/accounts/check
// Triggers an immediate probe cycle for all eligible accounts.
func (h *AccountHandler) CheckNow(w http.ResponseWriter, r *http.Request) {
	h.checker.CheckAll()
	response.OK(w, map[string]any{"status": "check scheduled"})
}

// serviceError maps console service errors onto API errors.
func serviceError(err error) error {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return apierror.NotFound("account not found")
	case errors.Is(err, service.ErrProxyNotFound):
		return apierror.NotFound("proxy not found")
	case errors.Is(err, service.ErrProxyFull):
		return apierror.Conflict("proxy has reached its account limit")
	case errors.Is(err, service.ErrParentIsChild):
		return apierror.BadRequest("parent account is itself a child")
	default:
		return apierror.InternalError(err.Error())
	}
}
