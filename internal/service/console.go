package service

import (
	"errors"

	"mc-console-api/internal/model"
	"mc-console-api/internal/store"
)

// Caller-side rule violations. The store itself stays permissive (see the
// store package doc); these rules live here, in front of it, the same place
// the console frontend enforced them.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrProxyNotFound   = errors.New("proxy not found")
	ErrProxyFull       = errors.New("proxy has reached its account limit")
	ErrParentIsChild   = errors.New("parent account is itself a child")
)

// ConsoleService fronts the store with the validations the store
// deliberately omits: the per-proxy capacity cap, the two-level hierarchy
// rule, required fields and ledger price arithmetic.
type ConsoleService struct {
	store     *store.Store
	statusLog *StatusLog
}

// NewConsoleService creates a new console service.
func NewConsoleService(st *store.Store, statusLog *StatusLog) *ConsoleService {
	return &ConsoleService{
		store:     st,
		statusLog: statusLog,
	}
}

// CreateAccount creates an account after the hierarchy and capacity checks.
// A ParentID that names an existing child account is rejected to keep
// hierarchies at two levels; a ParentID naming no account at all is
// tolerated (dangling references are never surfaced by the hierarchy
// queries). Shape validation of the request is the HTTP handler's job.
func (s *ConsoleService) CreateAccount(input store.NewAccount) (model.Account, error) {
	if input.ParentID != nil {
		if parent, ok := s.store.GetAccount(*input.ParentID); ok && !parent.IsRoot() {
			return model.Account{}, ErrParentIsChild
		}
	}

	if input.ProxyID != nil {
		if err := s.checkProxyCapacity(*input.ProxyID, ""); err != nil {
			return model.Account{}, err
		}
	}

	return s.store.AddAccount(input)
}

// UpdateAccount merges a patch into an existing account.
func (s *ConsoleService) UpdateAccount(id string, patch model.AccountPatch) error {
	if _, ok := s.store.GetAccount(id); !ok {
		return ErrAccountNotFound
	}

	if patch.ParentID != nil && *patch.ParentID != nil {
		if parent, ok := s.store.GetAccount(**patch.ParentID); ok && !parent.IsRoot() {
			return ErrParentIsChild
		}
	}

	return s.store.UpdateAccount(id, patch)
}

// DeleteAccount removes an account, its children and any retained probe
// diagnostics. Deleting an unknown id fails here even though the store
// itself would treat it as a no-op.
func (s *ConsoleService) DeleteAccount(id string) error {
	account, ok := s.store.GetAccount(id)
	if !ok {
		return ErrAccountNotFound
	}

	children := s.store.GetChildAccounts(account.ID)
	if err := s.store.DeleteAccount(id); err != nil {
		return err
	}

	s.statusLog.Forget(id)
	for _, child := range children {
		s.statusLog.Forget(child.ID)
	}
	return nil
}

// CreateProxy creates a proxy record.
func (s *ConsoleService) CreateProxy(input store.NewProxy) (model.Proxy, error) {
	return s.store.AddProxy(input)
}

// UpdateProxy merges a patch into an existing proxy.
func (s *ConsoleService) UpdateProxy(id string, patch store.ProxyPatch) error {
	if _, ok := s.store.GetProxy(id); !ok {
		return ErrProxyNotFound
	}
	return s.store.UpdateProxy(id, patch)
}

// DeleteProxy removes a proxy; dependent accounts are kept and unassigned.
func (s *ConsoleService) DeleteProxy(id string) error {
	if _, ok := s.store.GetProxy(id); !ok {
		return ErrProxyNotFound
	}
	return s.store.DeleteProxy(id)
}

// AssignProxy binds an account to a proxy (or unbinds it when proxyID is
// nil) after the capacity check. The store would accept an over-capacity
// assignment if called directly, so the check has to happen here.
func (s *ConsoleService) AssignProxy(accountID string, proxyID *string) error {
	account, ok := s.store.GetAccount(accountID)
	if !ok {
		return ErrAccountNotFound
	}

	if proxyID != nil {
		if _, ok := s.store.GetProxy(*proxyID); !ok {
			return ErrProxyNotFound
		}
		current := ""
		if account.ProxyID != nil {
			current = *account.ProxyID
		}
		if err := s.checkProxyCapacity(*proxyID, current); err != nil {
			return err
		}
	}

	return s.store.AssignProxy(accountID, proxyID)
}

// CreateSpawnerTransaction records a ledger entry, filling in TotalPrice
// when the caller supplied a unit price but no total. The store never does
// this arithmetic itself.
func (s *ConsoleService) CreateSpawnerTransaction(input store.NewSpawnerTransaction) (model.SpawnerTransaction, error) {
	if input.TotalPrice == nil && input.PricePerUnit != nil {
		total := float64(input.Quantity) * *input.PricePerUnit
		input.TotalPrice = &total
	}

	return s.store.AddSpawnerTransaction(input)
}

// checkProxyCapacity rejects an assignment that would push the proxy past
// its cap. An account already bound to the proxy may stay.
func (s *ConsoleService) checkProxyCapacity(proxyID, currentProxyID string) error {
	if proxyID == currentProxyID {
		return nil
	}
	if s.store.GetProxyAccountCount(proxyID) >= model.MaxAccountsPerProxy {
		return ErrProxyFull
	}
	return nil
}
