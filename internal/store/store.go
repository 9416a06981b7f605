package store

import (
	"fmt"
	"sync"
	"time"

	"mc-console-api/internal/model"
	"mc-console-api/internal/repository"
	"mc-console-api/pkg/uid"
)

// Store owns the canonical in-memory collections of accounts, proxies and
// spawner transactions. All access goes through its methods; a single RWMutex
// serializes mutations so no two of them interleave mid-operation.
//
// Every mutator mirrors the touched collection to the snapshot repository
// before returning. A persistence failure is returned to the caller, but the
// in-memory change stays applied; the next successful save catches up.
//
// The store deliberately does not validate referential integrity: a ParentID
// or ProxyID naming a missing entity is tolerated and simply never surfaced
// by the hierarchy and occupancy queries. Likewise AssignProxy accepts any
// assignment; the per-proxy capacity cap is checked by callers before they
// get here (see service.Console).
type Store struct {
	mu   sync.RWMutex
	repo repository.SnapshotRepository

	accounts []model.Account
	proxies  []model.Proxy
	spawners []model.SpawnerTransaction
}

// NewAccount holds the caller-supplied fields for account creation. The
// store synthesizes everything else.
type NewAccount struct {
	Username    string
	Credentials model.Credentials
	ParentID    *string
	ProxyID     *string
}

// NewProxy holds the caller-supplied fields for proxy creation.
type NewProxy struct {
	Name    string
	Address string
}

// NewSpawnerTransaction holds the caller-supplied fields for a ledger entry.
// Date is caller-supplied; TotalPrice is expected to be computed by the
// caller when both quantity and unit price are present.
type NewSpawnerTransaction struct {
	Type         string
	SpawnerType  string
	Quantity     int
	PricePerUnit *float64
	TotalPrice   *float64
	Notes        string
	Date         time.Time
	AccountID    *string
}

// ProxyPatch carries a partial proxy update. Nil fields are left untouched.
type ProxyPatch struct {
	Name    *string
	Address *string
}

// New creates a Store rehydrated from the snapshot repository. Collections
// whose blob is absent start empty.
func New(repo repository.SnapshotRepository) (*Store, error) {
	accounts, err := repo.LoadAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	proxies, err := repo.LoadProxies()
	if err != nil {
		return nil, fmt.Errorf("failed to load proxies: %w", err)
	}
	spawners, err := repo.LoadSpawnerTransactions()
	if err != nil {
		return nil, fmt.Errorf("failed to load spawner transactions: %w", err)
	}

	return &Store{
		repo:     repo,
		accounts: accounts,
		proxies:  proxies,
		spawners: spawners,
	}, nil
}

// AddAccount creates a new account with a fresh id, offline status, no
// lastChecked and the current creation time. It always succeeds apart from
// persistence errors.
func (s *Store) AddAccount(input NewAccount) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := model.Account{
		ID:          uid.New(),
		Username:    input.Username,
		Credentials: input.Credentials,
		ParentID:    input.ParentID,
		ProxyID:     input.ProxyID,
		IsOnline:    false,
		LastChecked: nil,
		CreatedAt:   time.Now().UTC(),
	}
	s.accounts = append(s.accounts, account)

	return account, s.persistAccounts()
}

// UpdateAccount merges the patch into the matching account. An unknown id is
// a no-op, which also makes a probe completion racing a delete harmless.
func (s *Store) UpdateAccount(id string, patch model.AccountPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.accountIndex(id)
	if idx < 0 {
		return nil
	}

	acc := &s.accounts[idx]
	if patch.Username != nil {
		acc.Username = *patch.Username
	}
	if patch.Credentials != nil {
		acc.Credentials = *patch.Credentials
	}
	if patch.ParentID != nil {
		acc.ParentID = *patch.ParentID
	}
	if patch.ProxyID != nil {
		acc.ProxyID = *patch.ProxyID
	}
	if patch.IsOnline != nil {
		acc.IsOnline = *patch.IsOnline
	}
	if patch.LastChecked != nil {
		t := *patch.LastChecked
		acc.LastChecked = &t
	}

	return s.persistAccounts()
}

// DeleteAccount removes the account and, in the same transition, every
// account whose ParentID equals id. Hierarchies are at most two levels deep,
// so one pass suffices. An unknown id is a no-op.
func (s *Store) DeleteAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.accounts[:0]
	removed := false
	for _, acc := range s.accounts {
		if acc.ID == id || (acc.ParentID != nil && *acc.ParentID == id) {
			removed = true
			continue
		}
		kept = append(kept, acc)
	}
	if !removed {
		return nil
	}
	s.accounts = kept

	return s.persistAccounts()
}

// AddProxy creates a new proxy. AccountCount starts at zero and is never
// maintained afterwards; use GetProxyAccountCount for the live value.
func (s *Store) AddProxy(input NewProxy) (model.Proxy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proxy := model.Proxy{
		ID:           uid.New(),
		Name:         input.Name,
		Address:      input.Address,
		AccountCount: 0,
	}
	s.proxies = append(s.proxies, proxy)

	return proxy, s.persistProxies()
}

// UpdateProxy merges the patch into the matching proxy. Unknown ids are a
// no-op.
func (s *Store) UpdateProxy(id string, patch ProxyPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.proxies {
		if s.proxies[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.proxies[i].Name = *patch.Name
		}
		if patch.Address != nil {
			s.proxies[i].Address = *patch.Address
		}
		return s.persistProxies()
	}
	return nil
}

// DeleteProxy removes the proxy and, in the same transition, clears ProxyID
// on every account that referenced it. Dependent accounts are kept.
func (s *Store) DeleteProxy(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.proxies[:0]
	removed := false
	for _, p := range s.proxies {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return nil
	}
	s.proxies = kept

	for i := range s.accounts {
		if s.accounts[i].ProxyID != nil && *s.accounts[i].ProxyID == id {
			s.accounts[i].ProxyID = nil
		}
	}

	if err := s.persistProxies(); err != nil {
		return err
	}
	return s.persistAccounts()
}

// AssignProxy sets the account's ProxyID unconditionally; nil unassigns.
// Capacity enforcement is a caller responsibility exercised before calling
// this.
func (s *Store) AssignProxy(accountID string, proxyID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.accountIndex(accountID)
	if idx < 0 {
		return nil
	}
	s.accounts[idx].ProxyID = proxyID

	return s.persistAccounts()
}

// GetProxyAccountCount returns the live number of accounts bound to the
// proxy. Always recomputed from current account state, never cached.
func (s *Store) GetProxyAccountCount(proxyID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, acc := range s.accounts {
		if acc.ProxyID != nil && *acc.ProxyID == proxyID {
			count++
		}
	}
	return count
}

// GetParentAccounts returns all root accounts in insertion order.
func (s *Store) GetParentAccounts() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parents := []model.Account{}
	for _, acc := range s.accounts {
		if acc.ParentID == nil {
			parents = append(parents, acc)
		}
	}
	return parents
}

// GetChildAccounts returns all accounts parented under parentID in insertion
// order. A dangling parent reference simply yields no results here.
func (s *Store) GetChildAccounts(parentID string) []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	children := []model.Account{}
	for _, acc := range s.accounts {
		if acc.ParentID != nil && *acc.ParentID == parentID {
			children = append(children, acc)
		}
	}
	return children
}

// AddSpawnerTransaction appends a new ledger entry.
func (s *Store) AddSpawnerTransaction(input NewSpawnerTransaction) (model.SpawnerTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := model.SpawnerTransaction{
		ID:           uid.New(),
		Type:         input.Type,
		SpawnerType:  input.SpawnerType,
		Quantity:     input.Quantity,
		PricePerUnit: input.PricePerUnit,
		TotalPrice:   input.TotalPrice,
		Notes:        input.Notes,
		Date:         input.Date,
		AccountID:    input.AccountID,
	}
	s.spawners = append(s.spawners, tx)

	return tx, s.persistSpawners()
}

// DeleteSpawnerTransaction removes a ledger entry by id. No cascades.
func (s *Store) DeleteSpawnerTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.spawners[:0]
	removed := false
	for _, tx := range s.spawners {
		if tx.ID == id {
			removed = true
			continue
		}
		kept = append(kept, tx)
	}
	if !removed {
		return nil
	}
	s.spawners = kept

	return s.persistSpawners()
}

// GetAccount returns the account with the given id, if present.
func (s *Store) GetAccount(id string) (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.accountIndex(id)
	if idx < 0 {
		return model.Account{}, false
	}
	return s.accounts[idx], true
}

// GetProxy returns the proxy with the given id, if present.
func (s *Store) GetProxy(id string) (model.Proxy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.proxies {
		if p.ID == id {
			return p, true
		}
	}
	return model.Proxy{}, false
}

// Accounts returns a copy of the account collection in insertion order.
func (s *Store) Accounts() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Proxies returns a copy of the proxy collection in insertion order.
func (s *Store) Proxies() []model.Proxy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Proxy, len(s.proxies))
	copy(out, s.proxies)
	return out
}

// SpawnerTransactions returns a copy of the ledger in insertion order.
func (s *Store) SpawnerTransactions() []model.SpawnerTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SpawnerTransaction, len(s.spawners))
	copy(out, s.spawners)
	return out
}

// accountIndex returns the index of the account with the given id, or -1.
// Callers must hold the lock.
func (s *Store) accountIndex(id string) int {
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistAccounts() error {
	if err := s.repo.SaveAccounts(s.accounts); err != nil {
		return fmt.Errorf("failed to persist accounts: %w", err)
	}
	return nil
}

func (s *Store) persistProxies() error {
	if err := s.repo.SaveProxies(s.proxies); err != nil {
		return fmt.Errorf("failed to persist proxies: %w", err)
	}
	return nil
}

func (s *Store) persistSpawners() error {
	if err := s.repo.SaveSpawnerTransactions(s.spawners); err != nil {
		return fmt.Errorf("failed to persist spawner transactions: %w", err)
	}
	return nil
}
