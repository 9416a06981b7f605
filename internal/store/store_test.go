package store

import (
	"testing"
	"time"

	"mc-console-api/internal/model"
)

// memRepo is an in-memory SnapshotRepository for store tests.
type memRepo struct {
	accounts []model.Account
	proxies  []model.Proxy
	spawners []model.SpawnerTransaction
	saves    int
}

func (m *memRepo) SaveAccounts(accounts []model.Account) error {
	m.accounts = append([]model.Account(nil), accounts...)
	m.saves++
	return nil
}

func (m *memRepo) LoadAccounts() ([]model.Account, error) {
	return append([]model.Account{}, m.accounts...), nil
}

func (m *memRepo) SaveProxies(proxies []model.Proxy) error {
	m.proxies = append([]model.Proxy(nil), proxies...)
	m.saves++
	return nil
}

func (m *memRepo) LoadProxies() ([]model.Proxy, error) {
	return append([]model.Proxy{}, m.proxies...), nil
}

func (m *memRepo) SaveSpawnerTransactions(transactions []model.SpawnerTransaction) error {
	m.spawners = append([]model.SpawnerTransaction(nil), transactions...)
	m.saves++
	return nil
}

func (m *memRepo) LoadSpawnerTransactions() ([]model.SpawnerTransaction, error) {
	return append([]model.SpawnerTransaction{}, m.spawners...), nil
}

func (m *memRepo) Close() error { return nil }

func newTestStore(t *testing.T) (*Store, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	s, err := New(repo)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, repo
}

func strPtr(s string) *string { return &s }

func TestAddAccountDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		acc, err := s.AddAccount(NewAccount{Username: "user"})
		if err != nil {
			t.Fatalf("AddAccount: %v", err)
		}
		if acc.ID == "" || seen[acc.ID] {
			t.Fatalf("expected unique non-empty id, got %q", acc.ID)
		}
		seen[acc.ID] = true
		if acc.IsOnline {
			t.Error("new account must start offline")
		}
		if acc.LastChecked != nil {
			t.Error("new account must have nil lastChecked")
		}
		if acc.CreatedAt.IsZero() {
			t.Error("new account must have a creation time")
		}
	}
}

func TestDeleteAccountCascadesToChildren(t *testing.T) {
	s, _ := newTestStore(t)

	parent, _ := s.AddAccount(NewAccount{Username: "parent"})
	child1, _ := s.AddAccount(NewAccount{Username: "child1", ParentID: &parent.ID})
	child2, _ := s.AddAccount(NewAccount{Username: "child2", ParentID: &parent.ID})
	other, _ := s.AddAccount(NewAccount{Username: "other"})

	if err := s.DeleteAccount(parent.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	for _, id := range []string{parent.ID, child1.ID, child2.ID} {
		if _, ok := s.GetAccount(id); ok {
			t.Errorf("account %s should have been deleted", id)
		}
	}
	if _, ok := s.GetAccount(other.ID); !ok {
		t.Error("unrelated account must survive the cascade")
	}
}

func TestDeleteAccountUnknownIDIsNoop(t *testing.T) {
	s, repo := newTestStore(t)
	s.AddAccount(NewAccount{Username: "keep"})

	saves := repo.saves
	if err := s.DeleteAccount("no-such-id"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if len(s.Accounts()) != 1 {
		t.Fatal("no-op delete must not remove anything")
	}
	if repo.saves != saves {
		t.Error("no-op delete must not trigger a persistence write")
	}
}

func TestUpdateAccountUnknownIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)

	online := true
	if err := s.UpdateAccount("gone", model.AccountPatch{IsOnline: &online}); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if len(s.Accounts()) != 0 {
		t.Fatal("updating a missing id must not create anything")
	}
}

func TestUpdateAccountMergesFields(t *testing.T) {
	s, _ := newTestStore(t)

	acc, _ := s.AddAccount(NewAccount{
		Username:    "before",
		Credentials: model.Credentials{Email: "a@x.com"},
	})

	now := time.Now().UTC()
	online := true
	if err := s.UpdateAccount(acc.ID, model.AccountPatch{
		Username:    strPtr("after"),
		IsOnline:    &online,
		LastChecked: &now,
	}); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}

	got, _ := s.GetAccount(acc.ID)
	if got.Username != "after" {
		t.Errorf("username = %q, want %q", got.Username, "after")
	}
	if !got.IsOnline {
		t.Error("isOnline not updated")
	}
	if got.LastChecked == nil || !got.LastChecked.Equal(now) {
		t.Errorf("lastChecked = %v, want %v", got.LastChecked, now)
	}
	if got.Credentials.Email != "a@x.com" {
		t.Error("untouched fields must survive a partial update")
	}
}

func TestDeleteProxyUnassignsAccounts(t *testing.T) {
	s, _ := newTestStore(t)

	proxy, _ := s.AddProxy(NewProxy{Name: "p1", Address: "1.2.3.4:8080"})
	bound, _ := s.AddAccount(NewAccount{Username: "bound", ProxyID: &proxy.ID})
	free, _ := s.AddAccount(NewAccount{Username: "free"})

	if err := s.DeleteProxy(proxy.ID); err != nil {
		t.Fatalf("DeleteProxy: %v", err)
	}

	if _, ok := s.GetProxy(proxy.ID); ok {
		t.Error("proxy should have been removed")
	}
	got, _ := s.GetAccount(bound.ID)
	if got.ProxyID != nil {
		t.Error("dependent account must be unassigned, not deleted")
	}
	if _, ok := s.GetAccount(free.ID); !ok {
		t.Error("unrelated account must survive")
	}
}

func TestGetProxyAccountCountIsLive(t *testing.T) {
	s, _ := newTestStore(t)

	proxy, _ := s.AddProxy(NewProxy{Name: "p1", Address: "1.2.3.4:8080"})
	a, _ := s.AddAccount(NewAccount{Username: "a"})
	b, _ := s.AddAccount(NewAccount{Username: "b"})

	if got := s.GetProxyAccountCount(proxy.ID); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}

	s.AssignProxy(a.ID, &proxy.ID)
	if got := s.GetProxyAccountCount(proxy.ID); got != 1 {
		t.Fatalf("count after assign = %d, want 1", got)
	}

	s.AssignProxy(b.ID, &proxy.ID)
	if got := s.GetProxyAccountCount(proxy.ID); got != 2 {
		t.Fatalf("count after second assign = %d, want 2", got)
	}

	s.DeleteAccount(a.ID)
	if got := s.GetProxyAccountCount(proxy.ID); got != 1 {
		t.Fatalf("count after delete = %d, want 1", got)
	}

	s.AssignProxy(b.ID, nil)
	if got := s.GetProxyAccountCount(proxy.ID); got != 0 {
		t.Fatalf("count after unassign = %d, want 0", got)
	}
}

func TestStoreAcceptsOverCapacityAssignment(t *testing.T) {
	// The capacity cap is a caller responsibility; the store itself must
	// accept a sixth assignment when called directly.
	s, _ := newTestStore(t)

	proxy, _ := s.AddProxy(NewProxy{Name: "p1", Address: "1.2.3.4:8080"})
	for i := 0; i < 6; i++ {
		acc, _ := s.AddAccount(NewAccount{Username: "u"})
		if err := s.AssignProxy(acc.ID, &proxy.ID); err != nil {
			t.Fatalf("AssignProxy: %v", err)
		}
	}

	if got := s.GetProxyAccountCount(proxy.ID); got != 6 {
		t.Fatalf("count = %d, want 6", got)
	}
}

func TestParentChildScenario(t *testing.T) {
	s, _ := newTestStore(t)

	first, _ := s.AddAccount(NewAccount{
		Credentials: model.Credentials{Email: "a@x.com"},
	})

	parents := s.GetParentAccounts()
	if len(parents) != 1 || parents[0].ID != first.ID {
		t.Fatalf("GetParentAccounts = %v, want exactly the first account", parents)
	}

	second, _ := s.AddAccount(NewAccount{Username: "child", ParentID: &first.ID})

	children := s.GetChildAccounts(first.ID)
	if len(children) != 1 || children[0].ID != second.ID {
		t.Fatalf("GetChildAccounts = %v, want exactly the second account", children)
	}

	parents = s.GetParentAccounts()
	if len(parents) != 1 || parents[0].ID != first.ID {
		t.Fatal("GetParentAccounts must still return only the first account")
	}
}

func TestDanglingParentNeverSurfaces(t *testing.T) {
	s, _ := newTestStore(t)

	ghost := "no-such-parent"
	acc, _ := s.AddAccount(NewAccount{Username: "orphan", ParentID: &ghost})

	if len(s.GetParentAccounts()) != 0 {
		t.Error("an account with a dangling parent is not a root")
	}
	if len(s.GetChildAccounts(ghost)) != 1 {
		t.Error("children of the dangling id are still queryable by that id")
	}
	if _, ok := s.GetAccount(acc.ID); !ok {
		t.Error("the dangling reference itself is tolerated")
	}
}

func TestSpawnerTransactionLifecycle(t *testing.T) {
	s, _ := newTestStore(t)

	price := 2.5
	total := 25.0
	tx, err := s.AddSpawnerTransaction(NewSpawnerTransaction{
		Type:         model.TransactionPurchase,
		SpawnerType:  "blaze",
		Quantity:     10,
		PricePerUnit: &price,
		TotalPrice:   &total,
		Date:         time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("AddSpawnerTransaction: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("transaction must get a fresh id")
	}

	if got := s.SpawnerTransactions(); len(got) != 1 {
		t.Fatalf("ledger size = %d, want 1", len(got))
	}

	if err := s.DeleteSpawnerTransaction(tx.ID); err != nil {
		t.Fatalf("DeleteSpawnerTransaction: %v", err)
	}
	if got := s.SpawnerTransactions(); len(got) != 0 {
		t.Fatalf("ledger size after delete = %d, want 0", len(got))
	}

	// Deleting again is a no-op.
	if err := s.DeleteSpawnerTransaction(tx.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestRehydrateFromRepository(t *testing.T) {
	repo := &memRepo{}
	s1, err := New(repo)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	parent, _ := s1.AddAccount(NewAccount{Username: "parent"})
	s1.AddAccount(NewAccount{Username: "child", ParentID: &parent.ID})
	s1.AddProxy(NewProxy{Name: "p", Address: "host:1"})

	s2, err := New(repo)
	if err != nil {
		t.Fatalf("New after writes: %v", err)
	}
	if len(s2.Accounts()) != 2 || len(s2.Proxies()) != 1 {
		t.Fatalf("rehydrated %d accounts / %d proxies, want 2 / 1",
			len(s2.Accounts()), len(s2.Proxies()))
	}
	if got := s2.GetChildAccounts(parent.ID); len(got) != 1 {
		t.Fatal("hierarchy must survive rehydration")
	}
}
