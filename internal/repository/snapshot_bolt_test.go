package repository

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"mc-console-api/internal/model"
)

func newTestBoltRepo(t *testing.T) *BoltSnapshotRepository {
	t.Helper()
	repo, err := NewBoltSnapshotRepository(filepath.Join(t.TempDir(), "console.db"))
	if err != nil {
		t.Fatalf("NewBoltSnapshotRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestBoltLoadAbsentBlobsReturnsEmpty(t *testing.T) {
	repo := newTestBoltRepo(t)

	accounts, err := repo.LoadAccounts()
	if err != nil {
		t.Fatalf("LoadAccounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("fresh database returned %d accounts", len(accounts))
	}

	proxies, err := repo.LoadProxies()
	if err != nil {
		t.Fatalf("LoadProxies: %v", err)
	}
	if len(proxies) != 0 {
		t.Fatalf("fresh database returned %d proxies", len(proxies))
	}

	spawners, err := repo.LoadSpawnerTransactions()
	if err != nil {
		t.Fatalf("LoadSpawnerTransactions: %v", err)
	}
	if len(spawners) != 0 {
		t.Fatalf("fresh database returned %d transactions", len(spawners))
	}
}

func TestBoltAccountsRoundTrip(t *testing.T) {
	repo := newTestBoltRepo(t)

	checked := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	parentID := "parent-1"
	proxyID := "proxy-1"
	in := []model.Account{
		{
			ID:       "parent-1",
			Username: "RootUser",
			Credentials: model.Credentials{
				Email:             "root@example.com",
				MicrosoftPassword: "ms-pass",
			},
			IsOnline:    true,
			LastChecked: &checked,
			CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "child-1",
			Username:  "ChildUser",
			ParentID:  &parentID,
			ProxyID:   &proxyID,
			CreatedAt: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	if err := repo.SaveAccounts(in); err != nil {
		t.Fatalf("SaveAccounts: %v", err)
	}
	out, err := repo.LoadAccounts()
	if err != nil {
		t.Fatalf("LoadAccounts: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
	if out[0].LastChecked == nil || !out[0].LastChecked.Equal(checked) {
		t.Fatal("lastChecked instant must survive the round trip")
	}
	if out[1].LastChecked != nil {
		t.Fatal("nil lastChecked must stay nil, not become a zero time")
	}
}

func TestBoltProxiesAndSpawnersRoundTrip(t *testing.T) {
	repo := newTestBoltRepo(t)

	proxies := []model.Proxy{{ID: "p1", Name: "eu-1", Address: "10.0.0.1:8080"}}
	if err := repo.SaveProxies(proxies); err != nil {
		t.Fatalf("SaveProxies: %v", err)
	}

	price := 3.5
	total := 7.0
	accountID := "acct-1"
	spawners := []model.SpawnerTransaction{{
		ID:           "tx1",
		Type:         model.TransactionSale,
		SpawnerType:  "iron_golem",
		Quantity:     2,
		PricePerUnit: &price,
		TotalPrice:   &total,
		Notes:        "bulk deal",
		Date:         time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC),
		AccountID:    &accountID,
	}}
	if err := repo.SaveSpawnerTransactions(spawners); err != nil {
		t.Fatalf("SaveSpawnerTransactions: %v", err)
	}

	gotProxies, err := repo.LoadProxies()
	if err != nil {
		t.Fatalf("LoadProxies: %v", err)
	}
	if !reflect.DeepEqual(proxies, gotProxies) {
		t.Fatalf("proxies mismatch: %+v vs %+v", proxies, gotProxies)
	}

	gotSpawners, err := repo.LoadSpawnerTransactions()
	if err != nil {
		t.Fatalf("LoadSpawnerTransactions: %v", err)
	}
	if !reflect.DeepEqual(spawners, gotSpawners) {
		t.Fatalf("spawner transactions mismatch: %+v vs %+v", spawners, gotSpawners)
	}
}

func TestBoltBlobsAreIndependent(t *testing.T) {
	repo := newTestBoltRepo(t)

	if err := repo.SaveAccounts([]model.Account{{ID: "a1", Username: "solo"}}); err != nil {
		t.Fatalf("SaveAccounts: %v", err)
	}
	if err := repo.SaveProxies([]model.Proxy{{ID: "p1", Name: "x", Address: "h:1"}}); err != nil {
		t.Fatalf("SaveProxies: %v", err)
	}

	// Overwriting one blob leaves the others alone.
	if err := repo.SaveAccounts([]model.Account{}); err != nil {
		t.Fatalf("SaveAccounts overwrite: %v", err)
	}

	accounts, _ := repo.LoadAccounts()
	if len(accounts) != 0 {
		t.Fatal("accounts blob should be empty after overwrite")
	}
	proxies, _ := repo.LoadProxies()
	if len(proxies) != 1 {
		t.Fatal("proxies blob must be untouched by the accounts write")
	}
}
