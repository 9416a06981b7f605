package repository

import "mc-console-api/internal/model"

// SnapshotRepository mirrors the three console collections to durable storage.
// Each Save overwrites the whole collection blob; there is no delta writing
// and no transactional grouping across collections. Loads of a never-saved
// collection return an empty slice, not an error.
type SnapshotRepository interface {
	// SaveAccounts overwrites the accounts blob.
	SaveAccounts(accounts []model.Account) error

	// LoadAccounts reads the accounts blob, reconstructing timestamp fields.
	LoadAccounts() ([]model.Account, error)

	// SaveProxies overwrites the proxies blob.
	SaveProxies(proxies []model.Proxy) error

	// LoadProxies reads the proxies blob.
	LoadProxies() ([]model.Proxy, error)

	// SaveSpawnerTransactions overwrites the spawner ledger blob.
	SaveSpawnerTransactions(transactions []model.SpawnerTransaction) error

	// LoadSpawnerTransactions reads the spawner ledger blob.
	LoadSpawnerTransactions() ([]model.SpawnerTransaction, error)

	// Close closes the underlying storage.
	Close() error
}

// Blob keys shared by every backend. They match the storage keys the console
// frontend used, so an exported localStorage dump can be imported directly.
const (
	KeyAccounts = "mc-accounts"
	KeyProxies  = "mc-proxies"
	KeySpawners = "mc-spawners"
)
