package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"mc-console-api/internal/model"

	"go.etcd.io/bbolt"
)

var snapshotBucket = []byte("snapshots")

// BoltSnapshotRepository implements SnapshotRepository on a single bbolt
// file: one bucket, one key per collection, whole-collection JSON values.
type BoltSnapshotRepository struct {
	db *bbolt.DB
}

// NewBoltSnapshotRepository opens (or creates) the bbolt file at path.
func NewBoltSnapshotRepository(path string) (*BoltSnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot bucket: %w", err)
	}

	log.Printf("[BoltSnapshotRepository] Initialized with database: %s", path)
	return &BoltSnapshotRepository{db: db}, nil
}

// put overwrites one collection blob.
func (r *BoltSnapshotRepository) put(key string, v any) error {
	data, err := encodeBlob(v)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put([]byte(key), data)
	})
}

// get reads one collection blob into target; absent keys leave target as-is.
func (r *BoltSnapshotRepository) get(key string, target any) error {
	return r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(snapshotBucket).Get([]byte(key))
		return decodeBlob(data, target)
	})
}

// SaveAccounts overwrites the accounts blob.
func (r *BoltSnapshotRepository) SaveAccounts(accounts []model.Account) error {
	return r.put(KeyAccounts, accounts)
}

// LoadAccounts reads the accounts blob.
func (r *BoltSnapshotRepository) LoadAccounts() ([]model.Account, error) {
	accounts := []model.Account{}
	if err := r.get(KeyAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SaveProxies overwrites the proxies blob.
func (r *BoltSnapshotRepository) SaveProxies(proxies []model.Proxy) error {
	return r.put(KeyProxies, proxies)
}

// LoadProxies reads the proxies blob.
func (r *BoltSnapshotRepository) LoadProxies() ([]model.Proxy, error) {
	proxies := []model.Proxy{}
	if err := r.get(KeyProxies, &proxies); err != nil {
		return nil, err
	}
	return proxies, nil
}

// SaveSpawnerTransactions overwrites the spawner ledger blob.
func (r *BoltSnapshotRepository) SaveSpawnerTransactions(transactions []model.SpawnerTransaction) error {
	return r.put(KeySpawners, transactions)
}

// LoadSpawnerTransactions reads the spawner ledger blob.
func (r *BoltSnapshotRepository) LoadSpawnerTransactions() ([]model.SpawnerTransaction, error) {
	transactions := []model.SpawnerTransaction{}
	if err := r.get(KeySpawners, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Close closes the bolt file.
func (r *BoltSnapshotRepository) Close() error {
	return r.db.Close()
}

// Ensure BoltSnapshotRepository implements SnapshotRepository
var _ SnapshotRepository = (*BoltSnapshotRepository)(nil)
