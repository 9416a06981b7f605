package repository

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"mc-console-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteSnapshotRepository implements SnapshotRepository using SQLite.
// Collections are stored as JSON blobs in a two-column key/value table, so
// the on-disk schema stays identical in shape across every backend.
type SQLiteSnapshotRepository struct {
	db *sql.DB
}

// NewSQLiteSnapshotRepository creates a new SQLite snapshot repository.
func NewSQLiteSnapshotRepository(dbPath string) (*SQLiteSnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	query := `
	CREATE TABLE IF NOT EXISTS console_snapshots (
		blob_key TEXT PRIMARY KEY,
		blob_json TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	log.Printf("[SQLiteSnapshotRepository] Initialized with database: %s", dbPath)
	return &SQLiteSnapshotRepository{db: db}, nil
}

func (r *SQLiteSnapshotRepository) put(key string, v any) error {
	data, err := encodeBlob(v)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO console_snapshots (blob_key, blob_json, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(blob_key) DO UPDATE SET
			blob_json = excluded.blob_json,
			updated_at = datetime('now')`

	if _, err := r.db.Exec(query, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", key, err)
	}
	return nil
}

func (r *SQLiteSnapshotRepository) get(key string, target any) error {
	var blob string
	err := r.db.QueryRow(`SELECT blob_json FROM console_snapshots WHERE blob_key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s snapshot: %w", key, err)
	}
	return decodeBlob([]byte(blob), target)
}

// SaveAccounts overwrites the accounts blob.
func (r *SQLiteSnapshotRepository) SaveAccounts(accounts []model.Account) error {
	return r.put(KeyAccounts, accounts)
}

// LoadAccounts reads the accounts blob.
func (r *SQLiteSnapshotRepository) LoadAccounts() ([]model.Account, error) {
	accounts := []model.Account{}
	if err := r.get(KeyAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SaveProxies overwrites the proxies blob.
func (r *SQLiteSnapshotRepository) SaveProxies(proxies []model.Proxy) error {
	return r.put(KeyProxies, proxies)
}

// LoadProxies reads the proxies blob.
func (r *SQLiteSnapshotRepository) LoadProxies() ([]model.Proxy, error) {
	proxies := []model.Proxy{}
	if err := r.get(KeyProxies, &proxies); err != nil {
		return nil, err
	}
	return proxies, nil
}

// SaveSpawnerTransactions overwrites the spawner ledger blob.
func (r *SQLiteSnapshotRepository) SaveSpawnerTransactions(transactions []model.SpawnerTransaction) error {
	return r.put(KeySpawners, transactions)
}

// LoadSpawnerTransactions reads the spawner ledger blob.
func (r *SQLiteSnapshotRepository) LoadSpawnerTransactions() ([]model.SpawnerTransaction, error) {
	transactions := []model.SpawnerTransaction{}
	if err := r.get(KeySpawners, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Close closes the database connection.
func (r *SQLiteSnapshotRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteSnapshotRepository implements SnapshotRepository
var _ SnapshotRepository = (*SQLiteSnapshotRepository)(nil)
