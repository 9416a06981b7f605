package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"mc-console-api/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLSnapshotRepository implements SnapshotRepository using MySQL, for
// deployments where the console's data directory is not durable. Same
// key/blob table shape as the SQLite backend.
type MySQLSnapshotRepository struct {
	db *sql.DB
}

// NewMySQLSnapshotRepository connects to MySQL and prepares the snapshot table.
func NewMySQLSnapshotRepository(dsn string) (*MySQLSnapshotRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS console_snapshots (
		blob_key VARCHAR(64) PRIMARY KEY,
		blob_json LONGTEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	log.Printf("[MySQLSnapshotRepository] Initialized")
	return &MySQLSnapshotRepository{db: db}, nil
}

func (r *MySQLSnapshotRepository) put(key string, v any) error {
	data, err := encodeBlob(v)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO console_snapshots (blob_key, blob_json)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE blob_json = VALUES(blob_json)`

	if _, err := r.db.Exec(query, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", key, err)
	}
	return nil
}

func (r *MySQLSnapshotRepository) get(key string, target any) error {
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
func (r *MySQLSnapshotRepository) SaveAccounts(accounts []model.Account) error {
	return r.put(KeyAccounts, accounts)
}

// LoadAccounts reads the accounts blob.
func (r *MySQLSnapshotRepository) LoadAccounts() ([]model.Account, error) {
	accounts := []model.Account{}
	if err := r.get(KeyAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SaveProxies overwrites the proxies blob.
func (r *MySQLSnapshotRepository) SaveProxies(proxies []model.Proxy) error {
	return r.put(KeyProxies, proxies)
}

// LoadProxies reads the proxies blob.
func (r *MySQLSnapshotRepository) LoadProxies() ([]model.Proxy, error) {
	proxies := []model.Proxy{}
	if err := r.get(KeyProxies, &proxies); err != nil {
		return nil, err
	}
	return proxies, nil
}

// SaveSpawnerTransactions overwrites the spawner ledger blob.
func (r *MySQLSnapshotRepository) SaveSpawnerTransactions(transactions []model.SpawnerTransaction) error {
	return r.put(KeySpawners, transactions)
}

// LoadSpawnerTransactions reads the spawner ledger blob.
func (r *MySQLSnapshotRepository) LoadSpawnerTransactions() ([]model.SpawnerTransaction, error) {
	transactions := []model.SpawnerTransaction{}
	if err := r.get(KeySpawners, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Close closes the database connection.
func (r *MySQLSnapshotRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLSnapshotRepository implements SnapshotRepository
var _ SnapshotRepository = (*MySQLSnapshotRepository)(nil)
