package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a TransactionStore backed by SQLite. Saves are guarded by
// a version column: the UPDATE only matches when the row still carries the
// version the caller loaded, which gives the notification path the
// exclusivity it requires under concurrent provider retries.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the transaction database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000&_txlock=immediate", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSQLiteStoreWithDB wraps an existing connection, used by tests and by
// hosts that manage the pool themselves.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		auth_expiry DATETIME,
		payer_name TEXT NOT NULL DEFAULT '',
		payer_email TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
	`

	_, err := s.db.Exec(query)
	return err
}

// retryOperation retries an operation when SQLite reports the database as
// busy or locked, with exponential backoff.
func (s *SQLiteStore) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// Load fetches a transaction by id. Returns ErrNotFound when no row exists.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*Transaction, error) {
	query := `
	SELECT id, amount, currency, status, auth_expiry, payer_name, payer_email, description, version, updated_at
	FROM transactions
	WHERE id = ?
	`

	var txn Transaction
	var authExpiry sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&txn.ID, &txn.Amount.Amount, &txn.Amount.Currency, &txn.Status,
		&authExpiry, &txn.Payer.Name, &txn.Payer.Email, &txn.Description,
		&txn.Version, &txn.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", id, err)
	}

	if authExpiry.Valid {
		txn.AuthExpiry = &authExpiry.Time
	}

	return &txn, nil
}

// Save persists the transaction if and only if the stored row still carries
// txn.Version, bumping the version on success. A lost race returns
// ErrVersionConflict; a vanished row returns ErrNotFound.
func (s *SQLiteStore) Save(ctx context.Context, txn *Transaction) error {
	return s.retryOperation(func() error {
		query := `
		UPDATE transactions
		SET amount = ?, currency = ?, status = ?, auth_expiry = ?,
			payer_name = ?, payer_email = ?, description = ?,
			version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
		`

		var authExpiry any
		if txn.AuthExpiry != nil {
			authExpiry = *txn.AuthExpiry
		}

		result, err := s.db.ExecContext(ctx, query,
			txn.Amount.Amount, txn.Amount.Currency, txn.Status, authExpiry,
			txn.Payer.Name, txn.Payer.Email, txn.Description,
			txn.ID, txn.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			exists, err := s.exists(ctx, txn.ID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrVersionConflict
		}

		txn.Version++
		return nil
	}, 3)
}

// Insert creates a new transaction row. The gateway core never calls this;
// it exists for the host's checkout flow and for tests.
func (s *SQLiteStore) Insert(ctx context.Context, txn *Transaction) error {
	return s.retryOperation(func() error {
		query := `
		INSERT INTO transactions (id, amount, currency, status, auth_expiry, payer_name, payer_email, description, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		var authExpiry any
		if txn.AuthExpiry != nil {
			authExpiry = *txn.AuthExpiry
		}

		_, err := s.db.ExecContext(ctx, query,
			txn.ID, txn.Amount.Amount, txn.Amount.Currency, txn.Status,
			authExpiry, txn.Payer.Name, txn.Payer.Email, txn.Description, txn.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
		return nil
	}, 3)
}

func (s *SQLiteStore) exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE id = ?", id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction %s: %w", id, err)
	}
	return n > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
