package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage handles persistent storage of merchant gateway settings.
// Settings are stored as the host's opaque JSON blob and decoded into a
// typed GatewaySettings on load.
type SQLiteStorage struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStorage) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				// Exponential backoff: 10ms, 20ms, 40ms, 80ms
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

// NewSQLiteStorage creates a new SQLite settings storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	storage := &SQLiteStorage{
		db:   db,
		path: dbPath,
	}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS merchant_settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		merchant_id TEXT NOT NULL,
		gateway_name TEXT NOT NULL,
		settings_blob TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(merchant_id, gateway_name)
	);

	CREATE INDEX IF NOT EXISTS idx_merchant_gateway ON merchant_settings(merchant_id, gateway_name);
	`

	_, err := s.db.Exec(query)
	return err
}

// SaveMerchantSettings stores a merchant's settings blob. The blob is
// decoded first so malformed settings are rejected at write time instead of
// surfacing as empty signature inputs later.
func (s *SQLiteStorage) SaveMerchantSettings(merchantID, gatewayName string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := DecodeGatewaySettings(blob); err != nil {
		return err
	}

	return s.retryOperation(func() error {
		query := `
		INSERT INTO merchant_settings (merchant_id, gateway_name, settings_blob, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(merchant_id, gateway_name)
		DO UPDATE SET
			settings_blob = excluded.settings_blob,
			updated_at = CURRENT_TIMESTAMP
		`

		_, err := s.db.Exec(query, merchantID, gatewayName, string(blob))
		if err != nil {
			return fmt.Errorf("failed to save settings for merchant %s: %w", merchantID, err)
		}
		return nil
	}, 3)
}

// LoadMerchantSettings loads and decodes a merchant's gateway settings.
func (s *SQLiteStorage) LoadMerchantSettings(merchantID, gatewayName string) (*GatewaySettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings *GatewaySettings
	err := s.retryOperation(func() error {
		query := `
		SELECT settings_blob
		FROM merchant_settings
		WHERE merchant_id = ? AND gateway_name = ?
		`

		var blob string
		err := s.db.QueryRow(query, merchantID, gatewayName).Scan(&blob)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("no settings found for merchant: %s, gateway: %s", merchantID, gatewayName)
			}
			return fmt.Errorf("failed to load merchant settings: %w", err)
		}

		settings, err = DecodeGatewaySettings([]byte(blob))
		return err
	}, 3)

	return settings, err
}

// DeleteMerchantSettings removes a merchant's gateway settings.
func (s *SQLiteStorage) DeleteMerchantSettings(merchantID, gatewayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		query := `
		DELETE FROM merchant_settings
		WHERE merchant_id = ? AND gateway_name = ?
		`

		result, err := s.db.Exec(query, merchantID, gatewayName)
		if err != nil {
			return fmt.Errorf("failed to delete merchant settings: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return fmt.Errorf("no settings found for merchant: %s, gateway: %s", merchantID, gatewayName)
		}

		return nil
	}, 3)
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
