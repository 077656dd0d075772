// Package sqlite implements the local document store on an embedded
// SQLite database, one row per month key.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/store"

	_ "modernc.org/sqlite"
)

// Store is a store.LocalStore backed by a SQLite file.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the local database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the document stored under key, or domain.ErrNotFound.
func (s *Store) Get(key string) (*domain.MonthData, error) {
	var doc []byte
	err := s.db.QueryRow(`SELECT doc FROM month_documents WHERE storage_key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select month document: %w", err)
	}

	var data domain.MonthData
	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, fmt.Errorf("decode month document: %w", err)
	}
	return &data, nil
}

// Put stores the document under key, replacing any prior value.
func (s *Store) Put(key string, data *domain.MonthData) error {
	if data == nil {
		return domain.ErrInvalidInput
	}

	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode month document: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO month_documents (storage_key, doc, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		key, doc, data.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert month document: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.LocalStore = (*Store)(nil)
