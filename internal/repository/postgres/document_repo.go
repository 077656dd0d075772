package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository persists month documents as JSONB, one row per
// (family, month key).
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Get returns the raw document for a family's month key.
func (r *DocumentRepository) Get(ctx context.Context, familyID, key string) ([]byte, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx,
		`SELECT doc FROM month_documents WHERE family_id = $1 AND month_key = $2`,
		familyID, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select month document: %w", err)
	}
	return doc, nil
}

// Upsert stores the document, replacing any prior value for the key.
func (r *DocumentRepository) Upsert(ctx context.Context, familyID, key string, doc []byte, updatedAt int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO month_documents (family_id, month_key, doc, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (family_id, month_key)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		familyID, key, doc, updatedAt)
	if err != nil {
		return fmt.Errorf("upsert month document: %w", err)
	}
	return nil
}
