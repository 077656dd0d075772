package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abrito/financas/financas-sync/internal/websocket"
	"github.com/abrito/financas/financas-sync/pkg/domain"
)

// DocumentStore is the persistence the document service needs.
type DocumentStore interface {
	Get(ctx context.Context, familyID, key string) ([]byte, error)
	Upsert(ctx context.Context, familyID, key string, doc []byte, updatedAt int64) error
}

// DocumentService handles month-document reads and writes, fanning out
// every accepted write to the family's subscribers.
type DocumentService struct {
	repo      DocumentStore
	publisher websocket.EventPublisher
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(repo DocumentStore, publisher websocket.EventPublisher) *DocumentService {
	return &DocumentService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetMonth returns the stored document, or domain.ErrNotFound.
func (s *DocumentService) GetMonth(ctx context.Context, familyID, key string) (json.RawMessage, error) {
	if _, _, err := ParseMonthKey(key); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, familyID, key)
}

// SaveMonth validates and persists a document, then broadcasts the new
// value to everyone subscribed to the month. Last write wins.
func (s *DocumentService) SaveMonth(ctx context.Context, familyID, key string, raw json.RawMessage) error {
	if _, _, err := ParseMonthKey(key); err != nil {
		return err
	}

	var data domain.MonthData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode month document: %w", domain.ErrInvalidInput)
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, familyID, key, raw, data.UpdatedAt); err != nil {
		return err
	}

	s.publisher.Publish(websocket.Topic(familyID, key), websocket.MonthUpdated(key, raw))
	return nil
}

// ParseMonthKey splits a "{year}-{month:02d}" document key.
func ParseMonthKey(key string) (year, month int, err error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, 0, domain.ErrInvalidInput
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, domain.ErrInvalidInput
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, domain.ErrInvalidInput
	}
	if !domain.ValidMonth(year, month) {
		return 0, 0, domain.ErrInvalidInput
	}
	return year, month, nil
}
