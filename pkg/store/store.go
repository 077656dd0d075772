// Package store defines the two document-store contracts the sync engine
// works against: a durable local cache and the shared remote store.
package store

import (
	"context"

	"github.com/abrito/financas/financas-sync/pkg/domain"
)

// LocalStore is key-value persistence on the device. Calls are expected
// to be fast and deterministic; a missing key is domain.ErrNotFound.
type LocalStore interface {
	Get(key string) (*domain.MonthData, error)
	Put(key string, data *domain.MonthData) error
	Close() error
}

// RemoteEvent is one delivery from a remote subscription. Data is nil
// when the remote document does not exist yet; that is an explicit
// "absent" signal, not an error.
type RemoteEvent struct {
	Data *domain.MonthData
}

// RemoteStore is the shared, network-backed document store. Put and Get
// may fail with network or auth errors; Subscribe delivers the current
// value (or absent) immediately and every subsequent change made by any
// client. The returned cancel func detaches the subscription and closes
// the channel.
type RemoteStore interface {
	Get(ctx context.Context, key string) (*domain.MonthData, error)
	Put(ctx context.Context, key string, data *domain.MonthData) error
	Subscribe(ctx context.Context, key string) (<-chan RemoteEvent, context.CancelFunc, error)
}
