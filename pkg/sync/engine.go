// Package sync is the local-first engine behind the app: it keeps the
// device cache authoritative for reads, mirrors every change to the
// shared remote store when one is reachable, and lets remote state win
// whenever the two disagree.
package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/store"
	"github.com/rs/zerolog/log"
)

// Status is the connectivity state shown to the user.
type Status string

const (
	// StatusOffline means changes stay on the device only.
	StatusOffline Status = "offline"
	// StatusSyncing means a push to the remote store is in flight.
	StatusSyncing Status = "syncing"
	// StatusOnline means the last push succeeded and the subscription
	// for the current month is live.
	StatusOnline Status = "online"
)

// DefaultKeyPrefix is the local storage key prefix for month documents.
const DefaultKeyPrefix = "financeData"

const pushTimeout = 15 * time.Second

// Generator produces the template document for a month that has never
// been opened on this device.
type Generator interface {
	Generate(year, month int) *domain.MonthData
}

// RemoteConnection is the remote document store plus the session
// handshake. A nil RemoteConnection means offline-only operation.
type RemoteConnection interface {
	store.RemoteStore
	Configured() bool
	SignInAnonymously(ctx context.Context) error
}

// Snapshot is one engine state emission: the active month, its data and
// the connectivity status. Data is a deep copy owned by the receiver.
type Snapshot struct {
	Year   int
	Month  int
	Status Status
	Data   *domain.MonthData
}

// Engine coordinates the local cache, the remote store and the template
// generator for one device. All exported methods are safe for
// concurrent use.
type Engine struct {
	local  store.LocalStore
	remote RemoteConnection
	gen    Generator
	prefix string

	mu        sync.Mutex
	status    Status
	year      int
	month     int
	current   *domain.MonthData
	subCancel context.CancelFunc
	subGen    int
	updates   chan Snapshot
	closed    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithKeyPrefix overrides the local storage key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(e *Engine) { e.prefix = prefix }
}

// New creates an Engine. remote may be nil for offline-only use; Start
// decides whether the remote side comes up at all.
func New(local store.LocalStore, remote RemoteConnection, gen Generator, opts ...Option) *Engine {
	e := &Engine{
		local:   local,
		remote:  remote,
		gen:     gen,
		prefix:  DefaultKeyPrefix,
		status:  StatusOffline,
		updates: make(chan Snapshot, 16),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start performs the session handshake. Every failure leaves the engine
// in offline mode: domain.ErrAuthDisabled is returned for the expected
// "server has sign-in switched off" case so callers can tell it apart
// from a real outage, but neither is fatal.
func (e *Engine) Start(ctx context.Context) error {
	if e.remote == nil || !e.remote.Configured() {
		log.Info().Msg("No remote configured, running offline-only")
		return nil
	}

	if err := e.remote.SignInAnonymously(ctx); err != nil {
		if errors.Is(err, domain.ErrAuthDisabled) {
			log.Warn().Msg("Anonymous auth disabled on server, running offline-only")
		} else {
			log.Error().Err(err).Msg("Sign-in failed, running offline-only")
		}
		return err
	}

	e.mu.Lock()
	e.status = StatusOnline
	year, month := e.year, e.month
	e.emitLocked()
	e.mu.Unlock()

	if year != 0 {
		e.subscribe(year, month)
	}
	return nil
}

// LoadMonth makes (year, month) the active month. The local cache is
// authoritative: a cached document is returned as-is, a missing one is
// generated from the template and persisted. When online, the remote
// subscription moves to the new month and whatever it delivers later
// replaces the local value.
func (e *Engine) LoadMonth(ctx context.Context, year, month int) (*domain.MonthData, error) {
	if !domain.ValidMonth(year, month) {
		return nil, domain.ErrInvalidInput
	}

	e.mu.Lock()
	e.detachLocked()
	e.year, e.month = year, month

	key := domain.StorageKey(e.prefix, year, month)
	data, err := e.local.Get(key)
	if errors.Is(err, domain.ErrNotFound) {
		data = e.gen.Generate(year, month)
		if err := e.local.Put(key, data); err != nil {
			e.mu.Unlock()
			return nil, err
		}
		log.Debug().Int("year", year).Int("month", month).Msg("Generated month from template")
	} else if err != nil {
		e.mu.Unlock()
		return nil, err
	}

	e.current = data
	online := e.status != StatusOffline
	e.emitLocked()
	e.mu.Unlock()

	if online {
		e.subscribe(year, month)
	}

	return data.Clone(), nil
}

// ChangeMonth moves the active month by diff months (use -1 and 1 for
// the previous/next arrows) and loads it.
func (e *Engine) ChangeMonth(ctx context.Context, diff int) (*domain.MonthData, error) {
	e.mu.Lock()
	year, month := domain.AddMonths(e.year, e.month, diff)
	e.mu.Unlock()
	return e.LoadMonth(ctx, year, month)
}

// SaveMonth persists data as the active month's document. The local
// write happens first and is the source of truth; the remote push runs
// in the background and only moves the status.
func (e *Engine) SaveMonth(ctx context.Context, data *domain.MonthData) error {
	if data == nil {
		return domain.ErrInvalidInput
	}
	if err := data.Validate(); err != nil {
		return err
	}

	data = data.Clone()
	data.Touch()

	e.mu.Lock()
	if e.year == 0 {
		e.mu.Unlock()
		return domain.ErrInvalidInput
	}
	year, month := e.year, e.month
	key := domain.StorageKey(e.prefix, year, month)
	if err := e.local.Put(key, data); err != nil {
		e.mu.Unlock()
		return err
	}
	e.current = data
	offline := e.status == StatusOffline
	e.emitLocked()
	e.mu.Unlock()

	if !offline {
		e.push(data.Clone(), year, month)
	}
	return nil
}

// Current returns a deep copy of the active month's document, or nil
// before the first LoadMonth.
func (e *Engine) Current() *domain.MonthData {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	return e.current.Clone()
}

// Status returns the connectivity state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// YearMonth returns the active month, (0, 0) before the first load.
func (e *Engine) YearMonth() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.year, e.month
}

// Updates delivers state snapshots after every change. The channel is
// buffered and lossy: when a consumer lags, the oldest snapshot is
// dropped, never the newest.
func (e *Engine) Updates() <-chan Snapshot {
	return e.updates
}

// Close detaches the subscription, closes the updates channel and the
// local store.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.detachLocked()
	close(e.updates)
	e.mu.Unlock()
	return e.local.Close()
}

// push mirrors data to the remote store in the background. Success ends
// in online, any failure in offline, even if a newer local write exists.
func (e *Engine) push(data *domain.MonthData, year, month int) {
	e.mu.Lock()
	e.status = StatusSyncing
	e.emitLocked()
	e.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		err := e.remote.Put(ctx, domain.MonthKey(year, month), data)

		e.mu.Lock()
		defer e.mu.Unlock()
		if err != nil {
			log.Error().Err(err).Int("year", year).Int("month", month).Msg("Remote push failed")
			e.status = StatusOffline
		} else if e.status == StatusSyncing {
			e.status = StatusOnline
		}
		e.emitLocked()
	}()
}

// subscribe attaches the remote subscription for (year, month),
// detaching whatever month was watched before.
func (e *Engine) subscribe(year, month int) {
	e.mu.Lock()
	e.detachLocked()
	e.subGen++
	gen := e.subGen
	ctx, cancel := context.WithCancel(context.Background())
	e.subCancel = cancel
	e.mu.Unlock()

	events, _, err := e.remote.Subscribe(ctx, domain.MonthKey(year, month))
	if err != nil {
		log.Warn().Err(err).Int("year", year).Int("month", month).Msg("Subscription failed, going offline")
		e.mu.Lock()
		e.status = StatusOffline
		e.emitLocked()
		e.mu.Unlock()
		return
	}

	go func() {
		for event := range events {
			e.applyRemote(gen, year, month, event)
		}
	}()
}

// applyRemote handles one subscription delivery. Remote data always
// wins: it replaces the in-memory value and the local cache without any
// timestamp comparison. An absent delivery seeds the remote store with
// the current local value instead, leaving the cache untouched.
func (e *Engine) applyRemote(gen, year, month int, event store.RemoteEvent) {
	e.mu.Lock()
	if gen != e.subGen || e.closed {
		e.mu.Unlock()
		return
	}

	if event.Data != nil {
		e.current = event.Data
		key := domain.StorageKey(e.prefix, year, month)
		if err := e.local.Put(key, event.Data); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to cache remote document")
		}
		e.emitLocked()
		e.mu.Unlock()
		return
	}

	var toPush *domain.MonthData
	if e.current != nil {
		toPush = e.current.Clone()
	}
	e.mu.Unlock()

	if toPush != nil {
		log.Debug().Int("year", year).Int("month", month).Msg("Remote document absent, uploading local value")
		e.push(toPush, year, month)
	}
}

// detachLocked cancels the active subscription. Caller holds mu.
func (e *Engine) detachLocked() {
	if e.subCancel != nil {
		e.subCancel()
		e.subCancel = nil
	}
	e.subGen++
}

// emitLocked sends a snapshot on the updates channel, dropping the
// oldest buffered one when the consumer lags. Caller holds mu.
func (e *Engine) emitLocked() {
	if e.closed {
		return
	}
	snap := Snapshot{Year: e.year, Month: e.month, Status: e.status}
	if e.current != nil {
		snap.Data = e.current.Clone()
	}
	select {
	case e.updates <- snap:
	default:
		select {
		case <-e.updates:
		default:
		}
		select {
		case e.updates <- snap:
		default:
		}
	}
}
