// Package history keeps the capped, newest-first list of past analyses.
//
// The list is stored as one JSON document under a single key in a pluggable
// Backend (memory, file, SQLite, PostgreSQL or S3). Items are immutable
// snapshots; re-selecting one never contacts the model.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/cv-architect/internal/types"
)

// Key names the persisted history list in every backend.
const Key = "cv_architect_history"

// Limit is the maximum number of retained items.
const Limit = 20

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("history item not found")

// Backend persists the encoded history list. Load returns nil data and no
// error when nothing has been stored yet.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// Store implements append/remove/load over a Backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
	limit   int
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLimit overrides the retention cap.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a Store over backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		limit:   Limit,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll returns every item, newest first. Unreadable or corrupt data is
// logged and treated as an empty history.
func (s *Store) LoadAll(ctx context.Context) []types.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the item with id.
func (s *Store) Get(ctx context.Context, id string) (types.HistoryItem, error) {
	for _, item := range s.LoadAll(ctx) {
		if item.ID == id {
			return item, nil
		}
	}
	return types.HistoryItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Append wraps result in a new item, prepends it and truncates the list to
// the cap before persisting.
func (s *Store) Append(ctx context.Context, result types.AnalysisResult, market types.Market) (types.HistoryItem, error) {
	item, err := types.NewHistoryItem(result, market, s.now())
	if err != nil {
		return types.HistoryItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := append([]types.HistoryItem{item}, s.load(ctx)...)
	if len(items) > s.limit {
		s.logger.Debug("evicting history items", "count", len(items)-s.limit)
		items = items[:s.limit]
	}

	if err := s.save(ctx, items); err != nil {
		return types.HistoryItem{}, err
	}
	return item, nil
}

// Remove deletes the item with id. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load(ctx)
	kept := make([]types.HistoryItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return s.save(ctx, kept)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) load(ctx context.Context) []types.HistoryItem {
	data, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load history, starting empty", "error", err)
		return []types.HistoryItem{}
	}
	if len(data) == 0 {
		return []types.HistoryItem{}
	}

	var items []types.HistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("history data is corrupt, starting empty", "error", err)
		return []types.HistoryItem{}
	}
	if items == nil {
		items = []types.HistoryItem{}
	}
	return items
}

func (s *Store) save(ctx context.Context, items []types.HistoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
