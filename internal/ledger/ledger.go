// Package ledger reads and writes the shop's collections as whole JSON
// documents. A document that is missing or does not parse reads as empty.
// Writes that span collections go through Update, which commits them in one
// backend batch.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go-repair-pos/internal/models"
	"go-repair-pos/internal/store"
)

// Ledger is safe for concurrent use; mutations are serialized.
type Ledger struct {
	store store.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func New(s store.Store, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{store: s, log: log}
}

// getter abstracts the ledger and an open transaction.
type getter func(ctx context.Context, key string) ([]byte, error)

func decodeList[T any](ctx context.Context, get getter, log *slog.Logger, key string) ([]T, error) {
	raw, err := get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: load %s: %w", key, err)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn("unreadable collection, treating as empty", slog.String("key", key), slog.Any("error", err))
		return []T{}, nil
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func decodeSettings(ctx context.Context, get getter, log *slog.Logger) (models.Settings, error) {
	raw, err := get(ctx, models.KeySettings)
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("ledger: load settings: %w", err)
	}
	s := models.DefaultSettings()
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn("unreadable settings, using defaults", slog.Any("error", err))
		return models.DefaultSettings(), nil
	}
	return s, nil
}

func (l *Ledger) get(ctx context.Context, key string) ([]byte, error) {
	return l.store.Get(ctx, key)
}

func (l *Ledger) Products(ctx context.Context) ([]models.Product, error) {
	return decodeList[models.Product](ctx, l.get, l.log, models.KeyInventory)
}

func (l *Ledger) Sales(ctx context.Context) ([]models.Sale, error) {
	return decodeList[models.Sale](ctx, l.get, l.log, models.KeySales)
}

func (l *Ledger) Repairs(ctx context.Context) ([]models.Repair, error) {
	return decodeList[models.Repair](ctx, l.get, l.log, models.KeyRepairs)
}

func (l *Ledger) Dues(ctx context.Context) ([]models.Due, error) {
	return decodeList[models.Due](ctx, l.get, l.log, models.KeyDues)
}

func (l *Ledger) Users(ctx context.Context) ([]models.User, error) {
	return decodeList[models.User](ctx, l.get, l.log, models.KeyUsers)
}

// HasUsers reports whether the users document has ever been written.
func (l *Ledger) HasUsers(ctx context.Context) (bool, error) {
	_, err := l.store.Get(ctx, models.KeyUsers)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (l *Ledger) Settings(ctx context.Context) (models.Settings, error) {
	return decodeSettings(ctx, l.get, l.log)
}

// Update runs fn with a transaction and commits whatever it staged. Nothing
// is written if fn returns an error.
func (l *Ledger) Update(ctx context.Context, fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &Tx{ledger: l, staged: make(map[string]store.Op)}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit(ctx)
}
