package services

import (
	"context"
	"fmt"
	"log/slog"

	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
)

// Settings covers shop details and whole-ledger data management.
type Settings struct {
	deps Deps
}

func NewSettings(d Deps) *Settings {
	return &Settings{deps: d.withDefaults()}
}

func (s *Settings) Get(ctx context.Context) (models.Settings, error) {
	return s.deps.Ledger.Settings(ctx)
}

func (s *Settings) Save(ctx context.Context, in models.Settings) (models.Settings, error) {
	if err := validateInput(in); err != nil {
		return models.Settings{}, err
	}
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		return tx.PutSettings(in)
	})
	if err != nil {
		return models.Settings{}, err
	}
	return in, nil
}

func (s *Settings) Export(ctx context.Context) (ledger.Snapshot, error) {
	return s.deps.Ledger.Export(ctx)
}

// Import replaces the collections found in data. Malformed documents are
// refused as validation errors and leave the ledger as it was.
func (s *Settings) Import(ctx context.Context, data []byte) ([]string, error) {
	keys, err := s.deps.Ledger.Import(ctx, data)
	if err != nil {
		s.deps.Log.Warn("import refused", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return keys, nil
}

func (s *Settings) Clear(ctx context.Context, sess models.Session) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}
	if err := s.deps.Ledger.Clear(ctx); err != nil {
		return err
	}
	s.deps.Log.Warn("all shop data cleared", slog.String("by", sess.Username))
	return nil
}

func (s *Settings) Stats(ctx context.Context) (ledger.Stats, error) {
	return s.deps.Ledger.Stats(ctx)
}
