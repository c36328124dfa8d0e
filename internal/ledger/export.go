package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go-repair-pos/internal/models"
)

// ErrInvalidImport wraps every reason an import document was refused.
var ErrInvalidImport = errors.New("invalid import document")

// Snapshot is the full-state export document.
type Snapshot struct {
	Users     []models.User    `json:"users"`
	Inventory []models.Product `json:"inventory"`
	Repairs   []models.Repair  `json:"repairs"`
	Sales     []models.Sale    `json:"sales"`
	Dues      []models.Due     `json:"dues"`
	Settings  models.Settings  `json:"settings"`
}

// Stats counts records per collection; Dues counts outstanding ones only.
type Stats struct {
	Users     int `json:"users"`
	Inventory int `json:"inventory"`
	Repairs   int `json:"repairs"`
	Sales     int `json:"sales"`
	Dues      int `json:"dues"`
}

// Export reads every collection into one document.
func (l *Ledger) Export(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Users, err = l.Users(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Inventory, err = l.Products(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Repairs, err = l.Repairs(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Sales, err = l.Sales(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Dues, err = l.Dues(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Settings, err = l.Settings(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func normalizeList[T any](key string, raw json.RawMessage) ([]byte, error) {
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImport, key, err)
	}
	if list == nil {
		list = []T{}
	}
	return json.Marshal(list)
}

// Import replaces every recognized collection present in data. The document
// is fully validated before anything is written, and all collections are
// committed together. It returns the keys that were replaced.
func (l *Ledger) Import(ctx context.Context, data []byte) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	type staged struct {
		key string
		raw []byte
	}
	var writes []staged
	for _, key := range []string{models.KeyUsers, models.KeyInventory, models.KeyRepairs, models.KeySales, models.KeyDues, models.KeySettings} {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var (
			out []byte
			err error
		)
		switch key {
		case models.KeyUsers:
			out, err = normalizeList[models.User](key, raw)
		case models.KeyInventory:
			out, err = normalizeList[models.Product](key, raw)
		case models.KeyRepairs:
			out, err = normalizeList[models.Repair](key, raw)
		case models.KeySales:
			out, err = normalizeList[models.Sale](key, raw)
		case models.KeyDues:
			out, err = normalizeList[models.Due](key, raw)
		case models.KeySettings:
			s := models.DefaultSettings()
			if err = json.Unmarshal(raw, &s); err != nil {
				err = fmt.Errorf("%w: %s: %v", ErrInvalidImport, key, err)
				break
			}
			out, err = json.Marshal(s)
		}
		if err != nil {
			return nil, err
		}
		writes = append(writes, staged{key: key, raw: out})
	}
	if len(writes) == 0 {
		return nil, fmt.Errorf("%w: no recognized collections", ErrInvalidImport)
	}

	keys := make([]string, 0, len(writes))
	err := l.Update(ctx, func(tx *Tx) error {
		for _, w := range writes {
			tx.PutRaw(w.key, w.raw)
			keys = append(keys, w.key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("data imported", slog.Any("collections", keys))
	return keys, nil
}

// Clear removes inventory, repairs, sales and dues. Users and settings stay.
func (l *Ledger) Clear(ctx context.Context) error {
	return l.Update(ctx, func(tx *Tx) error {
		for _, key := range []string{models.KeyInventory, models.KeyRepairs, models.KeySales, models.KeyDues} {
			tx.Delete(key)
		}
		return nil
	})
}

// Stats counts records in every collection.
func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	snap, err := l.Export(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Users:     len(snap.Users),
		Inventory: len(snap.Inventory),
		Repairs:   len(snap.Repairs),
		Sales:     len(snap.Sales),
	}
	for _, d := range snap.Dues {
		if d.Outstanding() {
			st.Dues++
		}
	}
	return st, nil
}
