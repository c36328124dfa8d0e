package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-repair-pos/internal/models"
	"go-repair-pos/internal/store"
)

// ErrOrphanDue is returned when a due is written without its sale or repair.
var ErrOrphanDue = errors.New("ledger: due has no matching origin record")

// Tx stages whole-collection writes. Reads through a Tx see its own staged
// writes. Ops are committed in the order they were first staged, so a
// primary record always precedes its due.
type Tx struct {
	ledger *Ledger
	staged map[string]store.Op
	order  []string
}

func (tx *Tx) get(ctx context.Context, key string) ([]byte, error) {
	if op, ok := tx.staged[key]; ok {
		if op.Delete {
			return nil, store.ErrNotFound
		}
		return op.Value, nil
	}
	return tx.ledger.store.Get(ctx, key)
}

func (tx *Tx) stage(op store.Op) {
	if _, ok := tx.staged[op.Key]; !ok {
		tx.order = append(tx.order, op.Key)
	}
	tx.staged[op.Key] = op
}

func (tx *Tx) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ledger: encode %s: %w", key, err)
	}
	tx.stage(store.Put(key, raw))
	return nil
}

// PutRaw stages an already-encoded document.
func (tx *Tx) PutRaw(key string, raw []byte) {
	tx.stage(store.Put(key, raw))
}

// Delete stages removal of a whole collection.
func (tx *Tx) Delete(key string) {
	tx.stage(store.Remove(key))
}

func (tx *Tx) commit(ctx context.Context) error {
	if len(tx.order) == 0 {
		return nil
	}
	ops := make([]store.Op, 0, len(tx.order))
	for _, k := range tx.order {
		ops = append(ops, tx.staged[k])
	}
	if err := tx.ledger.store.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("ledger: commit: %w", err)
	}
	return nil
}

func (tx *Tx) Products(ctx context.Context) ([]models.Product, error) {
	return decodeList[models.Product](ctx, tx.get, tx.ledger.log, models.KeyInventory)
}

func (tx *Tx) Sales(ctx context.Context) ([]models.Sale, error) {
	return decodeList[models.Sale](ctx, tx.get, tx.ledger.log, models.KeySales)
}

func (tx *Tx) Repairs(ctx context.Context) ([]models.Repair, error) {
	return decodeList[models.Repair](ctx, tx.get, tx.ledger.log, models.KeyRepairs)
}

func (tx *Tx) Dues(ctx context.Context) ([]models.Due, error) {
	return decodeList[models.Due](ctx, tx.get, tx.ledger.log, models.KeyDues)
}

func (tx *Tx) Users(ctx context.Context) ([]models.User, error) {
	return decodeList[models.User](ctx, tx.get, tx.ledger.log, models.KeyUsers)
}

func (tx *Tx) Settings(ctx context.Context) (models.Settings, error) {
	return decodeSettings(ctx, tx.get, tx.ledger.log)
}

func (tx *Tx) PutProducts(v []models.Product) error { return tx.put(models.KeyInventory, v) }
func (tx *Tx) PutSales(v []models.Sale) error       { return tx.put(models.KeySales, v) }
func (tx *Tx) PutRepairs(v []models.Repair) error   { return tx.put(models.KeyRepairs, v) }
func (tx *Tx) PutUsers(v []models.User) error       { return tx.put(models.KeyUsers, v) }
func (tx *Tx) PutSettings(v models.Settings) error  { return tx.put(models.KeySettings, v) }

// PutDues stages the dues collection. Dues listed in checked must point at a
// sale or repair visible to this transaction.
func (tx *Tx) PutDues(ctx context.Context, v []models.Due, checked ...models.Due) error {
	for _, d := range checked {
		if err := tx.verifyOrigin(ctx, d.Origin()); err != nil {
			return err
		}
	}
	return tx.put(models.KeyDues, v)
}

func (tx *Tx) verifyOrigin(ctx context.Context, ref models.OriginRef) error {
	switch ref.Kind {
	case models.DueFromSale:
		sales, err := tx.Sales(ctx)
		if err != nil {
			return err
		}
		for _, s := range sales {
			if s.ID == ref.ID {
				return nil
			}
		}
	case models.DueFromRepair:
		repairs, err := tx.Repairs(ctx)
		if err != nil {
			return err
		}
		for _, r := range repairs {
			if r.ID == ref.ID {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s %q", ErrOrphanDue, ref.Kind, ref.ID)
}
