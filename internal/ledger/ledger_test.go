package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-repair-pos/internal/models"
	"go-repair-pos/internal/store"
)

var created = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*Ledger, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return New(mem, slog.New(slog.NewTextHandler(io.Discard, nil))), mem
}

type failingStore struct{ *store.Memory }

func (failingStore) Apply(context.Context, ...store.Op) error { return errors.New("disk full") }

func TestLoadMissingAndCorruptCollections(t *testing.T) {
	l, mem := newLedger(t)
	ctx := context.Background()

	sales, err := l.Sales(ctx)
	require.NoError(t, err)
	require.Empty(t, sales)
	require.NotNil(t, sales)

	require.NoError(t, mem.Apply(ctx, store.Put(models.KeyDues, []byte(`{not json`))))
	dues, err := l.Dues(ctx)
	require.NoError(t, err)
	require.Empty(t, dues)

	require.NoError(t, mem.Apply(ctx, store.Put(models.KeySettings, []byte(`[]`))))
	settings, err := l.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DefaultSettings(), settings)
}

func TestUpdateCommitsAllOrNothing(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	err := l.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.PutSales([]models.Sale{{ID: "s1"}}))
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")
	sales, err := l.Sales(ctx)
	require.NoError(t, err)
	require.Empty(t, sales)

	err = l.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.PutSales([]models.Sale{{ID: "s1"}}))
		staged, err := tx.Sales(ctx)
		require.NoError(t, err)
		require.Len(t, staged, 1)
		return tx.PutDues(ctx, []models.Due{{ID: "s1", Type: models.DueFromSale}}, models.Due{ID: "s1", Type: models.DueFromSale})
	})
	require.NoError(t, err)
	dues, err := l.Dues(ctx)
	require.NoError(t, err)
	require.Len(t, dues, 1)
}

func TestUpdateSurfacesBackendFailure(t *testing.T) {
	l := New(failingStore{store.NewMemory()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := l.Update(context.Background(), func(tx *Tx) error {
		return tx.PutProducts([]models.Product{{ID: "p1"}})
	})
	require.ErrorContains(t, err, "disk full")
}

func TestPutDuesRejectsOrphans(t *testing.T) {
	l, _ := newLedger(t)
	orphan := models.Due{ID: "r9", Type: models.DueFromRepair}
	err := l.Update(context.Background(), func(tx *Tx) error {
		return tx.PutDues(context.Background(), []models.Due{orphan}, orphan)
	})
	require.ErrorIs(t, err, ErrOrphanDue)
}

func TestTxDeleteHidesCollection(t *testing.T) {
	l, mem := newLedger(t)
	ctx := context.Background()
	require.NoError(t, mem.Apply(ctx, store.Put(models.KeyInventory, []byte(`[{"id":"p1"}]`))))

	require.NoError(t, l.Update(ctx, func(tx *Tx) error {
		tx.Delete(models.KeyInventory)
		products, err := tx.Products(ctx)
		require.NoError(t, err)
		require.Empty(t, products)
		return nil
	}))
	_, err := mem.Get(ctx, models.KeyInventory)
	require.ErrorIs(t, err, store.ErrNotFound)
}
