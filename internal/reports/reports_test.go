package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/store"
)

var now = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func seed(t *testing.T) *Reports {
	t.Helper()
	ctx := context.Background()
	l := ledger.New(store.NewMemory(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	yesterday := now.Add(-24 * time.Hour)

	require.NoError(t, l.Update(ctx, func(tx *ledger.Tx) error {
		if err := tx.PutProducts([]models.Product{
			{ID: "p1", Name: "Cable", Category: "Cables", CostPrice: 50, Stock: 10, MinStock: 5},
			{ID: "p2", Name: "Case", Category: "Phone Cases", CostPrice: 80.5, Stock: 2, MinStock: 5},
			{ID: "p3", Name: "Glass", CostPrice: 10, Stock: -3, MinStock: 5},
		}); err != nil {
			return err
		}
		if err := tx.PutSales([]models.Sale{
			{ID: "s1", CustomerName: "Asha", CustomerPhone: "1", Total: 300, PaidAmount: 300, CreatedAt: yesterday,
				Items: []models.SaleItem{{Name: "Cable", Quantity: 3, Total: 300}}},
			{ID: "s2", CustomerName: "Ravi", Total: 500.25, PaidAmount: 200.1, DueAmount: 300.15, CreatedAt: now,
				Items: []models.SaleItem{{Name: "Case", Quantity: 1, Total: 400.25}, {Name: "Cable", Quantity: 1, Total: 100}}},
		}); err != nil {
			return err
		}
		if err := tx.PutRepairs([]models.Repair{
			{ID: "r1", CustomerName: "Asha", CustomerPhone: "1", Status: models.RepairPending, CreatedAt: now},
			{ID: "r2", CustomerName: "Omar", Status: models.RepairDelivered, CreatedAt: yesterday},
			{ID: "r3", CustomerName: "Omar", Status: models.RepairInProgress, CreatedAt: yesterday},
		}); err != nil {
			return err
		}
		return tx.PutDues(ctx, []models.Due{
			{ID: "s2", Type: models.DueFromSale, DueAmount: 300.15},
			{ID: "r1", Type: models.DueFromRepair, DueAmount: 0},
		})
	}))
	return New(l, func() time.Time { return now })
}

func TestDashboard(t *testing.T) {
	d, err := seed(t).Dashboard(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, d.TodaySales)
	require.Equal(t, 1, d.TodayRepairs)
	require.Equal(t, 3, d.TotalCustomers)
	require.Equal(t, 500.1, d.TotalRevenue)
	require.Equal(t, 300.15, d.TotalDues)
	require.Equal(t, 2, d.PendingRepairs)
	require.Equal(t, 2, d.LowStockItems)
	require.Equal(t, 661.0, d.TotalInventoryValue)
	require.Equal(t, "r3", d.RecentRepairs[0].ID)
	require.Equal(t, "s2", d.RecentSales[0].ID)
}

func TestSalesReport(t *testing.T) {
	r := seed(t)
	ctx := context.Background()

	rep, err := r.SalesReport(ctx, Range{})
	require.NoError(t, err)
	require.Equal(t, 2, rep.TotalOrders)
	require.Equal(t, 800.25, rep.TotalRevenue)
	require.Equal(t, 500.1, rep.Collected)
	require.Equal(t, []TopSeller{
		{ProductName: "Cable", Sold: 4, Revenue: 400},
		{ProductName: "Case", Sold: 1, Revenue: 400.25},
	}, rep.TopSelling)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rep, err = r.SalesReport(ctx, Range{From: today, To: today.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Equal(t, 1, rep.TotalOrders)
	require.Equal(t, "s2", rep.RecentSales[0].ID)
}

func TestValuation(t *testing.T) {
	v, err := seed(t).Valuation(context.Background())
	require.NoError(t, err)

	require.Equal(t, 661.0, v.GrandTotal)
	names := make([]string, 0, len(v.Categories))
	for _, c := range v.Categories {
		names = append(names, c.CategoryName)
	}
	require.Equal(t, []string{"Cables", "Phone Cases", "Uncategorized"}, names)
	require.Equal(t, 161.0, v.Categories[1].Subtotal)
	require.Zero(t, v.Categories[2].Items[0].Quantity)
}
