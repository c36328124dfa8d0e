package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go-repair-pos/internal/models"
)

func shelf() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "USB-C cable", SellingPrice: 199, Stock: 5, MinStock: 2},
		{ID: "p2", Name: "Tempered glass", SellingPrice: 99.5, Stock: 1, MinStock: 3},
		{ID: "p3", Name: "Charger", SellingPrice: 650, Stock: 0, MinStock: 1},
	}
}

func TestAdjustStockDecrementsSoldProducts(t *testing.T) {
	snapshot := shelf()
	out := AdjustStock(snapshot, []models.SaleItem{{ProductID: "p1", Quantity: 3}})

	require.Equal(t, 2, out[0].Stock)
	require.Equal(t, 1, out[1].Stock)
	require.Len(t, out, 3)
	require.Equal(t, 5, snapshot[0].Stock, "snapshot must not be mutated")
}

func TestAdjustStockCanGoNegative(t *testing.T) {
	out := AdjustStock(shelf(), []models.SaleItem{{ProductID: "p2", Quantity: 2}, {ProductID: "p3", Quantity: 1}})
	require.Equal(t, -1, out[1].Stock)
	require.Equal(t, -1, out[2].Stock)
	require.Len(t, out, 3)
}

func TestAdjustStockIgnoresUnknownLines(t *testing.T) {
	out := AdjustStock(shelf(), []models.SaleItem{{ProductID: "gone", Quantity: 4}})
	require.Equal(t, shelf(), out)
}

func TestLowStock(t *testing.T) {
	low := LowStock(shelf())
	require.Len(t, low, 2)
	require.Equal(t, "p2", low[0].ID)
	require.Equal(t, "p3", low[1].ID)
}

func TestCartClampsToStock(t *testing.T) {
	c := NewCart(shelf())
	require.NoError(t, c.Add("p2"))
	require.ErrorIs(t, c.Add("p2"), ErrOutOfStock)
	require.ErrorIs(t, c.Add("p3"), ErrOutOfStock)
	require.ErrorIs(t, c.Add("nope"), ErrUnknownProduct)

	got, err := c.SetQuantity("p1", 9)
	require.NoError(t, err)
	require.Equal(t, 5, got)

	items := c.Items()
	require.Len(t, items, 2)
	require.Equal(t, 995.0, items[1].Total)
	require.Equal(t, 1094.5, c.Subtotal())

	got, err = c.SetQuantity("p1", 0)
	require.NoError(t, err)
	require.Zero(t, got)
	require.Len(t, c.Items(), 1)

	_, err = c.SetQuantity("p3", 2)
	require.ErrorIs(t, err, ErrOutOfStock)
	require.Len(t, c.Items(), 1)
}

func TestCartPrice(t *testing.T) {
	c := NewCart(shelf())
	_, err := c.SetQuantity("p1", 2)
	require.NoError(t, err)

	pct := c.Price(10, models.DiscountPercentage)
	require.Equal(t, 398.0, pct.Subtotal)
	require.Equal(t, 39.8, pct.DiscountAmount)
	require.Equal(t, 358.2, pct.Total)

	fixed := c.Price(500, models.DiscountFixed)
	require.Equal(t, 398.0, fixed.DiscountAmount)
	require.Equal(t, 0.0, fixed.Total)

	none := c.Price(-20, "")
	require.Equal(t, models.DiscountPercentage, none.DiscountType)
	require.Equal(t, 398.0, none.Total)
}
