package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/reports"
	"go-repair-pos/internal/services"
	"go-repair-pos/internal/store"
)

var day = time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC)

func newTools(t *testing.T) *Tools {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.New(store.NewMemory(), log)
	require.NoError(t, l.Update(ctx, func(tx *ledger.Tx) error {
		if err := tx.PutProducts([]models.Product{
			{ID: "p1", Name: "Charger", Category: "Chargers", SellingPrice: 450, CostPrice: 300, Stock: 2, MinStock: 5},
			{ID: "p2", Name: "Cable", Category: "Cables", SellingPrice: 150, CostPrice: 60, Stock: 30, MinStock: 5},
		}); err != nil {
			return err
		}
		if err := tx.PutSales([]models.Sale{
			{ID: "s1", BillNumber: "SALE-1", CustomerName: "Asha", Total: 900, PaidAmount: 600, DueAmount: 300, CreatedAt: day},
		}); err != nil {
			return err
		}
		return tx.PutDues(ctx, []models.Due{
			{ID: "s1", Type: models.DueFromSale, BillNumber: "SALE-1", CustomerName: "Asha", OriginalAmount: 900, PaidAmount: 600, DueAmount: 300},
		})
	}))

	d := services.Deps{Ledger: l, Log: log, Now: func() time.Time { return day }}
	return &Tools{
		Products: services.NewProducts(d),
		Dues:     services.NewDues(d),
		Reports:  reports.New(l, func() time.Time { return day }),
	}
}

func TestDeclarationsMatchDispatch(t *testing.T) {
	tools := newTools(t)
	for _, decl := range tools.Declarations() {
		_, err := tools.Call(context.Background(), decl.Name, map[string]any{
			"product_id": "p1", "new_price": 500.0, "start_date": "2026-10-18", "end_date": "2026-10-18",
		})
		require.NoError(t, err, decl.Name)
	}
	_, err := tools.Call(context.Background(), "drop_tables", nil)
	require.ErrorIs(t, err, ErrUnknownTool)
}

func TestCheckInventory(t *testing.T) {
	out, err := newTools(t).Call(context.Background(), "check_inventory", nil)
	require.NoError(t, err)

	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out["inventory"].(string)), &list))
	require.Len(t, list, 2)
	require.Equal(t, "Charger", list[0]["name"])
	require.Equal(t, 450.0, list[0]["price"])
}

func TestUpdateProductPrice(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	out, err := tools.Call(ctx, "update_product_price", map[string]any{"product_id": "p2", "new_price": 175.0})
	require.NoError(t, err)
	require.Equal(t, "Success", out["status"])
	p, err := tools.Products.Get(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, 175.0, p.SellingPrice)
	require.Equal(t, 30, p.Stock)

	out, err = tools.Call(ctx, "update_product_price", map[string]any{"product_id": "nope", "new_price": 1.0})
	require.NoError(t, err)
	require.Equal(t, "Product ID not found", out["status"])

	_, err = tools.Call(ctx, "update_product_price", map[string]any{"product_id": 7.0, "new_price": 1.0})
	require.Error(t, err)
}

func TestSalesReportTool(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	out, err := tools.Call(ctx, "get_sales_report", map[string]any{"start_date": "2026-10-18", "end_date": "2026-10-18"})
	require.NoError(t, err)
	require.Equal(t, 900.0, out["revenue"])
	require.Equal(t, 600.0, out["collected"])
	require.Equal(t, 1, out["sales_count"])

	out, err = tools.Call(ctx, "get_sales_report", map[string]any{"start_date": "2026-10-19", "end_date": "2026-10-20"})
	require.NoError(t, err)
	require.Equal(t, 0, out["sales_count"])

	out, err = tools.Call(ctx, "get_sales_report", map[string]any{"start_date": "18/10/2026", "end_date": "2026-10-20"})
	require.NoError(t, err)
	require.Contains(t, out, "error")
}

func TestDuesAndLowStockTools(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	out, err := tools.Call(ctx, "list_outstanding_dues", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, 300.0, out["total"])
	require.Contains(t, out["dues"], "SALE-1")

	out, err = tools.Call(ctx, "low_stock", nil)
	require.NoError(t, err)
	require.Equal(t, 1, out["count"])
	require.Equal(t, []string{"Charger (2 left, min 5)"}, out["items"])
}

func TestAgentWithoutKey(t *testing.T) {
	_, err := NewAgent("", "gemini-2.5-flash", newTools(t), nil).Run(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestResponseParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{
			genai.FunctionCall{Name: "low_stock"},
			genai.Text("Two items need reordering."),
		}},
	}}}
	require.Len(t, functionCalls(resp), 1)
	require.Equal(t, "Two items need reordering.", printResponse(resp))
	require.Equal(t, "I completed the action.", printResponse(&genai.GenerateContentResponse{}))
}
