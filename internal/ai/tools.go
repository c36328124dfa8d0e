package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"

	"go-repair-pos/internal/reports"
	"go-repair-pos/internal/services"
)

// ErrUnknownTool is returned for a function name the model invented.
var ErrUnknownTool = errors.New("unknown tool")

// Tools are the shop functions the assistant may call.
type Tools struct {
	Products *services.Products
	Dues     *services.Dues
	Reports  *reports.Reports
}

func (t *Tools) Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "check_inventory",
			Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Price, Cost, or Stock.",
		},
		{
			Name:        "update_product_price",
			Description: "Update the selling price of a specific product using its ID",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeString, Description: "ID of the product"},
					"new_price":  {Type: genai.TypeNumber, Description: "New selling price"},
				},
				Required: []string{"product_id", "new_price"},
			},
		},
		{
			Name:        "get_sales_report",
			Description: "Get sales revenue, amount collected and order count for a date range.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD), inclusive"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
		{
			Name:        "list_outstanding_dues",
			Description: "List customers who still owe money, with the total outstanding.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"search": {Type: genai.TypeString, Description: "Optional customer name, phone or bill number"},
				},
			},
		},
		{
			Name:        "low_stock",
			Description: "List products at or below their minimum stock level.",
		},
	}
}

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", name)
	}
	return v, nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

// Call runs one tool and returns the payload sent back to the model.
func (t *Tools) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "check_inventory":
		products, err := t.Products.List(ctx, services.ProductFilter{})
		if err != nil {
			return nil, err
		}
		type simpleProduct struct {
			ID       string  `json:"id"`
			Name     string  `json:"name"`
			Category string  `json:"category"`
			Stock    int     `json:"stock"`
			Price    float64 `json:"price"`
			Cost     float64 `json:"cost"`
		}
		list := make([]simpleProduct, 0, len(products))
		for _, p := range products {
			list = append(list, simpleProduct{ID: p.ID, Name: p.Name, Category: p.Category, Stock: p.Stock, Price: p.SellingPrice, Cost: p.CostPrice})
		}
		s, err := encode(list)
		return map[string]any{"inventory": s}, err

	case "update_product_price":
		id, err := stringArg(args, "product_id")
		if err != nil {
			return nil, err
		}
		price, ok := args["new_price"].(float64)
		if !ok {
			return nil, errors.New(`argument "new_price" must be a number`)
		}
		p, err := t.Products.Get(ctx, id)
		if errors.Is(err, services.ErrNotFound) {
			return map[string]any{"status": "Product ID not found"}, nil
		}
		if err != nil {
			return nil, err
		}
		minStock := p.MinStock
		_, err = t.Products.Update(ctx, id, services.ProductInput{
			Name: p.Name, Category: p.Category, CostPrice: p.CostPrice, SellingPrice: price,
			Stock: p.Stock, MinStock: &minStock, Supplier: p.Supplier,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "Success", "new_price": price}, nil

	case "get_sales_report":
		startStr, err := stringArg(args, "start_date")
		if err != nil {
			return nil, err
		}
		endStr, err := stringArg(args, "end_date")
		if err != nil {
			return nil, err
		}
		start, err1 := time.Parse(time.DateOnly, startStr)
		end, err2 := time.Parse(time.DateOnly, endStr)
		if err1 != nil || err2 != nil {
			return map[string]any{"error": "Dates must be in YYYY-MM-DD format."}, nil
		}
		rep, err := t.Reports.SalesReport(ctx, reports.Range{From: start, To: end.AddDate(0, 0, 1)})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"revenue":     rep.TotalRevenue,
			"collected":   rep.Collected,
			"sales_count": rep.TotalOrders,
		}, nil

	case "list_outstanding_dues":
		search, _ := args["search"].(string)
		open, err := t.Dues.Outstanding(ctx, search)
		if err != nil {
			return nil, err
		}
		type simpleDue struct {
			Customer string  `json:"customer"`
			Phone    string  `json:"phone"`
			Bill     string  `json:"bill"`
			Owed     float64 `json:"owed"`
		}
		list := make([]simpleDue, 0, len(open.Dues))
		for _, d := range open.Dues {
			list = append(list, simpleDue{Customer: d.CustomerName, Phone: d.CustomerPhone, Bill: d.BillNumber, Owed: d.DueAmount})
		}
		s, err := encode(list)
		return map[string]any{"dues": s, "total": open.Total}, err

	case "low_stock":
		low, err := t.Products.LowStock(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(low))
		for _, p := range low {
			names = append(names, fmt.Sprintf("%s (%d left, min %d)", p.Name, p.Stock, p.MinStock))
		}
		return map[string]any{"items": names, "count": len(names)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}
