// Package reports computes read-only views over the ledger: the dashboard
// tiles, the sales report and the stock valuation.
package reports

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"go-repair-pos/internal/inventory"
	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/reconcile"
)

type Reports struct {
	ledger *ledger.Ledger
	now    func() time.Time
}

func New(l *ledger.Ledger, now func() time.Time) *Reports {
	if now == nil {
		now = time.Now
	}
	return &Reports{ledger: l, now: now}
}

type collections struct {
	products []models.Product
	sales    []models.Sale
	repairs  []models.Repair
	dues     []models.Due
}

// load reads the four shop collections concurrently.
func (r *Reports) load(ctx context.Context) (collections, error) {
	var c collections
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.products, err = r.ledger.Products(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.sales, err = r.ledger.Sales(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.repairs, err = r.ledger.Repairs(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.dues, err = r.ledger.Dues(ctx)
		return err
	})
	return c, g.Wait()
}

// Dashboard is the landing page summary.
type Dashboard struct {
	TodayRepairs        int             `json:"todayRepairs"`
	TodaySales          int             `json:"todaySales"`
	TotalCustomers      int             `json:"totalCustomers"`
	TotalRevenue        float64         `json:"totalRevenue"`
	TotalDues           float64         `json:"totalDues"`
	PendingRepairs      int             `json:"pendingRepairs"`
	LowStockItems       int             `json:"lowStockItems"`
	TotalInventoryValue float64         `json:"totalInventoryValue"`
	RecentRepairs       []models.Repair `json:"recentRepairs"`
	RecentSales         []models.Sale   `json:"recentSales"`
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// customerKey identifies a customer by phone, falling back to name.
func customerKey(name, phone string) string {
	if phone != "" {
		return "p:" + phone
	}
	return "n:" + name
}

func (r *Reports) Dashboard(ctx context.Context) (Dashboard, error) {
	c, err := r.load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := r.now()
	var d Dashboard
	customers := make(map[string]struct{})

	paid := make([]float64, 0, len(c.sales))
	for _, s := range c.sales {
		paid = append(paid, s.PaidAmount)
		if sameDay(s.CreatedAt.In(now.Location()), now) {
			d.TodaySales++
		}
		customers[customerKey(s.CustomerName, s.CustomerPhone)] = struct{}{}
	}
	d.TotalRevenue = reconcile.Sum(paid...)

	for _, rp := range c.repairs {
		if sameDay(rp.CreatedAt.In(now.Location()), now) {
			d.TodayRepairs++
		}
		if rp.Status == models.RepairPending || rp.Status == models.RepairInProgress {
			d.PendingRepairs++
		}
		customers[customerKey(rp.CustomerName, rp.CustomerPhone)] = struct{}{}
	}
	d.TotalCustomers = len(customers)

	owed := make([]float64, 0, len(c.dues))
	for _, due := range c.dues {
		owed = append(owed, due.DueAmount)
	}
	d.TotalDues = reconcile.Sum(owed...)

	d.LowStockItems = len(inventory.LowStock(c.products))
	d.TotalInventoryValue = Valuate(c.products).GrandTotal

	d.RecentRepairs = lastN(c.repairs, 5)
	d.RecentSales = lastN(c.sales, 5)
	return d, nil
}

// lastN returns up to n trailing elements, newest first.
func lastN[T any](all []T, n int) []T {
	out := make([]T, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out
}

// Range limits a report to [From, To). Zero bounds are open.
type Range struct {
	From time.Time
	To   time.Time
}

func (rg Range) contains(t time.Time) bool {
	if !rg.From.IsZero() && t.Before(rg.From) {
		return false
	}
	if !rg.To.IsZero() && !t.Before(rg.To) {
		return false
	}
	return true
}

type TopSeller struct {
	ProductName string  `json:"product_name"`
	Sold        int     `json:"sold"`
	Revenue     float64 `json:"revenue"`
}

// SalesReport is the analytics payload for the reports screen.
type SalesReport struct {
	TotalRevenue float64       `json:"total_revenue"`
	Collected    float64       `json:"collected"`
	TotalOrders  int           `json:"total_orders"`
	TopSelling   []TopSeller   `json:"top_selling"`
	RecentSales  []models.Sale `json:"recent_sales"`
}

func (r *Reports) SalesReport(ctx context.Context, rg Range) (SalesReport, error) {
	sales, err := r.ledger.Sales(ctx)
	if err != nil {
		return SalesReport{}, err
	}

	var (
		rep       SalesReport
		totals    []float64
		collected []float64
		inRange   []models.Sale
	)
	sellers := make(map[string]*TopSeller)
	for _, s := range sales {
		if !rg.contains(s.CreatedAt) {
			continue
		}
		inRange = append(inRange, s)
		totals = append(totals, s.Total)
		collected = append(collected, s.PaidAmount)
		for _, it := range s.Items {
			ts, ok := sellers[it.Name]
			if !ok {
				ts = &TopSeller{ProductName: it.Name}
				sellers[it.Name] = ts
			}
			ts.Sold += it.Quantity
			ts.Revenue = reconcile.Add(ts.Revenue, it.Total)
		}
	}
	rep.TotalOrders = len(inRange)
	rep.TotalRevenue = reconcile.Sum(totals...)
	rep.Collected = reconcile.Sum(collected...)

	rep.TopSelling = make([]TopSeller, 0, len(sellers))
	for _, ts := range sellers {
		rep.TopSelling = append(rep.TopSelling, *ts)
	}
	sort.Slice(rep.TopSelling, func(i, j int) bool {
		a, b := rep.TopSelling[i], rep.TopSelling[j]
		if a.Sold != b.Sold {
			return a.Sold > b.Sold
		}
		return a.ProductName < b.ProductName
	})
	if len(rep.TopSelling) > 5 {
		rep.TopSelling = rep.TopSelling[:5]
	}
	rep.RecentSales = lastN(inRange, 10)
	return rep, nil
}

// ValuationItem is one product row of the stock valuation.
type ValuationItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	CostPrice float64 `json:"cost_price"`
	TotalCost float64 `json:"total_cost"`
}

// CategoryGroup is one category table of the valuation.
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
}

type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
}

// Valuate prices the stock on hand at cost, grouped by category. Negative
// stock counts as zero.
func Valuate(products []models.Product) Valuation {
	grouped := make(map[string]*CategoryGroup)
	var grand []float64
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		g, ok := grouped[cat]
		if !ok {
			g = &CategoryGroup{CategoryName: cat, Items: []ValuationItem{}}
			grouped[cat] = g
		}
		qty := max(p.Stock, 0)
		total := reconcile.Mul(p.CostPrice, float64(qty))
		g.Items = append(g.Items, ValuationItem{Name: p.Name, Quantity: qty, CostPrice: p.CostPrice, TotalCost: total})
		g.Subtotal = reconcile.Add(g.Subtotal, total)
		grand = append(grand, total)
	}

	v := Valuation{Categories: make([]CategoryGroup, 0, len(grouped)), GrandTotal: reconcile.Sum(grand...)}
	for _, g := range grouped {
		v.Categories = append(v.Categories, *g)
	}
	sort.Slice(v.Categories, func(i, j int) bool {
		return v.Categories[i].CategoryName < v.Categories[j].CategoryName
	})
	return v
}

func (r *Reports) Valuation(ctx context.Context) (Valuation, error) {
	products, err := r.ledger.Products(ctx)
	if err != nil {
		return Valuation{}, err
	}
	return Valuate(products), nil
}
