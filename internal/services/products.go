package services

import (
	"context"
	"log/slog"

	"go-repair-pos/internal/inventory"
	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/reconcile"
)

// Categories offered by the inventory form.
var Categories = []string{
	"Mobile Phones",
	"Phone Cases",
	"Screen Protectors",
	"Chargers",
	"Cables",
	"Headphones",
	"Power Banks",
	"Memory Cards",
	"Speakers",
	"Accessories",
	"Repair Parts",
	"Tools",
}

const defaultMinStock = 5

type ProductInput struct {
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category" validate:"required"`
	CostPrice    float64 `json:"costPrice" validate:"gte=0"`
	SellingPrice float64 `json:"sellingPrice" validate:"gte=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	MinStock     *int    `json:"minStock" validate:"omitempty,gte=0"`
	Supplier     string  `json:"supplier"`
}

type ProductFilter struct {
	Search   string
	Category string
}

type Products struct {
	deps Deps
}

func NewProducts(d Deps) *Products {
	return &Products{deps: d.withDefaults()}
}

// List filters by name, category or supplier text and an exact category.
func (s *Products) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	all, err := s.deps.Ledger.Products(ctx)
	if err != nil {
		return nil, err
	}
	m := newMatcher(f.Search)
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if f.Category != "" && f.Category != "all" && p.Category != f.Category {
			continue
		}
		if m.match(p.Name, p.Category, p.Supplier) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Products) Get(ctx context.Context, id string) (models.Product, error) {
	all, err := s.deps.Ledger.Products(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := inventory.Find(all, id)
	if i < 0 {
		return models.Product{}, ErrNotFound
	}
	return all[i], nil
}

func (s *Products) LowStock(ctx context.Context) ([]models.Product, error) {
	all, err := s.deps.Ledger.Products(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.LowStock(all), nil
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Category = in.Category
	p.CostPrice = reconcile.Cents(in.CostPrice)
	p.SellingPrice = reconcile.Cents(in.SellingPrice)
	p.Stock = in.Stock
	p.Supplier = in.Supplier
	p.MinStock = defaultMinStock
	if in.MinStock != nil {
		p.MinStock = *in.MinStock
	}
}

func (s *Products) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	if err := validateInput(in); err != nil {
		return models.Product{}, err
	}
	p := models.Product{ID: s.deps.NewID(), CreatedAt: s.deps.Now()}
	in.apply(&p)

	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		all, err := tx.Products(ctx)
		if err != nil {
			return err
		}
		return tx.PutProducts(append(all, p))
	})
	if err != nil {
		return models.Product{}, err
	}
	s.deps.Log.Info("product created", slog.String("id", p.ID), slog.String("name", p.Name))
	return p, nil
}

func (s *Products) Update(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	if err := validateInput(in); err != nil {
		return models.Product{}, err
	}
	var out models.Product
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		all, err := tx.Products(ctx)
		if err != nil {
			return err
		}
		i := inventory.Find(all, id)
		if i < 0 {
			return ErrNotFound
		}
		in.apply(&all[i])
		out = all[i]
		return tx.PutProducts(all)
	})
	return out, err
}

func (s *Products) Delete(ctx context.Context, id string) error {
	return s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		all, err := tx.Products(ctx)
		if err != nil {
			return err
		}
		i := inventory.Find(all, id)
		if i < 0 {
			return ErrNotFound
		}
		return tx.PutProducts(append(all[:i], all[i+1:]...))
	})
}
