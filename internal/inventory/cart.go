package inventory

import (
	"errors"

	"go-repair-pos/internal/models"
	"go-repair-pos/internal/reconcile"
)

var (
	ErrUnknownProduct = errors.New("product not found")
	ErrOutOfStock     = errors.New("product out of stock")
)

// Cart builds sale lines against a stock snapshot. Quantities never exceed
// what the snapshot has on hand.
type Cart struct {
	stock map[string]models.Product
	lines []models.SaleItem
}

func NewCart(snapshot []models.Product) *Cart {
	stock := make(map[string]models.Product, len(snapshot))
	for _, p := range snapshot {
		stock[p.ID] = p
	}
	return &Cart{stock: stock}
}

func (c *Cart) index(id string) int {
	for i, l := range c.lines {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}

// Add puts one more unit of the product in the cart.
func (c *Cart) Add(productID string) error {
	p, ok := c.stock[productID]
	if !ok {
		return ErrUnknownProduct
	}
	if i := c.index(productID); i >= 0 {
		if c.lines[i].Quantity >= p.Stock {
			return ErrOutOfStock
		}
		c.setLine(i, c.lines[i].Quantity+1)
		return nil
	}
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	c.lines = append(c.lines, models.SaleItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.SellingPrice,
		Quantity:  1,
		Total:     p.SellingPrice,
	})
	return nil
}

// SetQuantity sets a line's quantity, clamped to available stock. A quantity
// of zero or less drops the line. It returns the quantity actually set.
func (c *Cart) SetQuantity(productID string, qty int) (int, error) {
	p, ok := c.stock[productID]
	if !ok {
		return 0, ErrUnknownProduct
	}
	if qty <= 0 {
		c.Remove(productID)
		return 0, nil
	}
	if qty > p.Stock {
		qty = p.Stock
	}
	if qty <= 0 {
		c.Remove(productID)
		return 0, ErrOutOfStock
	}
	i := c.index(productID)
	if i < 0 {
		c.lines = append(c.lines, models.SaleItem{ProductID: p.ID, Name: p.Name, Price: p.SellingPrice})
		i = len(c.lines) - 1
	}
	c.setLine(i, qty)
	return qty, nil
}

func (c *Cart) setLine(i, qty int) {
	c.lines[i].Quantity = qty
	c.lines[i].Total = reconcile.Mul(c.lines[i].Price, float64(qty))
}

func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []models.SaleItem {
	out := make([]models.SaleItem, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

func (c *Cart) Subtotal() float64 {
	totals := make([]float64, 0, len(c.lines))
	for _, l := range c.lines {
		totals = append(totals, l.Total)
	}
	return reconcile.Sum(totals...)
}

// Totals is the priced cart.
type Totals struct {
	Subtotal       float64
	Discount       float64
	DiscountType   models.DiscountType
	DiscountAmount float64
	Total          float64
}

// Price applies a discount to the cart. Percentage discounts are capped at
// 100 and fixed discounts at the subtotal; negative discounts count as none.
func (c *Cart) Price(discount float64, kind models.DiscountType) Totals {
	if kind != models.DiscountFixed {
		kind = models.DiscountPercentage
	}
	sub := c.Subtotal()
	d := reconcile.FloorZero(discount)

	var amount float64
	switch kind {
	case models.DiscountFixed:
		amount = reconcile.Min(d, sub)
	default:
		amount = reconcile.Percent(sub, reconcile.Min(d, 100))
	}
	return Totals{
		Subtotal:       sub,
		Discount:       discount,
		DiscountType:   kind,
		DiscountAmount: amount,
		Total:          reconcile.Sub(sub, amount),
	}
}
