// Package inventory covers stock movement at checkout and the cart that
// feeds it.
package inventory

import "go-repair-pos/internal/models"

// AdjustStock returns a copy of snapshot with each sold line's quantity
// subtracted from the matching product. Products are never removed and stock
// is not checked here; the cart already clamps to what was on hand.
func AdjustStock(snapshot []models.Product, items []models.SaleItem) []models.Product {
	sold := make(map[string]int, len(items))
	for _, it := range items {
		sold[it.ProductID] += it.Quantity
	}

	out := make([]models.Product, len(snapshot))
	for i, p := range snapshot {
		if q, ok := sold[p.ID]; ok {
			p.Stock -= q
		}
		out[i] = p
	}
	return out
}

// LowStock lists products at or below their minimum stock.
func LowStock(products []models.Product) []models.Product {
	var out []models.Product
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the index of the product with id, or -1.
func Find(products []models.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
