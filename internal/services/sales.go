package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go-repair-pos/internal/inventory"
	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/reconcile"
)

type CartLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type CheckoutInput struct {
	CustomerName  string              `json:"customerName" validate:"required"`
	CustomerPhone string              `json:"customerPhone"`
	Items         []CartLine          `json:"items" validate:"required,min=1,dive"`
	Discount      float64             `json:"discount" validate:"gte=0"`
	DiscountType  models.DiscountType `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=cash card upi due"`
	// PaidAmount defaults to the bill total, or to zero for method "due".
	PaidAmount *float64 `json:"paidAmount" validate:"omitempty,gte=0"`
}

// LineAdjustment reports a cart line whose quantity was cut to the stock on hand.
type LineAdjustment struct {
	ProductID string `json:"productId"`
	Requested int    `json:"requested"`
	Sold      int    `json:"sold"`
}

type CheckoutResult struct {
	Sale        models.Sale      `json:"sale"`
	Due         *models.Due      `json:"due,omitempty"`
	Adjustments []LineAdjustment `json:"adjustments,omitempty"`
	Change      float64          `json:"change"`
}

// mergeLines folds repeated lines for the same product into one, keeping
// the order of first appearance.
func mergeLines(items []CartLine) []CartLine {
	out := make([]CartLine, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, line := range items {
		if i, ok := seen[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		seen[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}

type Sales struct {
	deps Deps
}

func NewSales(d Deps) *Sales {
	return &Sales{deps: d.withDefaults()}
}

// Checkout prices the cart against current stock, records the sale,
// decrements stock and raises a due for any unpaid balance, all in one commit.
func (s *Sales) Checkout(ctx context.Context, sess models.Session, in CheckoutInput) (CheckoutResult, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	if err := validateInput(in); err != nil {
		return CheckoutResult{}, err
	}

	var res CheckoutResult
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		snapshot, err := tx.Products(ctx)
		if err != nil {
			return err
		}

		cart := inventory.NewCart(snapshot)
		for _, line := range mergeLines(in.Items) {
			sold, err := cart.SetQuantity(line.ProductID, line.Quantity)
			if err != nil && !errors.Is(err, inventory.ErrOutOfStock) {
				return fmt.Errorf("%w: %s: %v", ErrValidation, line.ProductID, err)
			}
			if sold != line.Quantity {
				res.Adjustments = append(res.Adjustments, LineAdjustment{ProductID: line.ProductID, Requested: line.Quantity, Sold: sold})
			}
		}
		if cart.Empty() {
			return ErrEmptyCart
		}

		totals := cart.Price(in.Discount, in.DiscountType)
		paid := totals.Total
		if in.PaymentMethod == "due" {
			paid = 0
		}
		if in.PaidAmount != nil {
			paid = reconcile.Cents(*in.PaidAmount)
		}
		if paid > totals.Total {
			res.Change = reconcile.Sub(paid, totals.Total)
			paid = totals.Total
		}

		now := s.deps.Now()
		sale := models.Sale{
			ID:             s.deps.NewID(),
			BillNumber:     billNumber("SALE", now),
			CustomerName:   in.CustomerName,
			CustomerPhone:  in.CustomerPhone,
			Items:          cart.Items(),
			Subtotal:       totals.Subtotal,
			Discount:       totals.Discount,
			DiscountType:   totals.DiscountType,
			DiscountAmount: totals.DiscountAmount,
			Total:          totals.Total,
			PaymentMethod:  in.PaymentMethod,
			PaidAmount:     paid,
			DueAmount:      reconcile.Sub(totals.Total, paid),
			CreatedAt:      now,
		}

		sales, err := tx.Sales(ctx)
		if err != nil {
			return err
		}
		if err := tx.PutSales(append(sales, sale)); err != nil {
			return err
		}
		if err := tx.PutProducts(inventory.AdjustStock(snapshot, sale.Items)); err != nil {
			return err
		}

		res.Sale = sale
		res.Due = reconcile.NewSaleDue(sale, now)
		if res.Due == nil {
			return nil
		}
		dues, err := tx.Dues(ctx)
		if err != nil {
			return err
		}
		return tx.PutDues(ctx, append(dues, *res.Due), *res.Due)
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	s.deps.Metrics.SaleRecorded()
	if res.Due != nil {
		s.deps.Metrics.DueCreated(string(models.DueFromSale))
	}
	s.deps.Log.Info("sale recorded",
		slog.String("bill", res.Sale.BillNumber),
		slog.String("cashier", sess.Username),
		slog.Float64("total", res.Sale.Total),
		slog.Float64("due", res.Sale.DueAmount))
	return res, nil
}

// List returns sales newest first, filtered by customer or bill number.
func (s *Sales) List(ctx context.Context, search string) ([]models.Sale, error) {
	all, err := s.deps.Ledger.Sales(ctx)
	if err != nil {
		return nil, err
	}
	m := newMatcher(search)
	out := make([]models.Sale, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		sale := all[i]
		if m.match(sale.CustomerName, sale.CustomerPhone, sale.BillNumber) {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (s *Sales) Get(ctx context.Context, id string) (models.Sale, error) {
	all, err := s.deps.Ledger.Sales(ctx)
	if err != nil {
		return models.Sale{}, err
	}
	for _, sale := range all {
		if sale.ID == id {
			return sale, nil
		}
	}
	return models.Sale{}, ErrNotFound
}
