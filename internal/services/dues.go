package services

import (
	"context"
	"fmt"
	"log/slog"

	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/reconcile"
)

// Outstanding is the due list screen: open dues plus their total.
type Outstanding struct {
	Dues  []models.Due `json:"dues"`
	Total float64      `json:"total"`
}

type DueResult struct {
	Due     models.Due     `json:"due"`
	Repair  *models.Repair `json:"repair,omitempty"`
	Payment PaymentResult  `json:"payment"`
}

// AuditReport lists ledger records that break the due invariants.
type AuditReport struct {
	Violations []reconcile.Violation `json:"violations"`
	Orphans    []models.OriginRef    `json:"orphans"`
}

type Dues struct {
	deps Deps
}

func NewDues(d Deps) *Dues {
	return &Dues{deps: d.withDefaults()}
}

// Outstanding lists dues with a balance, matched on customer or bill. The
// total covers every open due regardless of the search.
func (s *Dues) Outstanding(ctx context.Context, search string) (Outstanding, error) {
	all, err := s.deps.Ledger.Dues(ctx)
	if err != nil {
		return Outstanding{}, err
	}
	m := newMatcher(search)
	out := Outstanding{Dues: []models.Due{}}
	balances := make([]float64, 0, len(all))
	for _, d := range all {
		balances = append(balances, d.DueAmount)
		if d.Outstanding() && m.match(d.CustomerName, d.CustomerPhone, d.BillNumber) {
			out.Dues = append(out.Dues, d)
		}
	}
	out.Total = reconcile.Sum(balances...)
	return out, nil
}

func (s *Dues) Get(ctx context.Context, id string) (models.Due, error) {
	all, err := s.deps.Ledger.Dues(ctx)
	if err != nil {
		return models.Due{}, err
	}
	i := findDue(all, id)
	if i < 0 {
		return models.Due{}, ErrNotFound
	}
	return all[i], nil
}

// Pay applies a payment to a due. A repair due carries the accepted amount
// over to its job card in the same commit; a sale keeps its original receipt
// figures.
func (s *Dues) Pay(ctx context.Context, id string, in PaymentInput) (DueResult, error) {
	if err := validateInput(in); err != nil {
		return DueResult{}, err
	}
	var res DueResult
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		dues, err := tx.Dues(ctx)
		if err != nil {
			return err
		}
		i := findDue(dues, id)
		if i < 0 {
			return ErrNotFound
		}

		out := reconcile.ApplyDuePayment(&dues[i], in.Amount, in.Method, s.deps.Now())
		if !out.Accepted() {
			s.deps.Metrics.PaymentRejected(out.Err.Error())
			return fmt.Errorf("%w: %w", ErrPaymentRejected, out.Err)
		}
		res = DueResult{Due: dues[i], Payment: *paymentResult(out)}

		if dues[i].Type == models.DueFromRepair {
			repairs, err := tx.Repairs(ctx)
			if err != nil {
				return err
			}
			if j := findRepair(repairs, id); j >= 0 {
				reconcile.ApplyRepairPayment(&repairs[j], out.Applied, in.Method)
				res.Repair = &repairs[j]
				if err := tx.PutRepairs(repairs); err != nil {
					return err
				}
			}
		}
		return tx.PutDues(ctx, dues)
	})
	if err != nil {
		return DueResult{}, err
	}
	s.deps.Metrics.PaymentApplied(string(res.Due.Type), res.Payment.Applied)
	s.deps.Log.Info("due payment",
		slog.String("bill", res.Due.BillNumber),
		slog.Float64("applied", res.Payment.Applied),
		slog.Float64("remaining", res.Due.DueAmount))
	return res, nil
}

// Audit checks every due's arithmetic and that its origin record exists.
func (s *Dues) Audit(ctx context.Context) (AuditReport, error) {
	dues, err := s.deps.Ledger.Dues(ctx)
	if err != nil {
		return AuditReport{}, err
	}
	sales, err := s.deps.Ledger.Sales(ctx)
	if err != nil {
		return AuditReport{}, err
	}
	repairs, err := s.deps.Ledger.Repairs(ctx)
	if err != nil {
		return AuditReport{}, err
	}

	known := make(map[models.OriginRef]bool, len(sales)+len(repairs))
	for _, sale := range sales {
		known[models.OriginRef{Kind: models.DueFromSale, ID: sale.ID}] = true
	}
	for _, r := range repairs {
		known[models.OriginRef{Kind: models.DueFromRepair, ID: r.ID}] = true
	}

	rep := AuditReport{Violations: []reconcile.Violation{}, Orphans: []models.OriginRef{}}
	for _, d := range dues {
		rep.Violations = append(rep.Violations, reconcile.Check(d)...)
		if !known[d.Origin()] {
			rep.Orphans = append(rep.Orphans, d.Origin())
		}
	}
	return rep, nil
}
