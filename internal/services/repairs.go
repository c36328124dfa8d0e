package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/reconcile"
)

type RepairInput struct {
	CustomerName  string  `json:"customerName" validate:"required"`
	CustomerPhone string  `json:"customerPhone"`
	DeviceType    string  `json:"deviceType" validate:"required"`
	DeviceModel   string  `json:"deviceModel"`
	Issue         string  `json:"issue" validate:"required"`
	EstimatedCost float64 `json:"estimatedCost" validate:"gte=0"`
	AdvanceAmount float64 `json:"advanceAmount" validate:"gte=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"omitempty,oneof=cash card upi"`
	Notes         string  `json:"notes"`
}

// RepairDetails is the editable part of a job card. Money moves only through
// RecordPayment and EditCost.
type RepairDetails struct {
	CustomerName  string              `json:"customerName" validate:"required"`
	CustomerPhone string              `json:"customerPhone"`
	DeviceType    string              `json:"deviceType" validate:"required"`
	DeviceModel   string              `json:"deviceModel"`
	Issue         string              `json:"issue" validate:"required"`
	Notes         string              `json:"notes"`
	Status        models.RepairStatus `json:"status" validate:"omitempty,oneof=pending in-progress completed delivered"`
}

type PaymentInput struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method" validate:"required,oneof=cash card upi"`
}

type RepairFilter struct {
	Search string
	Status models.RepairStatus
}

type RepairResult struct {
	Repair models.Repair  `json:"repair"`
	Due    *models.Due    `json:"due,omitempty"`
	Result *PaymentResult `json:"payment,omitempty"`
}

// PaymentResult is the reconciler outcome in API form.
type PaymentResult struct {
	Requested float64 `json:"requested"`
	Applied   float64 `json:"applied"`
	Clamped   bool    `json:"clamped"`
}

func paymentResult(o reconcile.Outcome) *PaymentResult {
	return &PaymentResult{Requested: o.Requested, Applied: o.Applied, Clamped: o.Clamped}
}

type Repairs struct {
	deps Deps
}

func NewRepairs(d Deps) *Repairs {
	return &Repairs{deps: d.withDefaults()}
}

func findRepair(all []models.Repair, id string) int {
	for i, r := range all {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func findDue(all []models.Due, id string) int {
	for i, d := range all {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Create opens a job card and raises a due when the advance does not cover
// the estimate.
func (s *Repairs) Create(ctx context.Context, in RepairInput) (RepairResult, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.EstimatedCost = reconcile.Cents(in.EstimatedCost)
	in.AdvanceAmount = reconcile.Cents(in.AdvanceAmount)
	if err := validateInput(in); err != nil {
		return RepairResult{}, err
	}

	now := s.deps.Now()
	repair := models.Repair{
		ID:            s.deps.NewID(),
		BillNumber:    billNumber("REP", now),
		CustomerName:  in.CustomerName,
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		DeviceType:    in.DeviceType,
		DeviceModel:   in.DeviceModel,
		Issue:         in.Issue,
		EstimatedCost: in.EstimatedCost,
		AdvanceAmount: in.AdvanceAmount,
		DueAmount:     reconcile.FloorZero(reconcile.Sub(in.EstimatedCost, in.AdvanceAmount)),
		Status:        models.RepairPending,
		Notes:         in.Notes,
		CreatedAt:     now,
	}
	if in.AdvanceAmount > 0 {
		repair.PaymentMethod = in.PaymentMethod
		if repair.PaymentMethod == "" {
			repair.PaymentMethod = "cash"
		}
	}
	due := reconcile.NewRepairDue(repair, now)

	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		repairs, err := tx.Repairs(ctx)
		if err != nil {
			return err
		}
		if err := tx.PutRepairs(append(repairs, repair)); err != nil {
			return err
		}
		if due == nil {
			return nil
		}
		dues, err := tx.Dues(ctx)
		if err != nil {
			return err
		}
		return tx.PutDues(ctx, append(dues, *due), *due)
	})
	if err != nil {
		return RepairResult{}, err
	}
	if due != nil {
		s.deps.Metrics.DueCreated(string(models.DueFromRepair))
	}
	s.deps.Log.Info("repair created", slog.String("bill", repair.BillNumber), slog.Float64("due", repair.DueAmount))
	return RepairResult{Repair: repair, Due: due}, nil
}

func (s *Repairs) List(ctx context.Context, f RepairFilter) ([]models.Repair, error) {
	all, err := s.deps.Ledger.Repairs(ctx)
	if err != nil {
		return nil, err
	}
	m := newMatcher(f.Search)
	out := make([]models.Repair, 0, len(all))
	for _, r := range all {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if m.match(r.CustomerName, r.CustomerPhone, r.DeviceType, r.DeviceModel, r.BillNumber) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Repairs) Get(ctx context.Context, id string) (models.Repair, error) {
	all, err := s.deps.Ledger.Repairs(ctx)
	if err != nil {
		return models.Repair{}, err
	}
	i := findRepair(all, id)
	if i < 0 {
		return models.Repair{}, ErrNotFound
	}
	return all[i], nil
}

// Update edits the job card details. It never creates or touches a due.
func (s *Repairs) Update(ctx context.Context, id string, in RepairDetails) (models.Repair, error) {
	if err := validateInput(in); err != nil {
		return models.Repair{}, err
	}
	var out models.Repair
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		all, err := tx.Repairs(ctx)
		if err != nil {
			return err
		}
		i := findRepair(all, id)
		if i < 0 {
			return ErrNotFound
		}
		r := &all[i]
		r.CustomerName = strings.TrimSpace(in.CustomerName)
		r.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
		r.DeviceType = in.DeviceType
		r.DeviceModel = in.DeviceModel
		r.Issue = in.Issue
		r.Notes = in.Notes
		if in.Status != "" {
			r.Status = in.Status
		}
		out = *r
		return tx.PutRepairs(all)
	})
	return out, err
}

func (s *Repairs) SetStatus(ctx context.Context, id string, status models.RepairStatus) (models.Repair, error) {
	if !status.Valid() {
		return models.Repair{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	var out models.Repair
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		all, err := tx.Repairs(ctx)
		if err != nil {
			return err
		}
		i := findRepair(all, id)
		if i < 0 {
			return ErrNotFound
		}
		all[i].Status = status
		out = all[i]
		return tx.PutRepairs(all)
	})
	return out, err
}

// RecordPayment takes a payment at the repair counter. The linked due decides
// how much is accepted; the repair then mirrors the accepted amount. Both
// records are committed together.
func (s *Repairs) RecordPayment(ctx context.Context, id string, in PaymentInput) (RepairResult, error) {
	if err := validateInput(in); err != nil {
		return RepairResult{}, err
	}
	var res RepairResult
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		repairs, err := tx.Repairs(ctx)
		if err != nil {
			return err
		}
		i := findRepair(repairs, id)
		if i < 0 {
			return ErrNotFound
		}
		dues, err := tx.Dues(ctx)
		if err != nil {
			return err
		}

		var out reconcile.Outcome
		j := findDue(dues, id)
		if j >= 0 {
			out = reconcile.ApplyDuePayment(&dues[j], in.Amount, in.Method, s.deps.Now())
		} else {
			// No due was raised for this job; settle against the repair's own balance.
			shadow := models.Due{DueAmount: repairs[i].DueAmount}
			out = reconcile.ApplyDuePayment(&shadow, in.Amount, in.Method, s.deps.Now())
		}
		if !out.Accepted() {
			s.deps.Metrics.PaymentRejected(out.Err.Error())
			return fmt.Errorf("%w: %w", ErrPaymentRejected, out.Err)
		}

		reconcile.ApplyRepairPayment(&repairs[i], out.Applied, in.Method)
		if err := tx.PutRepairs(repairs); err != nil {
			return err
		}
		res = RepairResult{Repair: repairs[i], Result: paymentResult(out)}
		if j < 0 {
			return nil
		}
		res.Due = &dues[j]
		return tx.PutDues(ctx, dues)
	})
	if err != nil {
		return RepairResult{}, err
	}
	s.deps.Metrics.PaymentApplied(string(models.DueFromRepair), res.Result.Applied)
	s.deps.Log.Info("repair payment", slog.String("bill", res.Repair.BillNumber), slog.Float64("applied", res.Result.Applied))
	return res, nil
}

// EditCost re-prices a job and its due, if one exists.
func (s *Repairs) EditCost(ctx context.Context, id string, newCost float64) (RepairResult, error) {
	newCost = reconcile.Cents(newCost)
	if newCost < 0 {
		return RepairResult{}, fmt.Errorf("%w: estimated cost cannot be negative", ErrValidation)
	}
	var res RepairResult
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		repairs, err := tx.Repairs(ctx)
		if err != nil {
			return err
		}
		i := findRepair(repairs, id)
		if i < 0 {
			return ErrNotFound
		}
		dues, err := tx.Dues(ctx)
		if err != nil {
			return err
		}

		var due *models.Due
		if j := findDue(dues, id); j >= 0 {
			due = &dues[j]
		}
		reconcile.EditEstimatedCost(&repairs[i], due, newCost)
		if err := tx.PutRepairs(repairs); err != nil {
			return err
		}
		res = RepairResult{Repair: repairs[i], Due: due}
		if due == nil {
			return nil
		}
		return tx.PutDues(ctx, dues)
	})
	return res, err
}
