// Package reconcile holds the arithmetic that keeps sales, repairs and their
// dues consistent: applying payments, re-pricing repairs and raising dues.
// Nothing here touches storage; callers load, mutate and commit.
package reconcile

import (
	"errors"
	"fmt"
	"time"

	"go-repair-pos/internal/models"
)

var (
	// ErrNonPositiveAmount rejects zero and negative payments.
	ErrNonPositiveAmount = errors.New("payment amount must be positive")
	// ErrSettled rejects payments against a due with nothing outstanding.
	ErrSettled = errors.New("due is already settled")
)

// Outcome reports what a payment request actually did.
type Outcome struct {
	Requested float64
	Applied   float64
	Clamped   bool
	Err       error
}

func applied(requested, amount float64) Outcome {
	return Outcome{Requested: requested, Applied: amount, Clamped: amount < requested}
}

func rejected(requested float64, err error) Outcome {
	return Outcome{Requested: requested, Err: err}
}

// Accepted reports whether any money was applied.
func (o Outcome) Accepted() bool {
	return o.Err == nil
}

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("rejected(%v)", o.Err)
	case o.Clamped:
		return fmt.Sprintf("applied(%.2f of %.2f)", o.Applied, o.Requested)
	default:
		return fmt.Sprintf("applied(%.2f)", o.Applied)
	}
}

// ApplyDuePayment applies min(amount, due.DueAmount) to due and appends the
// applied amount to its payment history. The amount is rounded to cents
// first; anything that rounds to zero is rejected. The due is left untouched
// when the payment is rejected.
func ApplyDuePayment(due *models.Due, amount float64, method string, at time.Time) Outcome {
	amount = Cents(amount)
	if amount <= 0 {
		return rejected(amount, ErrNonPositiveAmount)
	}
	if due.DueAmount <= 0 {
		return rejected(amount, ErrSettled)
	}

	pay := Min(amount, due.DueAmount)
	due.PaidAmount = Add(due.PaidAmount, pay)
	due.DueAmount = Sub(due.DueAmount, pay)
	due.Payments = append(due.Payments, models.Payment{Date: at, Amount: pay, Method: method})
	return applied(amount, pay)
}

// ApplyRepairPayment mirrors an accepted due payment onto the repair job.
func ApplyRepairPayment(repair *models.Repair, amount float64, method string) {
	repair.AdvanceAmount = Add(repair.AdvanceAmount, amount)
	repair.DueAmount = FloorZero(Sub(repair.DueAmount, amount))
	repair.PaymentMethod = method
}

// EditEstimatedCost re-prices a repair and, when present, its due.
func EditEstimatedCost(repair *models.Repair, due *models.Due, newCost float64) {
	newCost = Cents(newCost)
	repair.EstimatedCost = newCost
	repair.DueAmount = FloorZero(Sub(newCost, repair.AdvanceAmount))

	if due == nil {
		return
	}
	due.OriginalAmount = newCost
	due.DueAmount = FloorZero(Sub(newCost, due.PaidAmount))
}

// NewSaleDue raises a due for a freshly created sale, or returns nil when the
// sale was paid in full.
func NewSaleDue(sale models.Sale, at time.Time) *models.Due {
	if sale.DueAmount <= 0 {
		return nil
	}
	due := &models.Due{
		ID:             sale.ID,
		CustomerName:   sale.CustomerName,
		CustomerPhone:  sale.CustomerPhone,
		OriginalAmount: sale.Total,
		PaidAmount:     sale.PaidAmount,
		DueAmount:      sale.DueAmount,
		Type:           models.DueFromSale,
		BillNumber:     sale.BillNumber,
		CreatedAt:      sale.CreatedAt,
		Payments:       []models.Payment{},
	}
	if sale.PaidAmount > 0 {
		due.Payments = append(due.Payments, models.Payment{Date: at, Amount: sale.PaidAmount, Method: sale.PaymentMethod})
	}
	return due
}

// NewRepairDue raises a due for a freshly created repair job, or returns nil
// when nothing is owed.
func NewRepairDue(repair models.Repair, at time.Time) *models.Due {
	if repair.DueAmount <= 0 {
		return nil
	}
	due := &models.Due{
		ID:             repair.ID,
		CustomerName:   repair.CustomerName,
		CustomerPhone:  repair.CustomerPhone,
		OriginalAmount: repair.EstimatedCost,
		PaidAmount:     repair.AdvanceAmount,
		DueAmount:      repair.DueAmount,
		Type:           models.DueFromRepair,
		BillNumber:     repair.BillNumber,
		CreatedAt:      repair.CreatedAt,
		Payments:       []models.Payment{},
	}
	if repair.AdvanceAmount > 0 {
		method := repair.PaymentMethod
		if method == "" {
			method = "cash"
		}
		due.Payments = append(due.Payments, models.Payment{Date: at, Amount: repair.AdvanceAmount, Method: method})
	}
	return due
}

// Violation describes one broken due invariant.
type Violation struct {
	DueID  string `json:"dueId"`
	Reason string `json:"reason"`
}

// Check verifies that dueAmount == originalAmount - paidAmount, dueAmount >= 0
// and that the payment history adds up to paidAmount.
func Check(due models.Due) []Violation {
	var out []Violation
	if due.DueAmount < 0 {
		out = append(out, Violation{DueID: due.ID, Reason: fmt.Sprintf("negative due amount %.2f", due.DueAmount)})
	}
	if want := FloorZero(Sub(due.OriginalAmount, due.PaidAmount)); want != due.DueAmount {
		out = append(out, Violation{DueID: due.ID, Reason: fmt.Sprintf("due amount %.2f, expected %.2f", due.DueAmount, want)})
	}
	paid := make([]float64, 0, len(due.Payments))
	for _, p := range due.Payments {
		paid = append(paid, p.Amount)
	}
	if got := Sum(paid...); got != due.PaidAmount {
		out = append(out, Violation{DueID: due.ID, Reason: fmt.Sprintf("payments sum to %.2f, paid amount is %.2f", got, due.PaidAmount)})
	}
	return out
}
