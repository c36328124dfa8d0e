package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-repair-pos/internal/models"
)

var at = time.Date(2026, 10, 18, 10, 30, 0, 0, time.UTC)

func openDue() models.Due {
	return models.Due{
		ID:             "s1",
		OriginalAmount: 100,
		PaidAmount:     40,
		DueAmount:      60,
		Type:           models.DueFromSale,
		Payments:       []models.Payment{{Date: at, Amount: 40, Method: "cash"}},
	}
}

func TestApplyDuePaymentPartial(t *testing.T) {
	due := openDue()
	out := ApplyDuePayment(&due, 25, "upi", at)

	require.True(t, out.Accepted())
	require.False(t, out.Clamped)
	require.Equal(t, 25.0, out.Applied)
	require.Equal(t, 65.0, due.PaidAmount)
	require.Equal(t, 35.0, due.DueAmount)
	require.Len(t, due.Payments, 2)
	require.Equal(t, models.Payment{Date: at, Amount: 25, Method: "upi"}, due.Payments[1])
	require.Empty(t, Check(due))
}

func TestApplyDuePaymentClampsOverpayment(t *testing.T) {
	due := openDue()
	out := ApplyDuePayment(&due, 500, "card", at)

	require.True(t, out.Accepted())
	require.True(t, out.Clamped)
	require.Equal(t, 60.0, out.Applied)
	require.Equal(t, 0.0, due.DueAmount)
	require.Equal(t, 100.0, due.PaidAmount)
	require.Equal(t, 60.0, due.Payments[1].Amount)
	require.False(t, due.Outstanding())
	require.Empty(t, Check(due))
}

func TestApplyDuePaymentRejects(t *testing.T) {
	cases := []struct {
		name   string
		due    models.Due
		amount float64
		err    error
	}{
		{"zero", openDue(), 0, ErrNonPositiveAmount},
		{"negative", openDue(), -10, ErrNonPositiveAmount},
		{"below a cent", openDue(), 0.004, ErrNonPositiveAmount},
		{"settled", models.Due{ID: "s2", OriginalAmount: 10, PaidAmount: 10}, 5, ErrSettled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.due
			before.Payments = append([]models.Payment(nil), tc.due.Payments...)
			out := ApplyDuePayment(&tc.due, tc.amount, "cash", at)
			require.ErrorIs(t, out.Err, tc.err)
			require.False(t, out.Accepted())
			require.Equal(t, before, tc.due)
		})
	}
}

func TestApplyDuePaymentKeepsCents(t *testing.T) {
	due := models.Due{ID: "r1", OriginalAmount: 0.3, DueAmount: 0.3}
	ApplyDuePayment(&due, 0.1, "cash", at)
	ApplyDuePayment(&due, 0.1, "cash", at)
	ApplyDuePayment(&due, 0.1, "cash", at)

	require.Equal(t, 0.0, due.DueAmount)
	require.Equal(t, 0.3, due.PaidAmount)
	require.Empty(t, Check(due))
}

func TestApplyDuePaymentRoundsToCents(t *testing.T) {
	due := models.Due{ID: "s4", OriginalAmount: 100, DueAmount: 100, Payments: []models.Payment{}}

	out := ApplyDuePayment(&due, 10.005, "cash", at)
	require.True(t, out.Accepted())
	require.Equal(t, 10.01, out.Applied)
	require.Equal(t, 10.01, due.Payments[0].Amount)

	ApplyDuePayment(&due, 33.333, "cash", at)
	require.Equal(t, 43.34, due.PaidAmount)
	require.Equal(t, 56.66, due.DueAmount)
	require.Empty(t, Check(due))

	repair := models.Repair{ID: "r3", AdvanceAmount: 0}
	EditEstimatedCost(&repair, nil, 49.999)
	require.Equal(t, 50.0, repair.EstimatedCost)
	require.Equal(t, 50.0, repair.DueAmount)
}

func TestPaymentsAlwaysSumToPaidAmount(t *testing.T) {
	due := models.Due{ID: "s3", OriginalAmount: 250, DueAmount: 250, Payments: []models.Payment{}}
	for _, amt := range []float64{10, 33.33, 0, 99.99, -5, 1000} {
		ApplyDuePayment(&due, amt, "cash", at)
		require.Empty(t, Check(due))
		require.GreaterOrEqual(t, due.DueAmount, 0.0)
	}
	require.Equal(t, 250.0, due.PaidAmount)
	require.Len(t, due.Payments, 4)
}

func TestEditEstimatedCost(t *testing.T) {
	repair := models.Repair{ID: "r1", EstimatedCost: 100, AdvanceAmount: 30, DueAmount: 70}
	due := models.Due{ID: "r1", OriginalAmount: 100, PaidAmount: 30, DueAmount: 70, Type: models.DueFromRepair}

	EditEstimatedCost(&repair, &due, 150)
	require.Equal(t, 150.0, repair.EstimatedCost)
	require.Equal(t, 120.0, repair.DueAmount)
	require.Equal(t, 150.0, due.OriginalAmount)
	require.Equal(t, 120.0, due.DueAmount)

	EditEstimatedCost(&repair, &due, 20)
	require.Equal(t, 0.0, repair.DueAmount)
	require.Equal(t, 0.0, due.DueAmount)
}

func TestEditEstimatedCostWithoutDue(t *testing.T) {
	repair := models.Repair{ID: "r2", EstimatedCost: 50, AdvanceAmount: 50}
	EditEstimatedCost(&repair, nil, 80)
	require.Equal(t, 30.0, repair.DueAmount)
}

func TestApplyRepairPayment(t *testing.T) {
	repair := models.Repair{EstimatedCost: 100, AdvanceAmount: 20, DueAmount: 80, PaymentMethod: "cash"}
	ApplyRepairPayment(&repair, 50, "card")
	require.Equal(t, 70.0, repair.AdvanceAmount)
	require.Equal(t, 30.0, repair.DueAmount)
	require.Equal(t, "card", repair.PaymentMethod)
}

func TestNewSaleDue(t *testing.T) {
	sale := models.Sale{ID: "s1", BillNumber: "SALE-1", CustomerName: "Asha", Total: 100, PaidAmount: 40, DueAmount: 60, PaymentMethod: "cash", CreatedAt: at}
	due := NewSaleDue(sale, at)
	require.NotNil(t, due)
	require.Equal(t, 100.0, due.OriginalAmount)
	require.Equal(t, 40.0, due.PaidAmount)
	require.Equal(t, 60.0, due.DueAmount)
	require.Equal(t, []models.Payment{{Date: at, Amount: 40, Method: "cash"}}, due.Payments)
	require.Equal(t, models.OriginRef{Kind: models.DueFromSale, ID: "s1"}, due.Origin())

	sale.PaidAmount, sale.DueAmount = 0, 100
	due = NewSaleDue(sale, at)
	require.NotNil(t, due)
	require.Empty(t, due.Payments)

	sale.PaidAmount, sale.DueAmount = 100, 0
	require.Nil(t, NewSaleDue(sale, at))
}

func TestNewRepairDue(t *testing.T) {
	repair := models.Repair{ID: "r1", BillNumber: "REP-1", EstimatedCost: 500, AdvanceAmount: 200, DueAmount: 300, CreatedAt: at}
	due := NewRepairDue(repair, at)
	require.NotNil(t, due)
	require.Equal(t, models.DueFromRepair, due.Type)
	require.Equal(t, "cash", due.Payments[0].Method)
	require.Empty(t, Check(*due))

	repair.DueAmount = 0
	require.Nil(t, NewRepairDue(repair, at))
}

func TestCheckReportsDrift(t *testing.T) {
	due := models.Due{ID: "d", OriginalAmount: 100, PaidAmount: 50, DueAmount: 60,
		Payments: []models.Payment{{Amount: 20}}}
	v := Check(due)
	require.Len(t, v, 2)
	require.Equal(t, "d", v[0].DueID)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "applied(10.00)", applied(10, 10).String())
	require.Equal(t, "applied(5.00 of 10.00)", applied(10, 5).String())
	require.Contains(t, rejected(-1, ErrNonPositiveAmount).String(), "rejected")
}
