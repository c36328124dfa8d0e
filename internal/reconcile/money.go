package reconcile

import "github.com/shopspring/decimal"

// Amounts are stored as float64 but all arithmetic goes through decimal and
// is rounded to cents, so repeated partial payments never leave 0.0000001
// balances behind.

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Cents rounds an incoming amount to two places. Every amount entering the
// ledger passes through it once.
func Cents(v float64) float64 {
	return cents(dec(v))
}

// Add returns a+b rounded to cents.
func Add(a, b float64) float64 {
	return cents(dec(a).Add(dec(b)))
}

// Sub returns a-b rounded to cents.
func Sub(a, b float64) float64 {
	return cents(dec(a).Sub(dec(b)))
}

// Mul returns a*b rounded to cents.
func Mul(a, b float64) float64 {
	return cents(dec(a).Mul(dec(b)))
}

// Percent returns v*pct/100 rounded to cents.
func Percent(v, pct float64) float64 {
	return cents(dec(v).Mul(dec(pct)).Div(decimal.NewFromInt(100)))
}

// Min returns the smaller amount.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// FloorZero returns v, or 0 when v is negative.
func FloorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Sum adds a list of amounts.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(dec(v))
	}
	return cents(total)
}
