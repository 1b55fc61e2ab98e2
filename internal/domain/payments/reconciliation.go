package payments

import (
	"github.com/shopspring/decimal"
)

// Reconciliation compares an order's total against its non-voided payments.
// It is a pure value computed from the ledger, never stored.
type Reconciliation struct {
	OrderTotal decimal.Decimal
	PaidTotal  decimal.Decimal
}

// Reconcile sums the non-voided payments against the order total
func Reconcile(orderTotal decimal.Decimal, ledger []*Payment) Reconciliation {
	paid := decimal.Zero
	for _, p := range ledger {
		if p.Status != PaymentStatusVoided {
			paid = paid.Add(p.Amount)
		}
	}
	return Reconciliation{OrderTotal: orderTotal, PaidTotal: paid}
}

// IsFullyPaid reports whether the paid total covers the order total.
// Exact decimal comparison, no tolerance beyond the cent.
func (r Reconciliation) IsFullyPaid() bool {
	return r.PaidTotal.GreaterThanOrEqual(r.OrderTotal)
}

// IsOverpaid flags paid totals above the order total. Overpayment is
// accepted (tips, rounding) and only surfaced to the caller.
func (r Reconciliation) IsOverpaid() bool {
	return r.PaidTotal.GreaterThan(r.OrderTotal)
}

// Balance returns the amount still owed; zero when fully paid
func (r Reconciliation) Balance() decimal.Decimal {
	balance := r.OrderTotal.Sub(r.PaidTotal)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// Change returns the overpaid amount; zero when not overpaid
func (r Reconciliation) Change() decimal.Decimal {
	change := r.PaidTotal.Sub(r.OrderTotal)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}
