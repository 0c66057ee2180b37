package order

import (
	"github.com/shopspring/decimal"

	"github.com/pocompose/backend-go/internal/domain"
)

// Aggregate folds the line collection into per-currency totals and the
// grand total. It is a pure function: same inputs, same output, no hidden
// state, safe to call repeatedly or in parallel.
//
// Lines are grouped by currency code; within a group the subtotal sums
// quantity × unitPrice, the tax amount sums each line's TaxAmount, and the
// total sums each line's LineAmount. Currencies with no lines never appear
// in the map. The grand total adds every group's total to the order-level
// surcharges (plus shipping tax when the flag is set) without converting
// between currencies — the per-currency map is the number to trust.
func Aggregate(lines []domain.LineItem, costs domain.OrderCosts) domain.TotalsReport {
	byCurrency := make(map[string]domain.CurrencyTotals)
	for _, li := range lines {
		group := byCurrency[li.Currency]
		group.Subtotal = group.Subtotal.Add(li.Subtotal())
		group.TaxAmount = group.TaxAmount.Add(li.TaxAmount)
		group.TotalAmount = group.TotalAmount.Add(li.LineAmount)
		byCurrency[li.Currency] = group
	}

	grand := decimal.Zero
	for _, group := range byCurrency {
		grand = grand.Add(group.TotalAmount)
	}
	grand = grand.Add(costs.ShippingCost).
		Add(costs.HandlingFee).
		Add(costs.OtherCharge).
		Add(costs.ShippingTaxAmount())

	return domain.TotalsReport{ByCurrency: byCurrency, GrandTotal: grand}
}
