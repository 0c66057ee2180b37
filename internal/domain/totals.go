package domain

import "github.com/shopspring/decimal"

// CurrencyTotals is the aggregate for one currency group.
type CurrencyTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// TotalsReport is the output of the currency aggregator. ByCurrency is the
// trustworthy breakdown; GrandTotal sums heterogeneous currency totals plus
// the order-level surcharges into one reference-currency number without FX
// conversion, so it is informational only.
type TotalsReport struct {
	ByCurrency map[string]CurrencyTotals `json:"by_currency"`
	GrandTotal decimal.Decimal           `json:"grand_total"`
}
