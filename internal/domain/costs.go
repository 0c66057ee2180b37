package domain

import "github.com/shopspring/decimal"

// OrderCosts holds the order-level surcharges, all expressed in the
// reference currency.
type OrderCosts struct {
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	HandlingFee     decimal.Decimal `json:"handling_fee"`
	OtherCharge     decimal.Decimal `json:"other_charge"`
	ShippingTaxable bool            `json:"shipping_taxable"`
	ShippingTaxRate decimal.Decimal `json:"shipping_tax_rate"`
}

// ShippingTaxAmount returns shippingCost × shippingTaxRate / 100 when the
// shipping-taxable flag is set, zero otherwise.
func (c OrderCosts) ShippingTaxAmount() decimal.Decimal {
	if !c.ShippingTaxable {
		return decimal.Zero
	}

	return c.ShippingCost.Mul(c.ShippingTaxRate).Div(decimal.NewFromInt(100))
}
