package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem represents one row of a purchase order draft.
//
// Amount and Volume fields are derived; they are recomputed by the update
// commands in this package and are never edited directly. Subtotal is not
// stored at all — callers use Subtotal().
type LineItem struct {
	ID     string `json:"id"`
	LineNo int    `json:"line_no"`

	CatalogID     string `json:"catalog_id,omitempty"`
	SKU           string `json:"sku"`
	ProductName   string `json:"product_name"`
	Specification string `json:"specification,omitempty"`

	Quantity  int             `json:"quantity"`
	UOM       string          `json:"uom"`
	Currency  string          `json:"currency"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`

	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`

	Notes string `json:"notes,omitempty"`

	SerialTracked bool     `json:"serial_tracked"`
	LotTracked    bool     `json:"lot_tracked"`
	SerialNumbers []string `json:"serial_numbers,omitempty"`
	LotNumbers    []string `json:"lot_numbers,omitempty"`

	// Derived
	Volume     decimal.Decimal `json:"volume"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	LineAmount decimal.Decimal `json:"line_amount"`
}

// LineItemInput holds the editable fields needed to create a line. Identity
// and derived fields are assigned by NewLineItem.
type LineItemInput struct {
	CatalogID     string
	SKU           string
	ProductName   string
	Specification string
	Quantity      int
	UOM           string
	Currency      string
	UnitPrice     decimal.Decimal
	TaxRate       decimal.Decimal
	Length        decimal.Decimal
	Width         decimal.Decimal
	Height        decimal.Decimal
	Notes         string
	SerialTracked bool
	LotTracked    bool
	SerialNumbers []string
	LotNumbers    []string
}

// NewLineItem builds a LineItem with a fresh identifier and consistent
// derived fields. The line number is assigned by the owning draft, not here.
func NewLineItem(in LineItemInput) LineItem {
	li := LineItem{
		ID:            uuid.NewString(),
		CatalogID:     in.CatalogID,
		SKU:           in.SKU,
		ProductName:   in.ProductName,
		Specification: in.Specification,
		Quantity:      in.Quantity,
		UOM:           in.UOM,
		Currency:      in.Currency,
		UnitPrice:     in.UnitPrice,
		TaxRate:       in.TaxRate,
		Length:        in.Length,
		Width:         in.Width,
		Height:        in.Height,
		Notes:         in.Notes,
		SerialTracked: in.SerialTracked,
		LotTracked:    in.LotTracked,
		SerialNumbers: in.SerialNumbers,
		LotNumbers:    in.LotNumbers,
	}
	li.RecalcAmounts()
	li.RecalcVolume()

	return li
}

// Subtotal returns quantity × unit price. It is always computed on demand so
// it can never go stale.
func (li *LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(int64(li.Quantity)).Mul(li.UnitPrice)
}

// RecalcAmounts recomputes TaxAmount and LineAmount from the line's current
// quantity, unit price and tax rate.
func (li *LineItem) RecalcAmounts() {
	subtotal := li.Subtotal()
	li.TaxAmount = subtotal.Mul(li.TaxRate).Div(decimal.NewFromInt(100))
	li.LineAmount = subtotal.Add(li.TaxAmount)
}

// RecalcVolume recomputes Volume from the current three dimensions. A zero
// value stands in for a dimension the user left blank.
func (li *LineItem) RecalcVolume() {
	li.Volume = li.Length.Mul(li.Width).Mul(li.Height)
}
