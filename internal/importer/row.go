package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pocompose/backend-go/internal/domain"
)

// Import file column order, fixed by the template.
const (
	colSKU = iota
	colProductName
	colSpecification
	colQuantity
	colUOM
	colCurrency
	colUnitPrice
	colTaxRate
	colNotes
)

// Row is one not-yet-committed line item candidate, paired with the 1-based
// source line it came from and every validation message it collected. Rows
// are discarded when the session ends.
type Row struct {
	SourceLine int
	Input      domain.LineItemInput
	// Best-effort preview amounts, computed with zero standing in for any
	// numeric field that failed to parse.
	TaxAmount  decimal.Decimal
	LineAmount decimal.Decimal
	Errors     []string
}

// Valid reports whether the row passed every check.
func (r Row) Valid() bool {
	return len(r.Errors) == 0
}

// buildRow validates one candidate row and computes its preview amounts.
// The checks run in a fixed order and none of them short-circuits, so a row
// can carry several messages at once. Missing trailing columns fall back to
// the import defaults; an absent or unparseable tax rate also defaults
// rather than failing, since the tax rate has no hard failure mode.
func buildRow(sourceLine int, fields []string, defaults Defaults) Row {
	row := Row{SourceLine: sourceLine}

	sku := fieldAt(fields, colSKU)
	name := fieldAt(fields, colProductName)

	if sku == "" {
		row.Errors = append(row.Errors, "SKU code is required")
	}
	if name == "" {
		row.Errors = append(row.Errors, "product name is required")
	}

	qty, qtyOK := domain.ParseInt(fieldAt(fields, colQuantity))
	if !qtyOK {
		qty = 0
	}
	if !qtyOK || qty <= 0 {
		row.Errors = append(row.Errors, "quantity must be an integer greater than zero")
	}

	price, priceOK := domain.ParseDecimal(fieldAt(fields, colUnitPrice))
	if !priceOK {
		price = decimal.Zero
	}
	if !priceOK || price.IsNegative() {
		row.Errors = append(row.Errors, "unit price must be a number greater than or equal to zero")
	}

	taxRate, taxOK := domain.ParseDecimal(fieldAt(fields, colTaxRate))
	if !taxOK {
		taxRate = defaults.TaxRate
	}

	uom := fieldAt(fields, colUOM)
	if uom == "" {
		uom = defaults.UOM
	}
	currency := fieldAt(fields, colCurrency)
	if currency == "" {
		currency = defaults.Currency
	}

	row.Input = domain.LineItemInput{
		SKU:           sku,
		ProductName:   name,
		Specification: fieldAt(fields, colSpecification),
		Quantity:      qty,
		UOM:           uom,
		Currency:      currency,
		UnitPrice:     price,
		TaxRate:       taxRate,
		Notes:         fieldAt(fields, colNotes),
	}

	// Preview amounts follow the same recalculation rules as a live edit.
	preview := domain.LineItem{Quantity: qty, UnitPrice: price, TaxRate: taxRate}
	preview.RecalcAmounts()
	row.TaxAmount = preview.TaxAmount
	row.LineAmount = preview.LineAmount

	return row
}

func fieldAt(fields []string, idx int) string {
	if idx >= len(fields) {
		return ""
	}

	return strings.TrimSpace(fields[idx])
}
