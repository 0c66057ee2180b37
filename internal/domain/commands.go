package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FieldUpdate is a single-field change to a line item. Each editable field
// has its own command so dispatch stays exhaustive; the string-keyed form
// accepted at the HTTP/CLI boundary is converted by ParseFieldUpdate.
type FieldUpdate interface {
	fieldName() string
}

type SetCatalogID struct{ Value string }
type SetSKU struct{ Value string }
type SetProductName struct{ Value string }
type SetSpecification struct{ Value string }
type SetQuantity struct{ Value int }
type SetUOM struct{ Value string }
type SetCurrency struct{ Value string }
type SetUnitPrice struct{ Value decimal.Decimal }
type SetTaxRate struct{ Value decimal.Decimal }
type SetLength struct{ Value decimal.Decimal }
type SetWidth struct{ Value decimal.Decimal }
type SetHeight struct{ Value decimal.Decimal }
type SetNotes struct{ Value string }
type SetSerialTracking struct {
	Tracked bool
	Numbers []string
}
type SetLotTracking struct {
	Tracked bool
	Numbers []string
}

func (SetCatalogID) fieldName() string { return "catalog_id" }
func (SetSKU) fieldName() string { return "sku" }
func (SetProductName) fieldName() string { return "product_name" }
func (SetSpecification) fieldName() string { return "specification" }
func (SetQuantity) fieldName() string { return "quantity" }
func (SetUOM) fieldName() string { return "uom" }
func (SetCurrency) fieldName() string { return "currency" }
func (SetUnitPrice) fieldName() string { return "unit_price" }
func (SetTaxRate) fieldName() string { return "tax_rate" }
func (SetLength) fieldName() string { return "length" }
func (SetWidth) fieldName() string { return "width" }
func (SetHeight) fieldName() string { return "height" }
func (SetNotes) fieldName() string { return "notes" }
func (SetSerialTracking) fieldName() string { return "serial_tracking" }
func (SetLotTracking) fieldName() string { return "lot_tracking" }

// FieldName returns the wire name of the field a command targets.
func FieldName(cmd FieldUpdate) string {
	if cmd == nil {
		return ""
	}

	return cmd.fieldName()
}

// Apply sets the command's field on the line and recomputes exactly the
// derived fields that depend on it. Amount commands recompute the amounts
// from all three of quantity/unitPrice/taxRate so a stale dependency never
// leaks through; dimension commands recompute volume the same way. Changing
// the currency relabels the line only — the numeric price is left untouched.
// Apply never fails: numeric coercion already happened at the boundary.
func Apply(li *LineItem, cmd FieldUpdate) {
	switch c := cmd.(type) {
	case SetCatalogID:
		li.CatalogID = c.Value
	case SetSKU:
		li.SKU = c.Value
	case SetProductName:
		li.ProductName = c.Value
	case SetSpecification:
		li.Specification = c.Value
	case SetQuantity:
		li.Quantity = c.Value
		li.RecalcAmounts()
	case SetUOM:
		li.UOM = c.Value
	case SetCurrency:
		li.Currency = c.Value
	case SetUnitPrice:
		li.UnitPrice = c.Value
		li.RecalcAmounts()
	case SetTaxRate:
		li.TaxRate = c.Value
		li.RecalcAmounts()
	case SetLength:
		li.Length = c.Value
		li.RecalcVolume()
	case SetWidth:
		li.Width = c.Value
		li.RecalcVolume()
	case SetHeight:
		li.Height = c.Value
		li.RecalcVolume()
	case SetNotes:
		li.Notes = c.Value
	case SetSerialTracking:
		li.SerialTracked = c.Tracked
		li.SerialNumbers = c.Numbers
	case SetLotTracking:
		li.LotTracked = c.Tracked
		li.LotNumbers = c.Numbers
	}
}

// ParseFieldUpdate converts a loosely-typed (field, value) pair into a typed
// command. Numeric fields follow the forgiving-input policy: text that does
// not parse becomes zero rather than an error. Only an unknown field name
// fails.
func ParseFieldUpdate(field, value string) (FieldUpdate, error) {
	switch field {
	case "catalog_id":
		return SetCatalogID{Value: value}, nil
	case "sku":
		return SetSKU{Value: value}, nil
	case "product_name":
		return SetProductName{Value: value}, nil
	case "specification":
		return SetSpecification{Value: value}, nil
	case "quantity":
		return SetQuantity{Value: IntOrZero(value)}, nil
	case "uom":
		return SetUOM{Value: value}, nil
	case "currency":
		return SetCurrency{Value: value}, nil
	case "unit_price":
		return SetUnitPrice{Value: DecimalOrZero(value)}, nil
	case "tax_rate":
		return SetTaxRate{Value: DecimalOrZero(value)}, nil
	case "length":
		return SetLength{Value: DecimalOrZero(value)}, nil
	case "width":
		return SetWidth{Value: DecimalOrZero(value)}, nil
	case "height":
		return SetHeight{Value: DecimalOrZero(value)}, nil
	case "notes":
		return SetNotes{Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown line item field %q", field)
	}
}
