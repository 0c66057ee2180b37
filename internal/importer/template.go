package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pocompose/backend-go/internal/domain"
)

// TemplateFilename is the suggested download name for the import template.
const TemplateFilename = "po_line_import_template.csv"

// Header is the fixed column order of the import file. The header row is
// discarded on import, but the template carries it so filled-in files line
// up by position.
var Header = []string{
	"SKU Code", "Product Name", "Specifications", "Quantity", "UOM",
	"Currency", "Unit Price", "Tax Rate (%)", "Notes",
}

// templateRows are illustrative examples shipped with the template. They
// must stay valid: feeding the template straight back through Parse has to
// produce zero row errors.
var templateRows = [][]string{
	{"SKU-1001", "Widget, medium", "Color: Red, Size: M", "10", "PCS", "USD", "25.50", "13", "bulk order"},
	{"SKU-1002", "Gasket", "", "5", "BOX", "EUR", "4.75", "", "tax rate defaults when blank"},
	{"SKU-1003", "Bracket", "Stainless", "120", "PCS", "USD", "0.80", "9", ""},
}

// Template renders the import template: the fixed header plus example rows,
// quoted and encoded with the same rules the parser accepts, so the
// template → fill in → import round trip is a supported workflow.
func Template() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write template header: %w", err)
	}
	for _, row := range templateRows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write template row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush template: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteLinesCSV exports draft lines in template column order, so an
// exported draft can be re-imported as-is.
func WriteLinesCSV(out io.Writer, lines []domain.LineItem) error {
	w := csv.NewWriter(out)

	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, li := range lines {
		record := []string{
			li.SKU,
			li.ProductName,
			li.Specification,
			strconv.Itoa(li.Quantity),
			li.UOM,
			li.Currency,
			li.UnitPrice.String(),
			li.TaxRate.String(),
			li.Notes,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write line %d: %w", li.LineNo, err)
		}
	}
	w.Flush()

	return w.Error()
}
