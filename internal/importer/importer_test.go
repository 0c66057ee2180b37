package importer_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/pocompose/backend-go/internal/domain"
	"github.com/pocompose/backend-go/internal/importer"
)

const header = "SKU Code,Product Name,Specifications,Quantity,UOM,Currency,Unit Price,Tax Rate (%),Notes"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaults() importer.Defaults {
	return importer.Defaults{UOM: "PCS", Currency: "USD", TaxRate: decimal.NewFromInt(13)}
}

func parse(t *testing.T, name, content string) *importer.Session {
	t.Helper()
	s, err := importer.Parse(name, []byte(content), defaults())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

// Rows are addressed by physical line number including the header: with a
// header and three data lines, the second data line is line 3.
func TestParse_RowNumberAddressing(t *testing.T) {
	content := header + "\n" +
		"SKU-1,First,,1,PCS,USD,1.00,,\n" +
		",Broken,,1,PCS,USD,1.00,,\n" +
		"SKU-3,Third,,1,PCS,USD,1.00,,\n"

	rows := parse(t, "lines.csv", content).Rows()
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1].SourceLine != 3 {
		t.Errorf("second data row addressed as line %d, want 3", rows[1].SourceLine)
	}
	if rows[1].Valid() {
		t.Error("row with empty SKU reported valid")
	}
}

// A quoted specification containing commas is one field, not several.
func TestParse_QuotedFieldWithCommas(t *testing.T) {
	content := header + "\n" +
		`SKU-1,Shirt,"Color: Red, Size: M",2,PCS,USD,9.99,13,note` + "\n"

	rows := parse(t, "lines.csv", content).Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Input.Specification != "Color: Red, Size: M" {
		t.Errorf("specification = %q, want the quoted span intact", row.Input.Specification)
	}
	if row.Input.Quantity != 2 || row.Input.Notes != "note" {
		t.Errorf("columns shifted: %+v", row.Input)
	}
	if !row.Valid() {
		t.Errorf("row invalid: %v", row.Errors)
	}
}

func TestParse_BOMAndBlankLines(t *testing.T) {
	content := "\ufeff" + header + "\n" +
		"\n" +
		"SKU-1,Widget,,1,PCS,USD,1.00,,\n" +
		"   \n" +
		"SKU-2,Gadget,,2,PCS,USD,2.00,,\n"

	rows := parse(t, "lines.csv", content).Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank lines skipped)", len(rows))
	}
	if rows[0].Input.SKU != "SKU-1" || rows[0].SourceLine != 3 {
		t.Errorf("first row = %q at line %d, want SKU-1 at line 3", rows[0].Input.SKU, rows[0].SourceLine)
	}
	if rows[1].SourceLine != 5 {
		t.Errorf("second row at line %d, want 5", rows[1].SourceLine)
	}
}

// All checks run; a row can carry several messages at once.
func TestParse_MultipleErrorsPerRow(t *testing.T) {
	content := header + "\n" +
		",,,zero,PCS,USD,-5,,\n"

	rows := parse(t, "lines.csv", content).Rows()
	row := rows[0]
	want := []string{
		"SKU code is required",
		"product name is required",
		"quantity must be an integer greater than zero",
		"unit price must be a number greater than or equal to zero",
	}
	if len(row.Errors) != len(want) {
		t.Fatalf("errors = %v, want %d messages", row.Errors, len(want))
	}
	for i, msg := range want {
		if row.Errors[i] != msg {
			t.Errorf("errors[%d] = %q, want %q", i, row.Errors[i], msg)
		}
	}
}

// Preview amounts are best-effort even for invalid rows, with zero standing
// in for fields that failed to parse.
func TestParse_PreviewAmountsForInvalidRow(t *testing.T) {
	content := header + "\n" +
		",NoSKU,,10,PCS,USD,5.00,,\n"

	row := parse(t, "lines.csv", content).Rows()[0]
	if row.Valid() {
		t.Fatal("expected invalid row")
	}
	if !row.LineAmount.Equal(dec("56.5")) {
		t.Errorf("preview line amount = %s, want 56.5", row.LineAmount)
	}
}

func TestParse_TaxRateDefaultsInsteadOfFailing(t *testing.T) {
	content := header + "\n" +
		"SKU-1,Widget,,1,PCS,USD,100,,\n" +
		"SKU-2,Widget,,1,PCS,USD,100,garbage,\n" +
		"SKU-3,Widget,,1,PCS,USD,100,7,\n"

	rows := parse(t, "lines.csv", content).Rows()
	for i, wantRate := range []string{"13", "13", "7"} {
		if !rows[i].Input.TaxRate.Equal(dec(wantRate)) {
			t.Errorf("row %d tax rate = %s, want %s", i, rows[i].Input.TaxRate, wantRate)
		}
		if !rows[i].Valid() {
			t.Errorf("row %d invalid: %v", i, rows[i].Errors)
		}
	}
}

func TestParse_MissingTrailingColumnsDefault(t *testing.T) {
	content := header + "\n" +
		"SKU-1,Widget,,4\n"

	row := parse(t, "lines.csv", content).Rows()[0]
	if row.Input.UOM != "PCS" || row.Input.Currency != "USD" {
		t.Errorf("defaults not applied: uom=%q currency=%q", row.Input.UOM, row.Input.Currency)
	}
	if !row.Input.TaxRate.Equal(dec("13")) {
		t.Errorf("tax rate = %s, want default 13", row.Input.TaxRate)
	}
	// Unit price column missing entirely: parses as absent, which fails the
	// >= 0 check but still previews as zero.
	if row.Valid() {
		t.Error("expected unit price error for missing column")
	}
	if !row.Input.UnitPrice.IsZero() {
		t.Errorf("unit price = %s, want 0", row.Input.UnitPrice)
	}
}

func TestParse_FileShapeErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		want     error
	}{
		{"wrong extension", "lines.txt", []byte(header + "\nSKU-1,W,,1,,,1,,"), importer.ErrUnsupportedFile},
		{"empty file", "lines.csv", nil, importer.ErrEmptyFile},
		{"whitespace only", "lines.csv", []byte("   \n  \n"), importer.ErrEmptyFile},
		{"header only", "lines.csv", []byte(header + "\n"), importer.ErrTooFewLines},
		{"invalid utf8", "lines.csv", append([]byte(header+"\n"), 0xFF, 0xFE, 0x01), importer.ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.Parse(tt.filename, tt.content, defaults())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// The shipped template must validate clean when fed straight back in.
func TestTemplate_RoundTrip(t *testing.T) {
	data, err := importer.Template()
	if err != nil {
		t.Fatalf("Template: %v", err)
	}

	s, err := importer.Parse(importer.TemplateFilename, data, defaults())
	if err != nil {
		t.Fatalf("Parse(template): %v", err)
	}
	rows := s.Rows()
	if len(rows) == 0 {
		t.Fatal("template has no example rows")
	}
	for _, row := range rows {
		if !row.Valid() {
			t.Errorf("template row at line %d invalid: %v", row.SourceLine, row.Errors)
		}
	}
	if !s.CanConfirm() {
		t.Error("template import not confirmable")
	}
}

// Exported draft lines re-import with zero errors.
func TestWriteLinesCSV_RoundTrip(t *testing.T) {
	lines := []domain.LineItem{
		domain.NewLineItem(domain.LineItemInput{
			SKU: "SKU-9", ProductName: "Widget, large", Specification: "Finish: matte, brushed",
			Quantity: 3, UOM: "PCS", Currency: "USD", UnitPrice: dec("12.40"), TaxRate: dec("13"),
		}),
	}

	var buf bytes.Buffer
	if err := importer.WriteLinesCSV(&buf, lines); err != nil {
		t.Fatalf("WriteLinesCSV: %v", err)
	}

	s, err := importer.Parse("export.csv", buf.Bytes(), defaults())
	if err != nil {
		t.Fatalf("Parse(export): %v", err)
	}
	rows := s.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if !row.Valid() {
		t.Fatalf("exported row invalid: %v", row.Errors)
	}
	if row.Input.ProductName != "Widget, large" {
		t.Errorf("product name = %q, want quoted comma preserved", row.Input.ProductName)
	}
	if !row.Input.UnitPrice.Equal(dec("12.40")) {
		t.Errorf("unit price = %s, want 12.40", row.Input.UnitPrice)
	}
}

func TestParse_XLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := [][]string{
		strings.Split(header, ","),
		{"SKU-1", "Widget", "", "10", "PCS", "USD", "5.00", "", ""},
		{"", "Nameless", "", "1", "PCS", "USD", "1.00", "", ""},
	}
	for i, rowCells := range cells {
		for j, v := range rowCells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	s, err := importer.Parse("lines.xlsx", buf.Bytes(), defaults())
	if err != nil {
		t.Fatalf("Parse(xlsx): %v", err)
	}
	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !rows[0].Valid() || !rows[0].Input.TaxRate.Equal(dec("13")) {
		t.Errorf("first xlsx row = %+v, want valid with default tax", rows[0])
	}
	if rows[1].Valid() {
		t.Error("xlsx row with empty SKU reported valid")
	}
	if rows[1].SourceLine != 3 {
		t.Errorf("second xlsx row at line %d, want 3", rows[1].SourceLine)
	}
}
