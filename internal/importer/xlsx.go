package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// sheetRecords reads the first worksheet of an xlsx payload into records,
// one per sheet row, so xlsx uploads flow through the same row building as
// CSV. The sheet is expected to carry the template header in row 1.
func sheetRecords(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row from sheet %s: %w", sheets[0], err)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("iterate sheet %s: %w", sheets[0], err)
	}

	return records, nil
}
