package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

func init() {
	RegisterParser(ParserDefinition{
		Format:     FormatSpreadsheet,
		Extensions: []string{".xlsx"},
		Read:       readSpreadsheet,
	})
}

// readSpreadsheet decodes the first sheet of an XLSX workbook. Cells are read
// raw so numbers keep full precision instead of their display format. GetRows
// starts at A1, so the result is trimmed to the table's used range.
func readSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return trimUsedRange(rows), nil
}

// trimUsedRange drops leading blank rows and the leading columns that are
// blank in every remaining row.
func trimUsedRange(rows [][]string) [][]string {
	for len(rows) > 0 && isEmptyRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil
	}

	skip := -1
	for _, row := range rows {
		lead := 0
		for lead < len(row) && strings.TrimSpace(row[lead]) == "" {
			lead++
		}
		if lead == len(row) {
			continue // blank row inside the table
		}
		if skip < 0 || lead < skip {
			skip = lead
		}
	}
	if skip <= 0 {
		return rows
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > skip {
			out[i] = row[skip:]
		}
	}
	return out
}
