package core

import (
	"fmt"
	"strings"
)

// Row is one parsed data row: an entity name and its period values.
type Row struct {
	EntityName string
	Values     map[int]*float64
}

// Table is the normalized content of one uploaded file.
type Table struct {
	Header  []string // Trimmed header tokens, including the ignored first column
	Periods []int    // Period columns in header order, de-duplicated
	Rows    []Row    // Data rows in input order
}

// ParseTable decodes data with the parser registered for format and
// normalizes the records into a Table.
func ParseTable(data []byte, format Format) (*Table, error) {
	def, ok := ParserFor(format)
	if !ok {
		return nil, fmt.Errorf("no parser for format %q", format)
	}

	records, err := def.Read(data)
	if err != nil {
		return nil, err
	}
	return normalizeRecords(records), nil
}

// normalizeRecords applies the shared header/row rules to decoded records:
// the first record is the header, its first column labels the entity column,
// and only 4-digit header tokens become period columns.
func normalizeRecords(records [][]string) *Table {
	table := &Table{}
	if len(records) == 0 {
		return table
	}

	table.Header = make([]string, len(records[0]))
	for i, h := range records[0] {
		table.Header[i] = strings.TrimSpace(h)
	}

	// column index -> period
	periodCols := make(map[int]int)
	seen := make(map[int]bool)
	for c := 1; c < len(table.Header); c++ {
		year, ok := ParsePeriodToken(table.Header[c])
		if !ok {
			continue
		}
		periodCols[c] = year
		if !seen[year] {
			seen[year] = true
			table.Periods = append(table.Periods, year)
		}
	}

	for _, record := range records[1:] {
		if isEmptyRow(record) {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}

		values := make(map[int]*float64, len(periodCols))
		for c := 1; c < len(table.Header); c++ {
			year, ok := periodCols[c]
			if !ok {
				continue
			}
			var raw string
			if c < len(record) {
				raw = record[c]
			}
			values[year] = ParseCell(raw)
		}

		table.Rows = append(table.Rows, Row{EntityName: name, Values: values})
	}

	return table
}
