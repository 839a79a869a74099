package core

// convert.go turns raw cell text into observation values.
//
// Uploaded tables come from spreadsheets saved in different locales, so a
// value may use either '.' or ',' as its decimal separator. A cell is read
// up to the end of its leading number, so units and footnote marks after the
// value ("12,5 %", "3.2*") are ignored. Cells that do not start with a finite
// number degrade to nil (missing data) instead of failing the file.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// periodRegex matches header tokens that denote a period column.
var periodRegex = regexp.MustCompile(`^\d{4}$`)

// numberPrefix matches the leading decimal number of a cell.
var numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseCell converts a raw cell to a value. Only the first comma is taken as
// a decimal separator, then the longest leading number is parsed and the
// rest of the cell is ignored. It never fails: empty cells and cells without
// a finite leading number yield nil.
func ParseCell(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	s = strings.Replace(s, ",", ".", 1)
	s = numberPrefix.FindString(s)
	if s == "" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParsePeriodToken returns the year a header token denotes, if any.
func ParsePeriodToken(token string) (int, bool) {
	token = CleanCell(token)
	if !periodRegex.MatchString(token) {
		return 0, false
	}
	year, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return year, true
}

// CleanCell removes common spreadsheet export artifacts from a header cell:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// RoundValue rounds v to the given number of decimals, clamped to 0..2.
// Returns nil for nil input.
func RoundValue(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	decimals = max(0, min(2, decimals))
	factor := math.Pow(10, float64(decimals))
	r := math.Round(*v*factor) / factor
	return &r
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
