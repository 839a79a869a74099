package core

import "testing"

func ptr(f float64) *float64 { return &f }

func equalValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func fmtValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// ----------------------------------------------------------------------------
// ParseCell Tests
// ----------------------------------------------------------------------------

func TestParseCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		// Valid: dot and comma decimals
		{name: "integer", input: "12", want: ptr(12)},
		{name: "dot decimal", input: "12.5", want: ptr(12.5)},
		{name: "comma decimal", input: "12,5", want: ptr(12.5)},
		{name: "surrounding spaces", input: "  3,25 ", want: ptr(3.25)},
		{name: "negative comma decimal", input: "-4,5", want: ptr(-4.5)},
		{name: "exponent", input: "1e3", want: ptr(1000)},
		{name: "zero", input: "0", want: ptr(0)},
		{name: "leading dot", input: ".5", want: ptr(0.5)},
		{name: "explicit plus", input: "+7", want: ptr(7)},

		// Trailing text after the number is ignored
		{name: "percent sign", input: "12,5 %", want: ptr(12.5)},
		{name: "unit suffix", input: "45 kg", want: ptr(45)},
		{name: "footnote mark", input: "3.2*", want: ptr(3.2)},
		{name: "incomplete exponent", input: "2e", want: ptr(2)},
		{name: "thousands and decimal comma", input: "1.234,5", want: ptr(1.234)},
		{name: "comma thousands", input: "1,234.5", want: ptr(1.234)},
		{name: "two commas", input: "1,2,3", want: ptr(1.2)},

		// Degrade to nil
		{name: "empty", input: "", want: nil},
		{name: "whitespace only", input: "   ", want: nil},
		{name: "text", input: "n.d.", want: nil},
		{name: "text before number", input: "ca. 12", want: nil},
		{name: "lone dot", input: ".", want: nil},
		{name: "NaN literal", input: "NaN", want: nil},
		{name: "infinity literal", input: "Inf", want: nil},
		{name: "overflow", input: "1e400", want: nil},
		{name: "dash placeholder", input: "-", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCell(tt.input)
			if !equalValue(got, tt.want) {
				t.Errorf("ParseCell(%q) = %v, want %v", tt.input, fmtValue(got), fmtValue(tt.want))
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParsePeriodToken Tests
// ----------------------------------------------------------------------------

func TestParsePeriodToken(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"2020", 2020, true},
		{" 2021 ", 2021, true},
		{`="2022"`, 2022, true},
		{`"2023"`, 2023, true},
		{"20201", 0, false},
		{"202", 0, false},
		{"Year", 0, false},
		{"2020a", 0, false},
		{"2020.0", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePeriodToken(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParsePeriodToken(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Comune ", "Comune"},
		{`="2020"`, "2020"},
		{"=2020", "2020"},
		{`"Roma"`, "Roma"},
		{"'2021'", "2021"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Rounding Tests
// ----------------------------------------------------------------------------

func TestRoundValue(t *testing.T) {
	tests := []struct {
		name     string
		input    *float64
		decimals int
		want     *float64
	}{
		{name: "nil stays nil", input: nil, decimals: 2, want: nil},
		{name: "two decimals", input: ptr(3.14159), decimals: 2, want: ptr(3.14)},
		{name: "zero decimals half up", input: ptr(2.5), decimals: 0, want: ptr(3)},
		{name: "negative half away from zero", input: ptr(-1.25), decimals: 1, want: ptr(-1.3)},
		{name: "decimals clamped to two", input: ptr(7.777), decimals: 5, want: ptr(7.78)},
		{name: "negative decimals clamped to zero", input: ptr(7.6), decimals: -1, want: ptr(8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundValue(tt.input, tt.decimals)
			if !equalValue(got, tt.want) {
				t.Errorf("RoundValue(%v, %d) = %v, want %v", fmtValue(tt.input), tt.decimals, fmtValue(got), fmtValue(tt.want))
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.125, 0.13},
		{12.344, 12.34},
		{-0.125, -0.13},
		{100, 100},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !isEmptyRow([]string{"", "  ", "\t"}) {
		t.Error("blank cells should be an empty row")
	}
	if !isEmptyRow(nil) {
		t.Error("nil row should be empty")
	}
	if isEmptyRow([]string{"", "x"}) {
		t.Error("row with content is not empty")
	}
}
