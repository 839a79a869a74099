package core

import (
	"errors"
	"testing"
)

func TestDecodeFilename(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantCode   int
		wantFormat Format
		wantErr    bool
	}{
		{name: "csv", input: "001 - Popolazione residente.csv", wantCode: 1, wantFormat: FormatDelimited},
		{name: "xlsx", input: "42 - Reddito.xlsx", wantCode: 42, wantFormat: FormatSpreadsheet},
		{name: "upper-case extension", input: "7 - Verde urbano.CSV", wantCode: 7, wantFormat: FormatDelimited},
		{name: "no spaces around dash", input: "123-Rifiuti.csv", wantCode: 123, wantFormat: FormatDelimited},
		{name: "tight dash and upper-case extension", input: "001-Reddito.XLSX", wantCode: 1, wantFormat: FormatSpreadsheet},
		{name: "leading zeros", input: "007 - Trasporti.xlsx", wantCode: 7, wantFormat: FormatSpreadsheet},
		{name: "surrounding whitespace", input: "  12 - Aria.csv ", wantCode: 12, wantFormat: FormatDelimited},
		{name: "dashes in free text", input: "3 - PM10 - media annua.csv", wantCode: 3, wantFormat: FormatDelimited},

		{name: "four digit code", input: "1234 - Troppo.csv", wantErr: true},
		{name: "no code", input: "Popolazione.csv", wantErr: true},
		{name: "no free text", input: "001-.csv", wantErr: true},
		{name: "no dash", input: "001 Popolazione.csv", wantErr: true},
		{name: "unsupported extension", input: "001 - Popolazione.xls", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, format, err := DecodeFilename(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedFilename) {
					t.Fatalf("DecodeFilename(%q) error = %v, want ErrMalformedFilename", tt.input, err)
				}
				var be *BatchError
				if !errors.As(err, &be) || be.File != tt.input {
					t.Errorf("error should be a *BatchError naming the file, got %#v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeFilename(%q) error = %v", tt.input, err)
			}
			if code != tt.wantCode || format != tt.wantFormat {
				t.Errorf("DecodeFilename(%q) = (%d, %q), want (%d, %q)", tt.input, code, format, tt.wantCode, tt.wantFormat)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	d, err := DecodeFile(UploadedFile{Name: "5 - Test.csv", Data: []byte("x")})
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if d.Name != "5 - Test.csv" || d.Code != 5 || d.Format != FormatDelimited || string(d.Data) != "x" {
		t.Errorf("DecodeFile = %+v", d)
	}
}
