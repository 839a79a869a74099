package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "malformed filename",
			err:      &BatchError{Kind: ErrMalformedFilename, File: "population.csv"},
			wantCode: "ING001",
		},
		{
			name:     "unknown series code",
			err:      &BatchError{Kind: ErrUnknownSeriesCode, File: "999 - Nope.csv", Code: 999},
			wantCode: "ING002",
		},
		{
			name:     "unresolved entities",
			err:      &BatchError{Kind: ErrUnresolvedEntity, File: "001 - Pop.csv", Names: []string{"Atlantis"}},
			wantCode: "ING003",
		},
		{
			name:     "empty batch",
			err:      &BatchError{Kind: ErrEmptyFileBatch},
			wantCode: "ING004",
		},
		{
			name:     "empty registry",
			err:      &BatchError{Kind: ErrNoMatchingEntities},
			wantCode: "ING005",
		},
		{
			name:     "unreadable file with cause",
			err:      &BatchError{Kind: ErrUnreadableFile, File: "002 - X.xlsx", Err: errors.New("zip: not a valid zip file")},
			wantCode: "ING006",
		},
		{
			name:     "wrapped series not found",
			err:      fmt.Errorf("classify: %w", ErrSeriesNotFound),
			wantCode: "ING007",
		},
		{
			name:     "invalid mode",
			err:      mustModeErr(t),
			wantCode: "ING008",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp: connection refused"),
			wantCode: "DB004",
		},
		{
			name:     "timeout wins over deadline",
			err:      errors.New("context deadline exceeded (timeout)"),
			wantCode: "DB006",
		},
		{
			name:     "ingest slot busy",
			err:      ErrTooManyUploads,
			wantCode: "UPL002",
		},
		{
			name:     "deadline",
			err:      errors.New("commit observations: context deadline exceeded"),
			wantCode: "UPL005",
		},
		{
			name:     "rate limit",
			err:      errors.New("rate limit exceeded"),
			wantCode: "RATE001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("MALFORMED FILENAME"),
			wantCode: "ING001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func mustModeErr(t *testing.T) error {
	t.Helper()
	_, err := ParseClassificationMode("median")
	if err == nil {
		t.Fatal("ParseClassificationMode(median) should fail")
	}
	return err
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&BatchError{Kind: ErrEmptyFileBatch})

	expected := "No files were uploaded (Code: ING004). Select at least one CSV or XLSX file"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"batch error is user facing", &BatchError{Kind: ErrMalformedFilename}, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
