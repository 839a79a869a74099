package core

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// filenameRegex matches "<1-3 digit code> - <free text>.<csv|xlsx>".
var filenameRegex = regexp.MustCompile(`(?i)^(\d{1,3})\s*-\s*.+\.(csv|xlsx)$`)

// DecodedFile is an uploaded file whose name has been bound to a series code.
type DecodedFile struct {
	Name   string
	Code   int
	Format Format
	Data   []byte
}

// DecodeFilename extracts the series code and format from a file name such
// as "001 - Population.csv". Returns ErrMalformedFilename when the name does
// not follow the naming contract.
func DecodeFilename(name string) (int, Format, error) {
	m := filenameRegex.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, "", &BatchError{Kind: ErrMalformedFilename, File: name}
	}

	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", &BatchError{Kind: ErrMalformedFilename, File: name}
	}

	format, ok := FormatForExtension(strings.ToLower(filepath.Ext(m[0])))
	if !ok {
		return 0, "", &BatchError{Kind: ErrMalformedFilename, File: name}
	}

	return code, format, nil
}

// DecodeFile binds an uploaded file to its series code and format.
func DecodeFile(f UploadedFile) (DecodedFile, error) {
	code, format, err := DecodeFilename(f.Name)
	if err != nil {
		return DecodedFile{}, err
	}
	return DecodedFile{Name: f.Name, Code: code, Format: format, Data: f.Data}, nil
}
