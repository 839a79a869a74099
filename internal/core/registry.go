package core

import (
	"fmt"
	"sort"
	"sync"
)

// Format identifies how a file body is encoded.
type Format string

const (
	FormatDelimited   Format = "delimited"
	FormatSpreadsheet Format = "spreadsheet"
)

// RecordReader decodes a file body into raw records (rows of cells).
type RecordReader func(data []byte) ([][]string, error)

// ParserDefinition describes one supported file format.
type ParserDefinition struct {
	Format     Format
	Extensions []string // Lowercase, with leading dot
	Read       RecordReader
}

var (
	parsers   = make(map[Format]ParserDefinition)
	parsersMu sync.RWMutex
)

// RegisterParser adds a format to the registry.
// Panics if the format is already registered.
func RegisterParser(def ParserDefinition) {
	parsersMu.Lock()
	defer parsersMu.Unlock()

	if _, exists := parsers[def.Format]; exists {
		panic(fmt.Sprintf("parser already registered: %s", def.Format))
	}
	parsers[def.Format] = def
}

// ParserFor returns the parser registered for a format.
func ParserFor(format Format) (ParserDefinition, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	def, ok := parsers[format]
	return def, ok
}

// FormatForExtension maps a lowercase file extension (".csv") to its format.
func FormatForExtension(ext string) (Format, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	for _, def := range parsers {
		for _, e := range def.Extensions {
			if e == ext {
				return def.Format, true
			}
		}
	}
	return "", false
}

// Formats returns all registered formats, sorted.
func Formats() []Format {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	result := make([]Format, 0, len(parsers))
	for f := range parsers {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
