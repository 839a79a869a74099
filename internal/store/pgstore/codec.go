package pgstore

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/indicators/internal/core"
)

// encodeValues renders a values map as a JSONB object. Null values are kept
// so an empty cell stays distinguishable from a missing period.
func encodeValues(values map[int]*float64) ([]byte, error) {
	if values == nil {
		values = map[int]*float64{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode values: %w", err)
	}
	return b, nil
}

func decodeValues(raw []byte) (map[int]*float64, error) {
	values := make(map[int]*float64)
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	return values, nil
}

func encodeRanges(ranges []core.Range) ([]byte, error) {
	if ranges == nil {
		ranges = []core.Range{}
	}
	b, err := json.Marshal(ranges)
	if err != nil {
		return nil, fmt.Errorf("encode ranges: %w", err)
	}
	return b, nil
}

// decodeRanges returns nil for an empty array so an unclassified series
// reports Classified() == false.
func decodeRanges(raw []byte) ([]core.Range, error) {
	var ranges []core.Range
	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &ranges); err != nil {
		return nil, fmt.Errorf("decode ranges: %w", err)
	}
	if len(ranges) == 0 {
		return nil, nil
	}
	return ranges, nil
}
