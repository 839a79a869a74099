package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity is a canonical named subject observations attach to (a city).
type Entity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ClassificationMode selects the bucketing algorithm for a series.
type ClassificationMode string

const (
	ModeEqualCount    ClassificationMode = "equalCount"
	ModeEqualInterval ClassificationMode = "equalInterval"
	ModeValueQuartile ClassificationMode = "valueQuartile"
	ModeManual        ClassificationMode = "manual"
)

// ParseClassificationMode validates a mode string.
func ParseClassificationMode(s string) (ClassificationMode, error) {
	switch m := ClassificationMode(s); m {
	case ModeEqualCount, ModeEqualInterval, ModeValueQuartile, ModeManual:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidMode, s)
	}
}

// Range is one colored segment of a classification.
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Color string  `json:"color"`
}

// Series is a tracked numeric indicator with its classification settings.
type Series struct {
	ID               uuid.UUID          `json:"id"`
	Code             int                `json:"code"`
	Name             string             `json:"name"`
	DecimalPrecision int                `json:"decimalPrecision"` // 0-2
	InvertScale      bool               `json:"invertScale"`
	Mode             ClassificationMode `json:"mode"`
	Ranges           []Range            `json:"ranges"` // exactly 4, or empty when never classified
}

// Classified reports whether the series carries a stored classification.
func (s Series) Classified() bool {
	return len(s.Ranges) > 0
}

// Observation holds the per-period values of one (series, entity) pair.
// A nil value means the period was submitted empty; a missing key means it
// was never submitted.
type Observation struct {
	SeriesID uuid.UUID        `json:"seriesId"`
	EntityID uuid.UUID        `json:"entityId"`
	Values   map[int]*float64 `json:"values"`
}

// Period is a row of the known-periods registry.
type Period struct {
	Year    int  `json:"year"`
	Enabled bool `json:"enabled"`
}

// UpsertInstruction replaces the values of one observation, creating it if absent.
type UpsertInstruction struct {
	SeriesID uuid.UUID
	EntityID uuid.UUID
	Values   map[int]*float64
}

// UploadedFile is one named file of an ingestion batch.
type UploadedFile struct {
	Name string
	Data []byte
}

// FileResult summarizes one committed file.
type FileResult struct {
	Name          string `json:"name"`
	SeriesCode    int    `json:"seriesCode"`
	RowsProcessed int    `json:"rowsProcessed"`
	Periods       []int  `json:"periods"`
}

// IngestResult is returned by a successful ingestion batch.
type IngestResult struct {
	BatchID              string        `json:"batchId"`
	Files                []FileResult  `json:"files"`
	TouchedSeriesIDs     []uuid.UUID   `json:"touchedSeriesIds"`
	NewlyClassifiedCount int           `json:"newlyClassifiedCount"`
	Duration             time.Duration `json:"durationNs"`
}

// SeriesObservation is an observation resolved for display.
type SeriesObservation struct {
	EntityID   uuid.UUID        `json:"entityId"`
	EntityName string           `json:"entityName"`
	Values     map[int]*float64 `json:"values"`
}

// ClassifyResult pairs a series with the ranges a recalculation produced.
type ClassifyResult struct {
	SeriesID uuid.UUID `json:"seriesId"`
	Ranges   []Range   `json:"ranges"`
}
