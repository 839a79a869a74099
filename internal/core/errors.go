package core

import (
	"errors"
	"fmt"
	"strings"
)

// Batch validation failures. All of them are detected before anything is
// written, so a batch failing with one of these has no side effects.
var (
	ErrEmptyFileBatch     = errors.New("empty file batch")
	ErrMalformedFilename  = errors.New("malformed filename")
	ErrUnknownSeriesCode  = errors.New("unknown series code")
	ErrUnresolvedEntity   = errors.New("unresolved entities")
	ErrNoMatchingEntities = errors.New("no entities registered")
	ErrUnreadableFile     = errors.New("unreadable file")
)

// ErrSeriesNotFound is returned by SeriesRegistry.GetSeries for unknown ids.
var ErrSeriesNotFound = errors.New("series not found")

// Argument errors for classification and period operations.
var (
	ErrInvalidMode   = errors.New("invalid classification mode")
	ErrInvalidPeriod = errors.New("invalid period")
)

// MaxUnresolvedNames caps the entity names listed in an unresolved-entity error.
const MaxUnresolvedNames = 10

// BatchError describes a request-level validation failure.
type BatchError struct {
	Kind  error    // One of the Err* sentinels above
	File  string   // Offending file name, if any
	Code  int      // Series code decoded from File, if any
	Names []string // Unresolved entity names (ErrUnresolvedEntity only)
	More  bool     // More unresolved names exist than listed
	Err   error    // Underlying cause (ErrUnreadableFile only)
}

func (e *BatchError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())

	switch {
	case errors.Is(e.Kind, ErrUnresolvedEntity):
		fmt.Fprintf(&b, " in %q: %s", e.File, strings.Join(e.Names, ", "))
		if e.More {
			b.WriteString(", ...")
		}
	case errors.Is(e.Kind, ErrUnknownSeriesCode):
		fmt.Fprintf(&b, " %03d (file %q)", e.Code, e.File)
	case e.File != "":
		fmt.Fprintf(&b, ": %q", e.File)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *BatchError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// IsBatchError reports whether err is a batch validation failure.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}
