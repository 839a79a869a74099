package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/indicators/internal/logging"
)

// ValidPeriod reports whether year is a four-digit period.
func ValidPeriod(year int) bool {
	return year >= 1000 && year <= 9999
}

// ListPeriods returns the period registry in ascending order.
func (s *Service) ListPeriods(ctx context.Context) ([]Period, error) {
	return s.store.ListPeriods(ctx)
}

// SetPeriodEnabled toggles a period, registering it if unknown.
func (s *Service) SetPeriodEnabled(ctx context.Context, year int, enabled bool) (Period, error) {
	if !ValidPeriod(year) {
		return Period{}, fmt.Errorf("%w %d", ErrInvalidPeriod, year)
	}

	p, err := s.store.SetPeriodEnabled(ctx, year, enabled)
	if err != nil {
		return Period{}, fmt.Errorf("set period %d: %w", year, err)
	}

	s.audit(ctx, AuditEntry{
		Action:  ActionPeriodToggle,
		Period:  year,
		Details: map[string]any{"enabled": enabled},
	})
	return p, nil
}

// DeletePeriodData removes the year from every observation and disables the
// period. It returns how many observations changed.
func (s *Service) DeletePeriodData(ctx context.Context, year int) (int64, error) {
	if !ValidPeriod(year) {
		return 0, fmt.Errorf("%w %d", ErrInvalidPeriod, year)
	}

	n, err := s.store.DeletePeriodValues(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("delete period %d values: %w", year, err)
	}
	if _, err := s.store.SetPeriodEnabled(ctx, year, false); err != nil {
		return n, fmt.Errorf("disable period %d: %w", year, err)
	}

	s.audit(ctx, AuditEntry{
		Action:       ActionPeriodDataDelete,
		Period:       year,
		RowsAffected: n,
	})
	logging.FromContext(ctx).Warn("period data deleted", "year", year, "observations", n)
	return n, nil
}
