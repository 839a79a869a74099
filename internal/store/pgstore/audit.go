package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/indicators/internal/core"
)

func (s *Store) RecordAudit(ctx context.Context, entry core.AuditEntry) error {
	var details []byte
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = b
	}

	var period *int
	if entry.Period != 0 {
		period = &entry.Period
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log (
			id, action, severity, batch_id, series_id, period,
			rows_affected, ip_address, user_agent, details, created_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11)`,
		entry.ID,
		string(entry.Action),
		string(entry.Severity),
		entry.BatchID,
		entry.SeriesID,
		period,
		entry.RowsAffected,
		entry.IPAddress,
		entry.UserAgent,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}
