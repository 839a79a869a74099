package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/indicators/internal/logging"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionIngest           AuditAction = "ingest"
	ActionClassify         AuditAction = "classify"
	ActionAutoClassify     AuditAction = "auto_classify"
	ActionPeriodToggle     AuditAction = "period_toggle"
	ActionPeriodDataDelete AuditAction = "period_data_delete"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditEntry is a single audit log record.
type AuditEntry struct {
	ID           uuid.UUID      `json:"id"`
	Action       AuditAction    `json:"action"`
	Severity     AuditSeverity  `json:"severity"`
	BatchID      string         `json:"batchId,omitempty"`
	SeriesID     *uuid.UUID     `json:"seriesId,omitempty"`
	Period       int            `json:"period,omitempty"`
	RowsAffected int64          `json:"rowsAffected,omitempty"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionIngest:
		return SeverityHigh
	case ActionPeriodDataDelete:
		return SeverityCritical
	case ActionAutoClassify:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// audit fills in identity, severity and request metadata and records the
// entry. Audit failures are logged and never fail the operation.
func (s *Service) audit(ctx context.Context, entry AuditEntry) {
	entry.ID = uuid.New()
	entry.Severity = determineSeverity(entry.Action)
	entry.CreatedAt = s.now().UTC()
	if req := RequesterFrom(ctx); entry.IPAddress == "" && entry.UserAgent == "" {
		entry.IPAddress, entry.UserAgent = req.IPAddress, req.UserAgent
	}

	if err := s.store.RecordAudit(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("audit record failed",
			"action", entry.Action,
			"error", err,
		)
	}
}
