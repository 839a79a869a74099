package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/indicators/internal/config"
)

// Recorder receives ingest and classification measurements.
type Recorder interface {
	RecordBatch(status string, files, rows int, d time.Duration)
	RecordClassification(mode, trigger string)
}

type nopRecorder struct{}

func (nopRecorder) RecordBatch(string, int, int, time.Duration) {}
func (nopRecorder) RecordClassification(string, string)         {}

// Batch outcomes and classification triggers reported to the Recorder.
const (
	statusSuccess  = "success"
	statusRejected = "rejected" // validation failure, nothing written
	statusBusy     = "busy"
	statusError    = "error"

	triggerAuto   = "auto"
	triggerManual = "manual"
)

// Service runs ingestion batches and classifications against a Store.
type Service struct {
	store   Store
	cfg     config.UploadConfig
	limiter *IngestLimiter
	metrics Recorder
	now     func() time.Time
}

// NewService creates a Service. A nil recorder disables measurements.
func NewService(store Store, cfg config.UploadConfig, rec Recorder) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	if cfg.ParseWorkers <= 0 {
		cfg.ParseWorkers = 1
	}
	return &Service{
		store:   store,
		cfg:     cfg,
		limiter: NewIngestLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		metrics: rec,
		now:     time.Now,
	}
}

// LimiterStatus returns the ingest limiter state for health output.
func (s *Service) LimiterStatus() IngestLimiterStatus {
	return s.limiter.Status()
}

// WaitForIngests blocks until no batch is running or ctx ends.
func (s *Service) WaitForIngests(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
