package web

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/JonMunkholm/indicators/internal/core"
)

// handleClassifyMany recalculates the given series with their stored modes.
func (s *Server) handleClassifyMany(w http.ResponseWriter, r *http.Request) {
	var req classifyManyRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	results, err := s.service.ClassifyMany(r.Context(), req.SeriesIDs)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	render.JSON(w, r, map[string]any{"results": results})
}

// handleClassify recalculates one series, optionally switching its mode.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	id, err := seriesIDParam(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var req classifyRequest
	if err := s.decodeJSON(r, &req, true); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var mode *core.ClassificationMode
	if req.Mode != "" {
		m, err := core.ParseClassificationMode(req.Mode)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		mode = &m
	}

	ranges, err := s.service.Classify(r.Context(), id, mode)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	render.JSON(w, r, core.ClassifyResult{SeriesID: id, Ranges: ranges})
}

// handleSeriesWithData lists series that have at least one observation.
func (s *Server) handleSeriesWithData(w http.ResponseWriter, r *http.Request) {
	ids, err := s.service.SeriesWithData(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	render.JSON(w, r, map[string]any{"seriesIds": ids})
}

// handleSeriesObservations returns the rounded observations of a series.
func (s *Server) handleSeriesObservations(w http.ResponseWriter, r *http.Request) {
	id, err := seriesIDParam(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	observations, err := s.service.SeriesObservations(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	render.JSON(w, r, map[string]any{
		"seriesId":     id,
		"observations": observations,
	})
}
