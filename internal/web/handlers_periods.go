package web

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/indicators/internal/core"
)

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.service.ListPeriods(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if periods == nil {
		periods = []core.Period{}
	}

	render.JSON(w, r, map[string]any{"periods": periods})
}

func (s *Server) handleSetPeriod(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var req periodRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	period, err := s.service.SetPeriodEnabled(r.Context(), year, *req.Enabled)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	render.JSON(w, r, period)
}

// handleDeletePeriodData strips a year from every observation.
func (s *Server) handleDeletePeriodData(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	n, err := s.service.DeletePeriodData(r.Context(), year)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	render.JSON(w, r, map[string]any{
		"year":                year,
		"observationsChanged": n,
	})
}
