package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JonMunkholm/indicators/internal/core"
)

// classifyManyRequest is the body of POST /api/series/classify.
type classifyManyRequest struct {
	SeriesIDs []uuid.UUID `json:"seriesIds" validate:"required,min=1,max=1000"`
}

// classifyRequest is the optional body of POST /api/series/{seriesID}/classify.
type classifyRequest struct {
	Mode string `json:"mode"`
}

// periodRequest is the body of PATCH /api/periods/{year}.
type periodRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// decodeJSON decodes and validates a request body. An empty body is allowed
// when optional is set and leaves v untouched.
func (s *Server) decodeJSON(r *http.Request, v any, optional bool) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fe.Field() + " failed " + fe.Tag()
			}
			return fmt.Errorf("%w: %s", errInvalidRequest, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// seriesIDParam parses the {seriesID} path parameter.
func seriesIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "seriesID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: series id %q", errInvalidRequest, raw)
	}
	return id, nil
}

// yearParam parses the {year} path parameter.
func yearParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil || !core.ValidPeriod(year) {
		return 0, fmt.Errorf("%w %q", core.ErrInvalidPeriod, raw)
	}
	return year, nil
}
