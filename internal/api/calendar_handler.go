package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jc230285/s42-dashboard/internal/auth"
	"github.com/jc230285/s42-dashboard/internal/calendar"
	"github.com/jc230285/s42-dashboard/internal/http/errors"
)

// requestDateFormats are the ISO8601 shapes the frontend sends for the
// aggregation window. Date-only values mean local midnight.
var requestDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseRequestDate(s string) (time.Time, error) {
	for _, format := range requestDateFormats {
		if t, err := time.ParseInLocation(format, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date value: %q", s)
}

type aggregateRequest struct {
	// Raw so a missing, null or non-array sources field is reported as a
	// validation failure rather than a body decode failure.
	Sources   json.RawMessage `json:"sources"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
}

// AggregateCalendar runs the aggregation pipeline over the sources named in
// the request body and returns the merged event list.
func (h *Handler) AggregateCalendar(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.InternalError(w, r, err, "decode calendar aggregation request")
		return
	}

	var sources []calendar.Source
	if len(req.Sources) == 0 || string(req.Sources) == "null" {
		errors.BadRequestError(w, r, fmt.Errorf("sources field missing or null"), "Invalid sources provided")
		return
	}
	if err := json.Unmarshal(req.Sources, &sources); err != nil {
		errors.BadRequestError(w, r, err, "Invalid sources provided")
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		errors.BadRequestError(w, r, fmt.Errorf("startDate=%q endDate=%q", req.StartDate, req.EndDate), "Start date and end date are required")
		return
	}

	start, err := parseRequestDate(req.StartDate)
	if err != nil {
		errors.BadRequestError(w, r, err, "Invalid start date")
		return
	}
	end, err := parseRequestDate(req.EndDate)
	if err != nil {
		errors.BadRequestError(w, r, err, "Invalid end date")
		return
	}

	events := h.aggregator.Aggregate(r.Context(), sources, start, end)
	if events == nil {
		events = []calendar.Event{}
	}
	h.writeJSON(w, r, http.StatusOK, events)
}

// AggregateSavedCalendar aggregates the caller's saved sources (falling back
// to the deployment-wide defaults) for the window given in query parameters.
func (h *Handler) AggregateSavedCalendar(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")
	if startParam == "" || endParam == "" {
		errors.BadRequestError(w, r, fmt.Errorf("start=%q end=%q", startParam, endParam), "Start date and end date are required")
		return
	}

	start, err := parseRequestDate(startParam)
	if err != nil {
		errors.BadRequestError(w, r, err, "Invalid start date")
		return
	}
	end, err := parseRequestDate(endParam)
	if err != nil {
		errors.BadRequestError(w, r, err, "Invalid end date")
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	saved, err := h.store.CalendarSources.ListByUser(r.Context(), user.ID)
	if err != nil {
		errors.InternalError(w, r, err, "load saved calendar sources")
		return
	}

	var sources []calendar.Source
	for _, s := range saved {
		sources = append(sources, calendar.Source{Name: s.Name, URL: s.URL, Color: s.Color, Owner: s.OwnerLabel})
	}
	if len(sources) == 0 {
		for _, s := range h.cfg.Calendar.DefaultSources {
			sources = append(sources, calendar.Source{Name: s.Name, URL: s.URL, Color: s.Color, Owner: s.Owner})
		}
	}

	events := h.aggregator.Aggregate(r.Context(), sources, start, end)
	if events == nil {
		events = []calendar.Event{}
	}
	h.writeJSON(w, r, http.StatusOK, events)
}
