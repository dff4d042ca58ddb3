package api

import (
	"errors"
	"net/http"

	"github.com/karubi02/smb-booking/internal/db"
	"github.com/karubi02/smb-booking/internal/metrics"
	"github.com/karubi02/smb-booking/internal/schedule"
)

// StatsResponse is the owner dashboard payload: this month against
// last month, the all-time average, and view counts.
type StatsResponse struct {
	Month          int            `json:"month"`
	Year           int            `json:"year"`
	TotalHours     float64        `json:"total_hours"`
	PrevTotalHours float64        `json:"prev_total_hours"`
	AverageHours   float64        `json:"average_hours"`
	Trend          schedule.Trend `json:"trend"`
	Views          db.ViewCounts  `json:"views"`
}

// handleStats returns the dashboard aggregates for one month.
// GET /api/stats?month=M&year=Y
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stats")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	month, year, ok := s.monthYearParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid month/year")
		return
	}

	resp := StatsResponse{Month: month, Year: year}

	current, err := s.db.GetSchedule(r.Context(), userID, month, year)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to load schedule")
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if current != nil {
		resp.TotalHours = current.TotalHours
	}

	prevMonth, prevYear := month-1, year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, year-1
	}
	previous, err := s.db.GetSchedule(r.Context(), userID, prevMonth, prevYear)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to load previous schedule")
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if previous != nil {
		resp.PrevTotalHours = previous.TotalHours
	}

	resp.Trend = schedule.ComputeTrend(resp.TotalHours, resp.PrevTotalHours)

	totals, err := s.db.ListTotalHours(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to load totals")
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	resp.AverageHours = schedule.AverageHours(totals)

	counts, err := s.db.GetViewCounts(r.Context(), userID, s.now())
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to load view counts")
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	resp.Views = *counts

	writeJSON(w, http.StatusOK, resp)
}

// OverviewMonth is one month in the year overview; months without a
// stored record are present with Exists false.
type OverviewMonth struct {
	Month      int     `json:"month"`
	Exists     bool    `json:"exists"`
	TotalHours float64 `json:"total_hours"`
	IsPublic   bool    `json:"is_public"`
}

// handleOverview returns all twelve months of one year.
// GET /api/overview?year=Y
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("overview")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	_, year, ok := s.monthYearParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	summaries, err := s.db.ListYearSummaries(r.Context(), userID, year)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to load year overview")
		writeError(w, http.StatusInternalServerError, "failed to load overview")
		return
	}

	months := make([]OverviewMonth, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	for _, summary := range summaries {
		if summary.Month < 1 || summary.Month > 12 {
			continue
		}
		months[summary.Month-1] = OverviewMonth{
			Month:      summary.Month,
			Exists:     true,
			TotalHours: summary.TotalHours,
			IsPublic:   summary.IsPublic,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"months": months,
	})
}
