package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/karubi02/smb-booking/internal/db"
	"github.com/karubi02/smb-booking/internal/events"
	"github.com/karubi02/smb-booking/internal/metrics"
	"github.com/karubi02/smb-booking/internal/report"
	"github.com/karubi02/smb-booking/internal/schedule"
	"github.com/karubi02/smb-booking/internal/slug"
)

// slugAttempts bounds the retry loop when a generated slug collides.
const slugAttempts = 5

// ScheduleResponse is the owner view of one stored month.
type ScheduleResponse struct {
	Exists       bool                     `json:"exists"`
	Month        int                      `json:"month"`
	Year         int                      `json:"year"`
	ScheduleData schedule.MonthlySchedule `json:"schedule_data,omitempty"`
	IsPublic     bool                     `json:"is_public"`
	TotalHours   float64                  `json:"total_hours"`
	PublicSlug   string                   `json:"public_slug,omitempty"`
	UpdatedAt    *time.Time               `json:"updated_at,omitempty"`
}

// SaveScheduleRequest is the body of PUT /api/schedule. ScheduleData
// is kept raw so any historical shape can be submitted; it is
// normalized before persisting.
type SaveScheduleRequest struct {
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	ScheduleData json.RawMessage `json:"schedule_data"`
	IsPublic     bool            `json:"is_public"`
}

// handleSchedule dispatches /api/schedule by method.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetSchedule(w, r)
	case http.MethodPut:
		s.handleSaveSchedule(w, r)
	case http.MethodDelete:
		s.handleDeleteSchedule(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleGetSchedule returns the stored month for the authenticated
// user. A month without a record is a normal answer, not an error.
// GET /api/schedule?month=M&year=Y
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_schedule")

	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	month, year, ok := s.monthYearParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid month/year")
		return
	}

	resp := ScheduleResponse{Month: month, Year: year}

	rec, err := s.db.GetSchedule(r.Context(), userID, month, year)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to load schedule")
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}
	if rec != nil {
		resp.Exists = true
		resp.ScheduleData = rec.Data
		resp.IsPublic = rec.IsPublic
		resp.TotalHours = rec.TotalHours
		resp.UpdatedAt = &rec.UpdatedAt
	}

	if profile, err := s.db.GetProfile(r.Context(), userID); err == nil {
		resp.PublicSlug = profile.PublicSlug
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSaveSchedule upserts a month record. The total-hours cache is
// recomputed server-side and a public slug is generated on first
// publish.
// PUT /api/schedule
func (s *Server) handleSaveSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("save_schedule")

	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}

	var req SaveScheduleRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validMonthYear(req.Month, req.Year) {
		writeError(w, http.StatusBadRequest, "invalid month/year")
		return
	}

	if err := s.db.EnsureProfile(r.Context(), userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to ensure profile")
		writeError(w, http.StatusInternalServerError, "failed to save schedule")
		return
	}

	// Accept any historical shape, store the canonical one.
	data := schedule.NormalizeMonth(req.ScheduleData)
	schedule.EnsureBreakIDs(data)

	publicSlug, err := s.ensurePublicSlug(r, userID, req.IsPublic)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to assign public slug")
		writeError(w, http.StatusInternalServerError, "failed to generate public link")
		return
	}

	totalHours, err := s.db.UpsertSchedule(r.Context(), userID, req.Month, req.Year, data, req.IsPublic)
	if err != nil {
		s.log.Error().Err(err).
			Str("user_id", userID).
			Int("month", req.Month).
			Int("year", req.Year).
			Msg("failed to save schedule")
		writeError(w, http.StatusInternalServerError, "failed to save schedule")
		return
	}

	metrics.IncScheduleSaved()
	s.bus.Publish(events.Event{
		Type: events.TypeScheduleSaved,
		Schedule: events.ScheduleEvent{
			UserID:     userID,
			PublicSlug: publicSlug,
			Month:      req.Month,
			Year:       req.Year,
		},
	})

	s.log.Info().
		Str("user_id", userID).
		Int("month", req.Month).
		Int("year", req.Year).
		Float64("total_hours", totalHours).
		Bool("is_public", req.IsPublic).
		Msg("schedule saved")

	writeJSON(w, http.StatusOK, map[string]any{
		"total_hours": totalHours,
		"public_slug": publicSlug,
	})
}

// ensurePublicSlug returns the user's slug, generating one on first
// publish. Generated slugs retry on collision.
func (s *Server) ensurePublicSlug(r *http.Request, userID string, isPublic bool) (string, error) {
	profile, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		return "", err
	}
	if profile.PublicSlug != "" || !isPublic {
		return profile.PublicSlug, nil
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		candidate := slug.New()
		taken, err := s.db.IsSlugTaken(r.Context(), candidate)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}
		if err := s.db.SetPublicSlug(r.Context(), userID, candidate); err != nil {
			return "", err
		}
		return candidate, nil
	}
	return "", fmt.Errorf("could not find a free slug in %d attempts", slugAttempts)
}

// handleDeleteSchedule removes the whole month record.
// DELETE /api/schedule?month=M&year=Y
func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_schedule")

	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	month, year, ok := s.monthYearParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid month/year")
		return
	}

	if err := s.db.DeleteSchedule(r.Context(), userID, month, year); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule not found")
			return
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to delete schedule")
		writeError(w, http.StatusInternalServerError, "failed to delete schedule")
		return
	}

	publicSlug := ""
	if profile, err := s.db.GetProfile(r.Context(), userID); err == nil {
		publicSlug = profile.PublicSlug
	}
	s.bus.Publish(events.Event{
		Type: events.TypeScheduleDeleted,
		Schedule: events.ScheduleEvent{
			UserID:     userID,
			PublicSlug: publicSlug,
			Month:      month,
			Year:       year,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// MonthRequest selects the month for the copy/defaults helpers.
type MonthRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// handleCopyPrevious fills a month with the previous month's data.
// POST /api/schedule/copy-previous
func (s *Server) handleCopyPrevious(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("copy_previous")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}

	var req MonthRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validMonthYear(req.Month, req.Year) {
		writeError(w, http.StatusBadRequest, "invalid month/year")
		return
	}

	prevMonth, prevYear := req.Month-1, req.Year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, req.Year-1
	}

	prev, err := s.db.GetSchedule(r.Context(), userID, prevMonth, prevYear)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no schedule found for the previous month")
			return
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to load previous schedule")
		writeError(w, http.StatusInternalServerError, "failed to copy schedule")
		return
	}

	s.saveGeneratedMonth(w, r, userID, req.Month, req.Year, prev.Data)
}

// handleApplyDefaults fills every day of a month with the default
// opening hours.
// POST /api/schedule/defaults
func (s *Server) handleApplyDefaults(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("apply_defaults")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}

	var req MonthRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validMonthYear(req.Month, req.Year) {
		writeError(w, http.StatusBadRequest, "invalid month/year")
		return
	}

	month := time.Month(req.Month)
	data := schedule.MonthlySchedule{}
	for day := 1; day <= schedule.DaysInMonth(req.Year, month); day++ {
		data[schedule.DateKey(req.Year, month, day)] = schedule.DefaultDay()
	}

	s.saveGeneratedMonth(w, r, userID, req.Month, req.Year, data)
}

// saveGeneratedMonth persists server-built month data, preserving the
// publication flag of an existing record.
func (s *Server) saveGeneratedMonth(w http.ResponseWriter, r *http.Request, userID string, month, year int, data schedule.MonthlySchedule) {
	if err := s.db.EnsureProfile(r.Context(), userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to ensure profile")
		writeError(w, http.StatusInternalServerError, "failed to save schedule")
		return
	}

	isPublic := false
	if existing, err := s.db.GetSchedule(r.Context(), userID, month, year); err == nil {
		isPublic = existing.IsPublic
	}

	schedule.EnsureBreakIDs(data)
	totalHours, err := s.db.UpsertSchedule(r.Context(), userID, month, year, data, isPublic)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to save schedule")
		writeError(w, http.StatusInternalServerError, "failed to save schedule")
		return
	}

	metrics.IncScheduleSaved()
	publicSlug := ""
	if profile, err := s.db.GetProfile(r.Context(), userID); err == nil {
		publicSlug = profile.PublicSlug
	}
	s.bus.Publish(events.Event{
		Type: events.TypeScheduleSaved,
		Schedule: events.ScheduleEvent{
			UserID:     userID,
			PublicSlug: publicSlug,
			Month:      month,
			Year:       year,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"total_hours":   totalHours,
		"schedule_data": data,
	})
}

// handleExport streams the month as an xlsx workbook.
// GET /api/schedule/export?month=M&year=Y
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_schedule")

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

	rec, err := s.db.GetSchedule(r.Context(), userID, month, year)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule not found")
			return
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to load schedule")
		writeError(w, http.StatusInternalServerError, "failed to export schedule")
		return
	}

	businessName := "Business"
	if profile, err := s.db.GetProfile(r.Context(), userID); err == nil {
		businessName = profile.BusinessLabel()
	}

	filename := fmt.Sprintf("schedule_%04d-%02d.xlsx", year, month)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := report.WriteMonthly(w, businessName, rec.Data, time.Month(month), year); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to write export")
		return
	}
	metrics.IncExport()
}
