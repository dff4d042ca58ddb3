package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/karubi02/smb-booking/internal/cache"
	"github.com/karubi02/smb-booking/internal/db"
	"github.com/karubi02/smb-booking/internal/metrics"
	"github.com/karubi02/smb-booking/internal/schedule"
	"github.com/karubi02/smb-booking/internal/slug"
)

// PublicDay is one calendar cell on the public page.
type PublicDay struct {
	Date    string                `json:"date"`
	Day     int                   `json:"day"`
	Closed  bool                  `json:"closed"`
	Periods []schedule.OpenPeriod `json:"periods,omitempty"`
}

// PublicScheduleResponse is the published view of one month, laid out
// as calendar weeks. Cells before the first and after the last day of
// the month are null.
type PublicScheduleResponse struct {
	Exists       bool           `json:"exists"`
	BusinessName string         `json:"business_name"`
	LogoURL      string         `json:"logo_url,omitempty"`
	BannerURL    string         `json:"banner_url,omitempty"`
	Month        int            `json:"month"`
	Year         int            `json:"year"`
	Weeks        [][]*PublicDay `json:"weeks,omitempty"`
	HasPrevMonth bool           `json:"has_prev_month"`
	HasNextMonth bool           `json:"has_next_month"`
}

// handlePublicSchedule serves a published month by slug. Responses are
// cached; every uncached hit also records a deduplicated view event.
// GET /api/public/{slug}?month=M&year=Y
func (s *Server) handlePublicSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("public_schedule")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.allowPublic(w, r) {
		return
	}

	slugValue := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/public/"), "/")
	if reason := slug.Validate(slugValue); reason != "" {
		writeError(w, http.StatusBadRequest, reason)
		return
	}
	month, year, ok := s.monthYearParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid month/year")
		return
	}

	profile, err := s.db.GetProfileBySlug(r.Context(), slugValue)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			metrics.IncPublicView("not_found")
			writeError(w, http.StatusNotFound, "calendar not found")
			return
		}
		s.log.Error().Err(err).Str("slug", slugValue).Msg("failed to resolve slug")
		writeError(w, http.StatusInternalServerError, "failed to load calendar")
		return
	}

	cacheKey := cache.PublicScheduleKey(slugValue, month, year)
	var resp PublicScheduleResponse
	if s.cache.GetJSON(r.Context(), cacheKey, &resp) {
		metrics.IncPublicView("cache_hit")
		s.trackView(r, profile, slugValue)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp = PublicScheduleResponse{
		BusinessName: profile.BusinessLabel(),
		LogoURL:      profile.LogoURL,
		BannerURL:    profile.BannerURL,
		Month:        month,
		Year:         year,
	}

	rec, err := s.db.GetPublicSchedule(r.Context(), profile.ID, month, year)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.log.Error().Err(err).Str("slug", slugValue).Msg("failed to load public schedule")
		writeError(w, http.StatusInternalServerError, "failed to load calendar")
		return
	}
	if rec != nil {
		resp.Exists = true
		resp.Weeks = buildWeeks(rec.Data, time.Month(month), year)
	}

	prevMonth, prevYear := month-1, year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, year-1
	}
	nextMonth, nextYear := month+1, year
	if nextMonth == 13 {
		nextMonth, nextYear = 1, year+1
	}
	resp.HasPrevMonth, _ = s.db.HasPublicSchedule(r.Context(), profile.ID, prevMonth, prevYear)
	resp.HasNextMonth, _ = s.db.HasPublicSchedule(r.Context(), profile.ID, nextMonth, nextYear)

	s.cache.SetJSON(r.Context(), cacheKey, resp)
	metrics.IncPublicView("ok")
	s.trackView(r, profile, slugValue)

	writeJSON(w, http.StatusOK, resp)
}

// buildWeeks lays the month out as Sunday-first calendar weeks. Days
// with no stored entry fall back to the default opening hours.
func buildWeeks(ms schedule.MonthlySchedule, month time.Month, year int) [][]*PublicDay {
	firstWeekday := int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
	days := schedule.DaysInMonth(year, month)

	var weeks [][]*PublicDay
	week := make([]*PublicDay, 0, 7)
	for i := 0; i < firstWeekday; i++ {
		week = append(week, nil)
	}

	for day := 1; day <= days; day++ {
		dateStr := schedule.DateKey(year, month, day)
		entry, ok := ms[dateStr]
		if !ok {
			entry = schedule.DefaultDay()
		}

		cell := &PublicDay{Date: dateStr, Day: day, Closed: entry.Closed}
		if !entry.Closed {
			cell.Periods = schedule.OpenPeriods(entry)
		}
		week = append(week, cell)

		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]*PublicDay, 0, 7)
		}
	}

	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, nil)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// trackView records one view event, collapsing repeats from the same
// visitor within the dedup window.
func (s *Server) trackView(r *http.Request, profile *db.Profile, slugValue string) {
	ip := clientIP(r)
	dedupKey := cache.ViewDedupKey(slugValue, ip, s.now().Format("2006-01-02"))
	if !s.cache.Once(r.Context(), dedupKey, s.dedupWindow) {
		return
	}

	err := s.db.InsertView(r.Context(), db.ViewRecord{
		UserID:     profile.ID,
		PublicSlug: slugValue,
		IPAddress:  ip,
		UserAgent:  r.UserAgent(),
		Referrer:   r.Referer(),
	})
	if err != nil {
		// View tracking must never fail the page.
		s.log.Warn().Err(err).Str("slug", slugValue).Msg("failed to record view")
	}
}

// handleCheckSlug reports whether a user-chosen slug is valid and free.
// GET /api/check-slug?slug=...
func (s *Server) handleCheckSlug(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("check_slug")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.allowPublic(w, r) {
		return
	}

	slugValue := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("slug")))
	if reason := slug.Validate(slugValue); reason != "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"available": false,
			"error":     reason,
		})
		return
	}

	taken, err := s.db.IsSlugTaken(r.Context(), slugValue)
	if err != nil {
		s.log.Error().Err(err).Str("slug", slugValue).Msg("failed to check slug")
		writeError(w, http.StatusInternalServerError, "failed to check slug")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"available": !taken,
		"slug":      slugValue,
	})
}
