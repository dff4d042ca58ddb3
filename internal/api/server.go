// Package api exposes the owner and public HTTP endpoints of the
// schedule service.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/karubi02/smb-booking/internal/cache"
	"github.com/karubi02/smb-booking/internal/db"
	"github.com/karubi02/smb-booking/internal/events"
)

// Options configures the HTTP server.
type Options struct {
	// APIKey guards the owner endpoints. Empty disables the check
	// (local development).
	APIKey string

	// RequestsPerSecond / Burst rate-limit the public endpoints per
	// client IP.
	RequestsPerSecond float64
	Burst             int

	// ViewDedupWindow is how long repeat views from the same visitor
	// are collapsed into one recorded view.
	ViewDedupWindow time.Duration
}

// Server handles HTTP requests for the schedule service.
type Server struct {
	db          *db.DB
	cache       *cache.Cache
	bus         *events.Bus
	log         *zerolog.Logger
	apiKey      string
	limiter     *ipLimiter
	dedupWindow time.Duration

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewServer wires the server and subscribes cache invalidation to
// schedule-change events.
func NewServer(database *db.DB, c *cache.Cache, bus *events.Bus, opts Options, logger *zerolog.Logger) *Server {
	s := &Server{
		db:          database,
		cache:       c,
		bus:         bus,
		log:         logger,
		apiKey:      opts.APIKey,
		limiter:     newIPLimiter(opts.RequestsPerSecond, opts.Burst),
		dedupWindow: opts.ViewDedupWindow,
		now:         time.Now,
	}

	invalidate := func(event events.Event) {
		if event.Schedule.PublicSlug == "" {
			return
		}
		key := cache.PublicScheduleKey(event.Schedule.PublicSlug, event.Schedule.Month, event.Schedule.Year)
		s.cache.Delete(context.Background(), key)
	}
	bus.Subscribe(events.TypeScheduleSaved, invalidate)
	bus.Subscribe(events.TypeScheduleDeleted, invalidate)

	return s
}

// Handler returns the routing mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Owner endpoints
	mux.HandleFunc("/api/schedule", s.handleSchedule)
	mux.HandleFunc("/api/schedule/copy-previous", s.handleCopyPrevious)
	mux.HandleFunc("/api/schedule/defaults", s.handleApplyDefaults)
	mux.HandleFunc("/api/schedule/export", s.handleExport)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/overview", s.handleOverview)

	// Public endpoints
	mux.HandleFunc("/api/check-slug", s.handleCheckSlug)
	mux.HandleFunc("/api/public/", s.handlePublicSchedule)

	return mux
}

// authUser validates the API key and extracts the authenticated user
// id forwarded by the identity proxy.
func (s *Server) authUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.apiKey != "" && r.Header.Get("x-api-key") != s.apiKey {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return "", false
	}

	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return "", false
	}
	return userID, true
}

// allowPublic applies the per-IP rate limit to public endpoints.
func (s *Server) allowPublic(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter.Allow(clientIP(r)) {
		return true
	}
	writeError(w, http.StatusTooManyRequests, "too many requests")
	return false
}

// monthYearParams reads month/year query parameters, defaulting to the
// current month.
func (s *Server) monthYearParams(r *http.Request) (month, year int, ok bool) {
	now := s.now()
	month, year = int(now.Month()), now.Year()

	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		month = parsed
	}
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = parsed
	}

	if !validMonthYear(month, year) {
		return 0, 0, false
	}
	return month, year, true
}

func validMonthYear(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 2100
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
