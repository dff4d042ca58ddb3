package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smb_booking",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)

	scheduleSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "smb_booking",
			Name:      "schedule_saved_total",
			Help:      "Count of schedule months saved.",
		},
	)

	publicViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smb_booking",
			Name:      "public_view_total",
			Help:      "Count of public calendar views by result.",
		},
		[]string{"result"},
	)

	exports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "smb_booking",
			Name:      "export_total",
			Help:      "Count of schedule exports generated.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, scheduleSaved, publicViews, exports)
	})
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncScheduleSaved() {
	scheduleSaved.Inc()
}

func IncPublicView(result string) {
	publicViews.WithLabelValues(result).Inc()
}

func IncExport() {
	exports.Inc()
}
