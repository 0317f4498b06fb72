package handler

import (
	"fmt"
	"net/http"

	"github.com/lectio/lectio/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "lectio_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "lectio_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)

	writeMetric(w, "lectio_books_created_total %d\n", snap.BooksCreated)
	writeMetric(w, "lectio_book_cache_hits_total %d\n", snap.BookCacheHits)
	writeMetric(w, "lectio_book_cache_misses_total %d\n", snap.BookCacheMisses)

	writeMetric(w, "lectio_users_created_total %d\n", snap.UsersCreated)
	writeMetric(w, "lectio_users_updated_total %d\n", snap.UsersUpdated)
	writeMetric(w, "lectio_users_deleted_total %d\n", snap.UsersDeleted)

	writeMetric(w, "lectio_clubs_created_total %d\n", snap.ClubsCreated)
	writeMetric(w, "lectio_club_subscriptions_total{status=\"success\"} %d\n", snap.SubscribeSuccess)
	writeMetric(w, "lectio_club_subscriptions_total{status=\"rejected\"} %d\n", snap.SubscribeReject)
	writeMetric(w, "lectio_club_subscriptions_total{status=\"failed\"} %d\n", snap.SubscribeFailed)

	writeMetric(w, "lectio_activity_events_published_total{status=\"success\"} %d\n", snap.ActivityEventsPublished)
	writeMetric(w, "lectio_activity_events_published_total{status=\"dropped\"} %d\n", snap.ActivityEventsDropped)
	writeMetric(w, "lectio_activity_events_published_total{status=\"invalid\"} %d\n", snap.ActivityEventsInvalid)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
