package middleware

import (
	"net/http"
	"time"

	"github.com/lectio/lectio/internal/metrics"
)

// Metrics records the duration of every request.
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			recorder.ObserveRequestDuration(time.Since(start))
		})
	}
}
