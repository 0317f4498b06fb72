// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// HTTP metrics
	ObserveRequestDuration(duration time.Duration)

	// Book metrics
	IncBookCreated()
	IncBookCacheHit()
	IncBookCacheMiss()

	// User metrics
	IncUserCreated()
	IncUserUpdated()
	IncUserDeleted()

	// Club metrics
	IncClubCreated()
	IncClubSubscribed(status string) // status: "success", "rejected" or "failed"

	// Activity stream metrics
	IncActivityEventPublished(status string) // status: "success", "dropped" or "invalid"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
