package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequestDuration is a no-op.
func (n *NoopRecorder) ObserveRequestDuration(duration time.Duration) {}

// IncBookCreated is a no-op.
func (n *NoopRecorder) IncBookCreated() {}

// IncBookCacheHit is a no-op.
func (n *NoopRecorder) IncBookCacheHit() {}

// IncBookCacheMiss is a no-op.
func (n *NoopRecorder) IncBookCacheMiss() {}

// IncUserCreated is a no-op.
func (n *NoopRecorder) IncUserCreated() {}

// IncUserUpdated is a no-op.
func (n *NoopRecorder) IncUserUpdated() {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// IncClubCreated is a no-op.
func (n *NoopRecorder) IncClubCreated() {}

// IncClubSubscribed is a no-op.
func (n *NoopRecorder) IncClubSubscribed(status string) {}

// IncActivityEventPublished is a no-op.
func (n *NoopRecorder) IncActivityEventPublished(status string) {}
