package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RequestDurationCount   uint64
	RequestDurationTotalNs int64

	BooksCreated     uint64
	BookCacheHits    uint64
	BookCacheMisses  uint64
	UsersCreated     uint64
	UsersUpdated     uint64
	UsersDeleted     uint64
	ClubsCreated     uint64
	SubscribeSuccess uint64
	SubscribeReject  uint64
	SubscribeFailed  uint64

	ActivityEventsPublished uint64
	ActivityEventsDropped   uint64
	ActivityEventsInvalid   uint64
}

// InMemoryRecorder stores metrics in memory and backs the /metrics endpoint.
type InMemoryRecorder struct {
	requestDurationCount   uint64
	requestDurationTotalNs int64

	booksCreated     uint64
	bookCacheHits    uint64
	bookCacheMisses  uint64
	usersCreated     uint64
	usersUpdated     uint64
	usersDeleted     uint64
	clubsCreated     uint64
	subscribeSuccess uint64
	subscribeReject  uint64
	subscribeFailed  uint64

	activityPublished uint64
	activityDropped   uint64
	activityInvalid   uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RequestDurationCount:    atomic.LoadUint64(&m.requestDurationCount),
		RequestDurationTotalNs:  atomic.LoadInt64(&m.requestDurationTotalNs),
		BooksCreated:            atomic.LoadUint64(&m.booksCreated),
		BookCacheHits:           atomic.LoadUint64(&m.bookCacheHits),
		BookCacheMisses:         atomic.LoadUint64(&m.bookCacheMisses),
		UsersCreated:            atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:            atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:            atomic.LoadUint64(&m.usersDeleted),
		ClubsCreated:            atomic.LoadUint64(&m.clubsCreated),
		SubscribeSuccess:        atomic.LoadUint64(&m.subscribeSuccess),
		SubscribeReject:         atomic.LoadUint64(&m.subscribeReject),
		SubscribeFailed:         atomic.LoadUint64(&m.subscribeFailed),
		ActivityEventsPublished: atomic.LoadUint64(&m.activityPublished),
		ActivityEventsDropped:   atomic.LoadUint64(&m.activityDropped),
		ActivityEventsInvalid:   atomic.LoadUint64(&m.activityInvalid),
	}
}

// ObserveRequestDuration records an HTTP request duration.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	atomic.AddUint64(&m.requestDurationCount, 1)
	atomic.AddInt64(&m.requestDurationTotalNs, duration.Nanoseconds())
}

// IncBookCreated increments book created counter.
func (m *InMemoryRecorder) IncBookCreated() {
	atomic.AddUint64(&m.booksCreated, 1)
}

// IncBookCacheHit increments book cache hit counter.
func (m *InMemoryRecorder) IncBookCacheHit() {
	atomic.AddUint64(&m.bookCacheHits, 1)
}

// IncBookCacheMiss increments book cache miss counter.
func (m *InMemoryRecorder) IncBookCacheMiss() {
	atomic.AddUint64(&m.bookCacheMisses, 1)
}

// IncUserCreated increments user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserUpdated increments user updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncClubCreated increments club created counter.
func (m *InMemoryRecorder) IncClubCreated() {
	atomic.AddUint64(&m.clubsCreated, 1)
}

// IncClubSubscribed increments the subscribe counter for status.
func (m *InMemoryRecorder) IncClubSubscribed(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.subscribeSuccess, 1)
	case "rejected":
		atomic.AddUint64(&m.subscribeReject, 1)
	default:
		atomic.AddUint64(&m.subscribeFailed, 1)
	}
}

// IncActivityEventPublished increments the activity event counter for status.
func (m *InMemoryRecorder) IncActivityEventPublished(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.activityPublished, 1)
	case "invalid":
		atomic.AddUint64(&m.activityInvalid, 1)
	default:
		atomic.AddUint64(&m.activityDropped, 1)
	}
}
