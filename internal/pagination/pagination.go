// Package pagination computes offset/limit page windows for list endpoints.
package pagination

import (
	"errors"
	"math"
	"strconv"
)

// DefaultLimit is the limit applied when the query parameter is absent.
const DefaultLimit = "0"

// ErrInvalidWindow indicates a malformed offset or limit parameter.
var ErrInvalidWindow = errors.New("invalid pagination window")

// Window describes which slice of a collection a request asks for.
type Window struct {
	// Page is the requested page index. Zero when pagination is disabled.
	Page int
	// Size is the requested page size as supplied by the client.
	Size int
	// Paged is false when every record should be returned.
	Paged bool
}

// Start returns the index of the first record in the window.
func (w Window) Start() int {
	return w.Page * w.Size
}

// Parse interprets decimal-string offset and limit query parameters.
// An absent offset (nil) or a limit of "0" disables pagination.
// The limit is validated even when pagination is disabled.
func Parse(offset *string, limit string) (Window, error) {
	if limit == "" {
		limit = DefaultLimit
	}

	size, err := parseNonNegative(limit)
	if err != nil {
		return Window{}, err
	}

	if offset == nil || limit == "0" {
		return Window{Page: 0, Size: size, Paged: false}, nil
	}

	page, err := parseNonNegative(*offset)
	if err != nil {
		return Window{}, err
	}

	if size > 0 && page > math.MaxInt32/size {
		return Window{}, ErrInvalidWindow
	}

	return Window{Page: page, Size: size, Paged: true}, nil
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrInvalidWindow
	}
	return n, nil
}

// Envelope wraps one page of records with the total store count.
type Envelope[T any] struct {
	NumRecords int64
	Page       int
	Size       int
	Records    []T
}

// NewEnvelope builds an envelope for the given window.
func NewEnvelope[T any](w Window, total int64, records []T) *Envelope[T] {
	if records == nil {
		records = []T{}
	}
	return &Envelope[T]{
		NumRecords: total,
		Page:       w.Page,
		Size:       w.Size,
		Records:    records,
	}
}

// IsEmpty reports whether the window returned no records.
func (e *Envelope[T]) IsEmpty() bool {
	return len(e.Records) == 0
}
