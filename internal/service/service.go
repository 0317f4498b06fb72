// Package service provides business logic for the application.
package service

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service errors.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidRole  = errors.New("invalid role")

	ErrBookNotFound = errors.New("book not found")
	ErrUserNotFound = errors.New("user not found")
	ErrClubNotFound = errors.New("club not found")

	ErrEmailExists       = errors.New("email already exists")
	ErrAlreadySubscribed = errors.New("user already subscribed to club")

	ErrReadTimeWithoutBook = errors.New("read time set without a book")
	ErrBookWithoutReadTime = errors.New("book set without a read time")
	ErrMissingClubPassword = errors.New("private club requires a password")
	ErrIncorrectPassword   = errors.New("incorrect password")
)

var tracer = otel.Tracer("github.com/lectio/lectio/internal/service")

// PasswordHasher hashes and verifies secrets.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// endSpan records err on span unless it is one of the expected outcomes.
func endSpan(span trace.Span, err error, expected ...error) {
	defer span.End()
	if err == nil {
		return
	}
	for _, e := range expected {
		if errors.Is(err, e) {
			return
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
