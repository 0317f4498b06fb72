package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lectio/lectio/internal/events"
	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/repository"
)

// ClubStore is the persistence contract for clubs and subscriptions.
type ClubStore interface {
	CreateClub(ctx context.Context, club *model.Club) error
	GetClubByID(ctx context.Context, id int64) (*model.Club, error)
	ListClubs(ctx context.Context) ([]*model.Club, error)
	Subscribe(ctx context.Context, sub model.ClubSubscription) (int64, error)
}

// ClubService handles club business logic.
type ClubService struct {
	store   ClubStore
	hasher  PasswordHasher
	events  events.Sink
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewClubService creates a new ClubService.
func NewClubService(store ClubStore, hasher PasswordHasher, sink events.Sink, logger *slog.Logger, recorder metrics.Recorder) *ClubService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if sink == nil {
		sink = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClubService{
		store:   store,
		hasher:  hasher,
		events:  sink,
		logger:  logger.With("component", "service.club"),
		metrics: recorder,
	}
}

// CreateClubInput defines input for creating a club.
type CreateClubInput struct {
	Name        string
	Description string
	Creator     string
	BookID      *int64
	ReadTime    *int64 // Epoch milliseconds
	IsPrivate   bool
	Password    *string // Only used when IsPrivate
}

// ValidateReading enforces that a book and a read time are set together.
func ValidateReading(bookID, readTime *int64) error {
	if bookID == nil && readTime != nil {
		return ErrReadTimeWithoutBook
	}
	if bookID != nil && readTime == nil {
		return ErrBookWithoutReadTime
	}
	return nil
}

// CreateClub validates and stores a new club with zero subscribers.
func (s *ClubService) CreateClub(ctx context.Context, input CreateClubInput) (club *model.Club, err error) {
	ctx, span := tracer.Start(ctx, "ClubService.CreateClub")
	defer func() {
		endSpan(span, err, ErrReadTimeWithoutBook, ErrBookWithoutReadTime, ErrMissingClubPassword, ErrInvalidInput)
	}()

	if err := ValidateReading(input.BookID, input.ReadTime); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Creator) == "" {
		return nil, fmt.Errorf("%w: club name and creator are required", ErrInvalidInput)
	}

	club = &model.Club{
		Name:        input.Name,
		Description: input.Description,
		Creator:     input.Creator,
		BookID:      input.BookID,
		ReadTime:    input.ReadTime,
		IsPrivate:   input.IsPrivate,
	}

	// Public clubs drop any supplied password.
	if input.IsPrivate {
		if input.Password == nil || *input.Password == "" {
			return nil, ErrMissingClubPassword
		}
		club.PasswordHash, err = s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash club password: %w", err)
		}
	}

	if err := s.store.CreateClub(ctx, club); err != nil {
		if errors.Is(err, repository.ErrInvalidReading) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}

	s.metrics.IncClubCreated()
	span.SetAttributes(attribute.Int64("club.id", club.ID), attribute.Bool("club.private", club.IsPrivate))

	var bookID int64
	if club.HasReading() {
		bookID = *club.BookID
	}
	s.events.PublishAsync(events.ClubCreated(club.ID, bookID, nowUTC()))

	return club, nil
}

// ListClubs returns every club in insertion order.
func (s *ClubService) ListClubs(ctx context.Context) (clubs []*model.Club, err error) {
	ctx, span := tracer.Start(ctx, "ClubService.ListClubs")
	defer func() { endSpan(span, err) }()

	clubs, err = s.store.ListClubs(ctx)
	if err != nil {
		return nil, err
	}
	if clubs == nil {
		clubs = []*model.Club{}
	}
	return clubs, nil
}

// SubscribeInput defines input for subscribing a user to a club.
type SubscribeInput struct {
	UserID int64
	ClubID int64
	// Password is the plaintext club password. Nil when the request carried none.
	Password *string
}

// Subscribe verifies the club password when the club is private, then records
// the subscription and increments the counter in one transaction.
func (s *ClubService) Subscribe(ctx context.Context, input SubscribeInput) (sub *model.ClubSubscription, err error) {
	ctx, span := tracer.Start(ctx, "ClubService.Subscribe", trace.WithAttributes(
		attribute.Int64("user.id", input.UserID),
		attribute.Int64("club.id", input.ClubID),
	))
	defer func() {
		switch {
		case err == nil:
			s.metrics.IncClubSubscribed("success")
		case errors.Is(err, ErrIncorrectPassword), errors.Is(err, ErrAlreadySubscribed):
			s.metrics.IncClubSubscribed("rejected")
		default:
			s.metrics.IncClubSubscribed("failed")
		}
		endSpan(span, err, ErrClubNotFound, ErrIncorrectPassword, ErrAlreadySubscribed, ErrInvalidInput)
	}()

	club, err := s.store.GetClubByID(ctx, input.ClubID)
	if err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	if club.IsPrivate {
		if input.Password == nil {
			return nil, fmt.Errorf("%w: password is required for private clubs", ErrInvalidInput)
		}
		ok, err := s.hasher.Verify(*input.Password, club.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("failed to verify club password: %w", err)
		}
		if !ok {
			return nil, ErrIncorrectPassword
		}
	}

	record := model.ClubSubscription{UserID: input.UserID, ClubID: input.ClubID}
	subscribers, err := s.store.Subscribe(ctx, record)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadySubscribed):
			return nil, ErrAlreadySubscribed
		case errors.Is(err, repository.ErrClubNotFound):
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("club.subscribers", subscribers))
	s.logger.Debug("user subscribed to club",
		"user_id", input.UserID,
		"club_id", input.ClubID,
		"subscribers", subscribers,
	)
	s.events.PublishAsync(events.ClubSubscribed(input.UserID, input.ClubID, nowUTC()))

	return &record, nil
}
