package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf16"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lectio/lectio/internal/events"
	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/repository"
)

// legacyPlaintextMaxLen is the longest password the previous backend stored
// unhashed, counted in UTF-16 code units.
const legacyPlaintextMaxLen = 2

// UserStore is the persistence contract for users and their lists.
type UserStore interface {
	CreateUserWithLists(ctx context.Context, user *model.User, lists []model.UserList) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUserLists(ctx context.Context, userID int64) ([]*model.UserList, error)
}

// UserOptions tunes UserService behavior.
type UserOptions struct {
	// LegacyShortPasswords stores passwords of up to two characters without hashing.
	LegacyShortPasswords bool
}

// UserService handles user business logic.
type UserService struct {
	store   UserStore
	hasher  PasswordHasher
	events  events.Sink
	logger  *slog.Logger
	metrics metrics.Recorder
	opts    UserOptions
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, hasher PasswordHasher, sink events.Sink, logger *slog.Logger, recorder metrics.Recorder, opts UserOptions) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if sink == nil {
		sink = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:   store,
		hasher:  hasher,
		events:  sink,
		logger:  logger.With("component", "service.user"),
		metrics: recorder,
		opts:    opts,
	}
}

// UserInput defines the client-supplied profile of a user.
type UserInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string // Ignored on update
	Role       string
	Photo      *string
	Additional *string
}

func (in UserInput) profile() (*model.User, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	role := model.Role(in.Role)
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return &model.User{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Role:       role,
		Photo:      in.Photo,
		Additional: in.Additional,
	}, nil
}

// CreateUser hashes the password and stores the user with its default lists.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (user *model.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.CreateUser")
	defer func() { endSpan(span, err, ErrInvalidInput, ErrInvalidRole, ErrEmailExists) }()

	user, err = input.profile()
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	user.PasswordHash, err = s.encodePassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	names := model.DefaultListNames()
	lists := make([]model.UserList, len(names))
	for i, name := range names {
		lists[i] = model.UserList{Name: name}
	}

	if err := s.store.CreateUserWithLists(ctx, user, lists); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.metrics.IncUserCreated()
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	s.events.PublishAsync(events.UserCreated(user.ID, nowUTC()))

	return user, nil
}

func (s *UserService) encodePassword(password string) (string, error) {
	if s.opts.LegacyShortPasswords && len(utf16.Encode([]rune(password))) <= legacyPlaintextMaxLen {
		return password, nil
	}
	return s.hasher.Hash(password)
}

// ListUsers returns every user in insertion order.
func (s *UserService) ListUsers(ctx context.Context) (users []*model.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.ListUsers")
	defer func() { endSpan(span, err) }()

	return s.store.ListUsers(ctx)
}

// LookupKind tells which field a user lookup key matched.
type LookupKind int

const (
	LookupByID LookupKind = iota
	LookupByEmail
)

// ParseLookupKey classifies key as a numeric id or an email.
// Any string parseable as a base-10 int64 is an id.
func ParseLookupKey(key string) (LookupKind, int64) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return LookupByID, id
	}
	return LookupByEmail, 0
}

// GetUser resolves key as an id when numeric and as an email otherwise.
func (s *UserService) GetUser(ctx context.Context, key string) (user *model.User, kind LookupKind, err error) {
	ctx, span := tracer.Start(ctx, "UserService.GetUser")
	defer func() { endSpan(span, err, ErrUserNotFound) }()

	kind, id := ParseLookupKey(key)
	if kind == LookupByID {
		span.SetAttributes(attribute.Int64("user.id", id))
		user, err = s.store.GetUserByID(ctx, id)
	} else {
		span.SetAttributes(attribute.String("lookup", "email"))
		user, err = s.store.GetUserByEmail(ctx, key)
	}

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, kind, ErrUserNotFound
		}
		return nil, kind, err
	}

	return user, kind, nil
}

// UpdateUser replaces every mutable profile field of an existing user.
// The stored password is never changed.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UserInput) (user *model.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.UpdateUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err, ErrInvalidInput, ErrInvalidRole, ErrUserNotFound, ErrEmailExists) }()

	replacement, err := input.profile()
	if err != nil {
		return nil, err
	}

	user, err = s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Replace(replacement)

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.metrics.IncUserUpdated()
	return user, nil
}

// DeleteUser removes a user. Its reading lists are left in place.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "UserService.DeleteUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err, ErrUserNotFound) }()

	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.metrics.IncUserDeleted()
	return nil
}

// ListUserLists returns the reading lists of an existing user.
func (s *UserService) ListUserLists(ctx context.Context, id int64) (lists []*model.UserList, err error) {
	ctx, span := tracer.Start(ctx, "UserService.ListUserLists", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err, ErrUserNotFound) }()

	if _, err := s.store.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	lists, err = s.store.ListUserLists(ctx, id)
	if err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []*model.UserList{}
	}
	return lists, nil
}
