package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lectio/lectio/internal/cache"
	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/pagination"
	"github.com/lectio/lectio/internal/repository"
)

// BookStore is the persistence contract for books.
type BookStore interface {
	CreateBook(ctx context.Context, book *model.Book) error
	GetBookByID(ctx context.Context, id int64) (*model.Book, error)
	ListBooks(ctx context.Context, start, limit int) ([]*model.Book, error)
	ListAllBooks(ctx context.Context) ([]*model.Book, error)
	CountBooks(ctx context.Context) (int64, error)
}

// BookCache is the read-through cache for single books.
type BookCache interface {
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	SetBook(ctx context.Context, book *model.Book, ttl time.Duration) error
	IsNegativelyCached(ctx context.Context, id int64) (bool, error)
	SetNegativeCache(ctx context.Context, id int64) error
	DeleteBook(ctx context.Context, id int64) error
}

// BookService handles book business logic.
type BookService struct {
	store   BookStore
	cache   BookCache
	ttl     time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewBookService creates a new BookService. A nil cache disables caching.
func NewBookService(store BookStore, bookCache BookCache, ttl time.Duration, logger *slog.Logger, recorder metrics.Recorder) *BookService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookService{
		store:   store,
		cache:   bookCache,
		ttl:     ttl,
		logger:  logger.With("component", "service.book"),
		metrics: recorder,
	}
}

// CreateBookInput defines input for creating a book.
type CreateBookInput struct {
	Title     string
	Author    string
	Publisher string
	Pages     int
	ISBN      string
	Genres    []string
	Synopsis  string
}

// CreateBook persists a new book. The ID is assigned by the store.
func (s *BookService) CreateBook(ctx context.Context, input CreateBookInput) (book *model.Book, err error) {
	ctx, span := tracer.Start(ctx, "BookService.CreateBook")
	defer func() { endSpan(span, err, ErrInvalidInput) }()

	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Pages < 0 {
		return nil, fmt.Errorf("%w: pages must not be negative", ErrInvalidInput)
	}

	genres := input.Genres
	if genres == nil {
		genres = []string{}
	}

	book = &model.Book{
		Title:     input.Title,
		Author:    input.Author,
		Publisher: input.Publisher,
		Pages:     input.Pages,
		ISBN:      input.ISBN,
		Genres:    genres,
		Synopsis:  input.Synopsis,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	s.metrics.IncBookCreated()
	span.SetAttributes(attribute.Int64("book.id", book.ID))

	// Warm the cache; this also clears any negative entry for the new ID.
	// If warming fails the entry is still dropped so the book stays visible.
	if s.cache != nil {
		if err := s.cache.SetBook(ctx, book, s.ttl); err != nil {
			s.logger.Warn("failed to cache new book", "book_id", book.ID, "error", err)
			if err := s.cache.DeleteBook(ctx, book.ID); err != nil {
				s.logger.Warn("failed to clear cached book", "book_id", book.ID, "error", err)
			}
		}
	}

	return book, nil
}

// GetBook retrieves a book by ID, cache first.
func (s *BookService) GetBook(ctx context.Context, id int64) (book *model.Book, err error) {
	ctx, span := tracer.Start(ctx, "BookService.GetBook", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer func() { endSpan(span, err, ErrBookNotFound) }()

	if s.cache != nil {
		cached, err := s.cache.GetBook(ctx, id)
		if err == nil {
			s.metrics.IncBookCacheHit()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}

		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncBookCacheMiss()
			if negative, _ := s.cache.IsNegativelyCached(ctx, id); negative {
				return nil, ErrBookNotFound
			}
		} else {
			// Redis error - fall through to DB
			s.logger.Warn("book cache lookup failed", "book_id", id, "error", err)
		}
	}

	book, err = s.store.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, id)
			}
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetBook(ctx, book, s.ttl); err != nil {
			s.logger.Warn("failed to backfill book cache", "book_id", id, "error", err)
		}
	}

	return book, nil
}

// ListBooks returns the requested window of books together with the total count.
// offset is nil when the client did not send one.
func (s *BookService) ListBooks(ctx context.Context, offset *string, limit string) (env *pagination.Envelope[*model.Book], err error) {
	ctx, span := tracer.Start(ctx, "BookService.ListBooks")
	defer func() { endSpan(span, err, ErrInvalidInput) }()

	window, err := pagination.Parse(offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	total, err := s.store.CountBooks(ctx)
	if err != nil {
		return nil, err
	}

	var books []*model.Book
	if window.Paged {
		books, err = s.store.ListBooks(ctx, window.Start(), window.Size)
	} else {
		books, err = s.store.ListAllBooks(ctx)
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("page", window.Page),
		attribute.Int("size", window.Size),
		attribute.Int("records", len(books)),
	)

	return pagination.NewEnvelope(window, total, books), nil
}
