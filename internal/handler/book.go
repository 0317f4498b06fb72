package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lectio/lectio/internal/handler/dto"
	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/pagination"
	"github.com/lectio/lectio/internal/service"
)

// BookService is the book logic the handler depends on.
type BookService interface {
	CreateBook(ctx context.Context, input service.CreateBookInput) (*model.Book, error)
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	ListBooks(ctx context.Context, offset *string, limit string) (*pagination.Envelope[*model.Book], error)
}

// BookHandler handles HTTP requests for book operations.
type BookHandler struct {
	svc    BookService
	logger *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(svc BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	const failure = "There was a problem, couldn't create book"

	var req dto.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRejection(h.logger, r, "invalid book body", err)
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	book, err := h.svc.CreateBook(r.Context(), service.CreateBookInput{
		Title:     req.Title,
		Author:    req.Author,
		Publisher: req.Publisher,
		Pages:     req.Pages,
		ISBN:      req.ISBN,
		Genres:    req.Genres,
		Synopsis:  req.Synopsis,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			logRejection(h.logger, r, "book rejected", err)
		} else {
			logFailure(h.logger, r, "create book failed", err)
		}
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	h.logger.Info("book_created", "book_id", book.ID)
	writeJSON(w, http.StatusCreated, book)
}

// List handles GET /api/books?offset=&limit=.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var offset *string
	if query.Has("offset") {
		v := query.Get("offset")
		offset = &v
	}
	limit := pagination.DefaultLimit
	if query.Has("limit") {
		limit = query.Get("limit")
	}

	env, err := h.svc.ListBooks(r.Context(), offset, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			logRejection(h.logger, r, "invalid book window", err)
		} else {
			logFailure(h.logger, r, "list books failed", err)
		}
		writeMessage(w, http.StatusConflict, "There was a problem, couldn't get books")
		return
	}

	if env.IsEmpty() {
		writeNoContent(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookListResponse(env))
}

// Get handles GET /api/books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	notFound := "Couldn't find book with id " + raw

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeMessage(w, http.StatusConflict, notFound)
		return
	}

	book, err := h.svc.GetBook(r.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrBookNotFound) {
			logFailure(h.logger, r, "get book failed", err)
		}
		writeMessage(w, http.StatusConflict, notFound)
		return
	}

	writeJSON(w, http.StatusOK, book)
}
