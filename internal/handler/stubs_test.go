package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/pagination"
	"github.com/lectio/lectio/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func jsonReader(s string) io.Reader { return strings.NewReader(s) }

type stubBookService struct {
	createFn func(ctx context.Context, input service.CreateBookInput) (*model.Book, error)
	getFn    func(ctx context.Context, id int64) (*model.Book, error)
	listFn   func(ctx context.Context, offset *string, limit string) (*pagination.Envelope[*model.Book], error)
}

func (s *stubBookService) CreateBook(ctx context.Context, input service.CreateBookInput) (*model.Book, error) {
	return s.createFn(ctx, input)
}

func (s *stubBookService) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	return s.getFn(ctx, id)
}

func (s *stubBookService) ListBooks(ctx context.Context, offset *string, limit string) (*pagination.Envelope[*model.Book], error) {
	return s.listFn(ctx, offset, limit)
}

type stubUserService struct {
	createFn func(ctx context.Context, input service.UserInput) (*model.User, error)
	listFn   func(ctx context.Context) ([]*model.User, error)
	getFn    func(ctx context.Context, key string) (*model.User, service.LookupKind, error)
	updateFn func(ctx context.Context, id int64, input service.UserInput) (*model.User, error)
	deleteFn func(ctx context.Context, id int64) error
	listsFn  func(ctx context.Context, id int64) ([]*model.UserList, error)
}

func (s *stubUserService) CreateUser(ctx context.Context, input service.UserInput) (*model.User, error) {
	return s.createFn(ctx, input)
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) GetUser(ctx context.Context, key string) (*model.User, service.LookupKind, error) {
	return s.getFn(ctx, key)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id int64, input service.UserInput) (*model.User, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) ListUserLists(ctx context.Context, id int64) ([]*model.UserList, error) {
	return s.listsFn(ctx, id)
}

type stubClubService struct {
	createFn    func(ctx context.Context, input service.CreateClubInput) (*model.Club, error)
	listFn      func(ctx context.Context) ([]*model.Club, error)
	subscribeFn func(ctx context.Context, input service.SubscribeInput) (*model.ClubSubscription, error)
}

func (s *stubClubService) CreateClub(ctx context.Context, input service.CreateClubInput) (*model.Club, error) {
	return s.createFn(ctx, input)
}

func (s *stubClubService) ListClubs(ctx context.Context) ([]*model.Club, error) {
	return s.listFn(ctx)
}

func (s *stubClubService) Subscribe(ctx context.Context, input service.SubscribeInput) (*model.ClubSubscription, error) {
	return s.subscribeFn(ctx, input)
}

// serve routes a single request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target, body string, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, fn)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	msg, _ := resp["message"].(string)
	return msg
}
