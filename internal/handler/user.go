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
	"github.com/lectio/lectio/internal/service"
)

// UserService is the user logic the handler depends on.
type UserService interface {
	CreateUser(ctx context.Context, input service.UserInput) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUser(ctx context.Context, key string) (*model.User, service.LookupKind, error)
	UpdateUser(ctx context.Context, id int64, input service.UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUserLists(ctx context.Context, id int64) ([]*model.UserList, error)
}

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc    UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

func toUserInput(req dto.UserRequest) service.UserInput {
	return service.UserInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Photo:      req.Photo,
		Additional: req.Additional,
	}
}

// isExpectedUserError reports whether err is a client-caused user failure.
func isExpectedUserError(err error) bool {
	return errors.Is(err, service.ErrInvalidInput) ||
		errors.Is(err, service.ErrInvalidRole) ||
		errors.Is(err, service.ErrEmailExists) ||
		errors.Is(err, service.ErrUserNotFound)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	const failure = "There was a problem, couldn't create user"

	var req dto.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRejection(h.logger, r, "invalid user body", err)
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), toUserInput(req))
	if err != nil {
		if isExpectedUserError(err) {
			logRejection(h.logger, r, "user rejected", err)
		} else {
			logFailure(h.logger, r, "create user failed", err)
		}
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	h.logger.Info("user_created", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusCreated, user)
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		logFailure(h.logger, r, "list users failed", err)
		writeMessage(w, http.StatusConflict, "There was a problem, couldn't get users")
		return
	}

	if len(users) == 0 {
		writeNoContent(w)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{key}, where key is a numeric id or an email.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	user, kind, err := h.svc.GetUser(r.Context(), key)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			logFailure(h.logger, r, "get user failed", err)
		}
		if kind == service.LookupByEmail {
			writeMessage(w, http.StatusConflict, "Couldn't find user with email "+key)
			return
		}
		writeMessage(w, http.StatusConflict, "Couldn't find user with id "+key)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{key}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	const failure = "There was a problem, couldn't update user"

	id, err := strconv.ParseInt(chi.URLParam(r, "key"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	var req dto.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRejection(h.logger, r, "invalid user body", err)
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), id, toUserInput(req))
	if err != nil {
		if isExpectedUserError(err) {
			logRejection(h.logger, r, "user update rejected", err)
		} else {
			logFailure(h.logger, r, "update user failed", err)
		}
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)
	writeJSON(w, http.StatusAccepted, user)
}

// Delete handles DELETE /api/users/{key}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "key")
	failure := "There was a problem, couldn't delete user with id " + raw

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			logFailure(h.logger, r, "delete user failed", err)
		}
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)
	writeMessage(w, http.StatusOK, "User deleted successfully")
}

// Lists handles GET /api/users/{key}/lists.
func (h *UserHandler) Lists(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "key")
	notFound := "Couldn't find user with id " + raw

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeMessage(w, http.StatusConflict, notFound)
		return
	}

	lists, err := h.svc.ListUserLists(r.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			logFailure(h.logger, r, "list user lists failed", err)
		}
		writeMessage(w, http.StatusConflict, notFound)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}
