package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lectio/lectio/internal/handler/dto"
	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/service"
)

// ClubService is the club logic the handler depends on.
type ClubService interface {
	CreateClub(ctx context.Context, input service.CreateClubInput) (*model.Club, error)
	ListClubs(ctx context.Context) ([]*model.Club, error)
	Subscribe(ctx context.Context, input service.SubscribeInput) (*model.ClubSubscription, error)
}

// ClubHandler handles HTTP requests for club operations.
type ClubHandler struct {
	svc    ClubService
	logger *slog.Logger
}

// NewClubHandler creates a new ClubHandler.
func NewClubHandler(svc ClubService, logger *slog.Logger) *ClubHandler {
	return &ClubHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/clubs.
func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	const failure = "Couldn't create club, there was a conflict"

	var req dto.CreateClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRejection(h.logger, r, "invalid club body", err)
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	club, err := h.svc.CreateClub(r.Context(), service.CreateClubInput{
		Name:        req.Name,
		Description: req.Description,
		Creator:     req.Creator,
		BookID:      req.BookID,
		ReadTime:    req.ReadTime,
		IsPrivate:   req.IsPrivate,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReadTimeWithoutBook):
			writeMessage(w, http.StatusConflict, "Couldn't create club, there wasn't any book in the time specified")
		case errors.Is(err, service.ErrBookWithoutReadTime):
			writeMessage(w, http.StatusConflict, "Couldn't create club, there wasn't any time to read the specified book")
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrMissingClubPassword):
			logRejection(h.logger, r, "club rejected", err)
			writeMessage(w, http.StatusConflict, failure)
		default:
			logFailure(h.logger, r, "create club failed", err)
			writeMessage(w, http.StatusConflict, failure)
		}
		return
	}

	h.logger.Info("club_created", "club_id", club.ID, "private", club.IsPrivate)
	writeJSON(w, http.StatusCreated, club)
}

// List handles GET /api/clubs.
func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.svc.ListClubs(r.Context())
	if err != nil {
		logFailure(h.logger, r, "list clubs failed", err)
		writeMessage(w, http.StatusConflict, "Couldn't find clubs, there was a conflict")
		return
	}

	writeJSON(w, http.StatusOK, clubs)
}

// Subscribe handles POST /api/clubs/subscribe?user_id=&club_id=.
// The body {"password": "..."} is only read for private clubs.
func (h *ClubHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	const failure = "Couldn't subscribe to the club, there was a conflict"

	query := r.URL.Query()
	userID, err := strconv.ParseInt(query.Get("user_id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusConflict, failure)
		return
	}
	clubID, err := strconv.ParseInt(query.Get("club_id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusConflict, failure)
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), service.SubscribeInput{
		UserID:   userID,
		ClubID:   clubID,
		Password: readSubscribePassword(r.Body),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIncorrectPassword):
			logRejection(h.logger, r, "club password mismatch", err)
			writeMessage(w, http.StatusNotAcceptable, "Incorrect password")
		case errors.Is(err, service.ErrClubNotFound),
			errors.Is(err, service.ErrAlreadySubscribed),
			errors.Is(err, service.ErrInvalidInput):
			logRejection(h.logger, r, "subscription rejected", err)
			writeMessage(w, http.StatusConflict, failure)
		default:
			logFailure(h.logger, r, "subscribe failed", err)
			writeMessage(w, http.StatusConflict, failure)
		}
		return
	}

	h.logger.Info("club_subscribed", "user_id", sub.UserID, "club_id", sub.ClubID)
	writeJSON(w, http.StatusOK, sub)
}

// readSubscribePassword extracts the optional password from the body.
// A missing, empty or malformed body yields nil.
func readSubscribePassword(body io.Reader) *string {
	if body == nil {
		return nil
	}
	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return nil
	}
	var req dto.SubscribeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil
	}
	return req.Password
}
