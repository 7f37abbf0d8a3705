// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/omgplay/arcade/pkg/logger"
)

// UserDependencies defines the interface for identity operations.
type UserDependencies interface {
	CreateGuest(ctx context.Context) (userID, token string, err error)
	CreateUser(ctx context.Context, username string) (string, error)
	User(ctx context.Context, idHex string) (User, error)
}

// UserHandler handles identity requests.
type UserHandler struct {
	deps UserDependencies
	log  logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies) *UserHandler {
	return &UserHandler{deps: deps, log: logger.Named("api")}
}

type guestResponse struct {
	Status bool   `json:"status"`
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type userDetailsResponse struct {
	Status  bool    `json:"status"`
	UserID  string  `json:"userId"`
	Balance float64 `json:"balance"`
	IsGuest bool    `json:"is_guest"`
}

type createUserRequest struct {
	Username string `json:"username"`
}

func (r createUserRequest) validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return NewKind("api.create_user", ErrBadRequest)
	}
	return nil
}

type createUserResponse struct {
	Status   bool   `json:"status"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// HandleGenerateGuest handles POST /api/generate_guest requests.
func (h *UserHandler) HandleGenerateGuest(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_guest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, token, err := h.deps.CreateGuest(r.Context())
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, guestResponse{Status: true, Token: token, UserID: userID})
}

// HandleUserDetails handles GET /api/user_details?user_id= requests.
func (h *UserHandler) HandleUserDetails(w http.ResponseWriter, r *http.Request) {
	const op = "api.user_details"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	u, err := h.deps.User(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, userDetailsResponse{
		Status:  true,
		UserID:  u.ID.Hex(),
		Balance: u.Balance,
		IsGuest: u.IsGuest,
	})
}

// HandleCreateUser handles POST /api/user/create requests.
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_user"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	userID, err := h.deps.CreateUser(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, createUserResponse{
		Status:   true,
		UserID:   userID,
		Username: strings.TrimSpace(req.Username),
	})
}
