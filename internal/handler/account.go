package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/postboard/internal/model"
	"github.com/sakif/postboard/internal/service"
)

// credentials are sent in the body of every protected request. There are no
// sessions or tokens.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	credentials
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// LoginResponse is the body of a successful POST /login.
type LoginResponse struct {
	Message string         `json:"message"`
	User    model.SafeUser `json:"user"`
}

// DeleteAccountResponse is the body of a successful DELETE /account.
type DeleteAccountResponse struct {
	Message      string `json:"message"`
	DeletedPosts int    `json:"deletedPosts"`
}

// AccountHandler serves registration, login, the user list and the
// authenticated profile endpoints.
//
// Responses never contain a password hash: every user leaving this handler
// goes through model.User.Safe first.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /register
// REQUEST BODY: {"username": "alice", "email": "alice@example.com", "password": "pw1"}
// RESPONSE: 201 {"id": 1, "username": "alice", "email": "alice@example.com"}
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.Safe())
}

// HandleLogin checks credentials.
//
// HTTP: POST /login
// RESPONSE: 200 {"message": "Login successful", "user": {...}}
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		User:    user.Safe(),
	})
}

// HandleListUsers returns every user without passwords.
//
// HTTP: GET /users
func (h *AccountHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SafeUsers(users))
}

// HandleUpdateProfile changes email and/or password.
//
// HTTP: PUT /profile
// REQUEST BODY: {"username": "...", "password": "...", "email": "...", "newPassword": "..."}
// email and newPassword are optional; an empty value leaves the field as is.
func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), req.Username, req.Password, req.Email, req.NewPassword)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Safe())
}

// HandleDeleteAccount deletes the authenticated user and all of their posts.
//
// HTTP: DELETE /account
// RESPONSE: 200 {"message": "Account deleted successfully", "deletedPosts": 2}
func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	removed, err := h.accounts.DeleteAccount(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteAccountResponse{
		Message:      "Account deleted successfully",
		DeletedPosts: removed,
	})
}
