package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/service"
)

type postRequest struct {
	credentials
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostHandler serves the post endpoints.
//
// CHECK ORDER ON PROTECTED ROUTES:
//  1. credentials      → 401
//  2. {id} lookup      → 404 (a non-numeric id is just an id that doesn't exist)
//  3. ownership        → 403
//  4. field validation → 400
//
// Authentication always comes first, so an anonymous caller learns nothing
// about which post ids exist.
type PostHandler struct {
	posts    *service.PostService
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, accounts *service.AccountService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, accounts: accounts, logger: logger}
}

// HandleList returns every post. An empty store gives [].
//
// HTTP: GET /posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// HandleCreate creates a post owned by the caller.
//
// HTTP: POST /posts
// REQUEST BODY: {"username": "alice", "password": "pw1", "title": "T", "content": "C"}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	author, err := h.accounts.ValidateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Create(r.Context(), author, req.Title, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleUpdate changes title and/or content of the caller's own post.
//
// HTTP: PUT /posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor, err := h.accounts.ValidateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := postID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Update(r.Context(), actor, id, req.Title, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes the caller's own post.
//
// HTTP: DELETE /posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor, err := h.accounts.ValidateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := postID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.posts.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}

// postID reads the {id} URL parameter. Anything that isn't a positive integer
// can't match a stored post, so it is reported as not found.
func postID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NotFound("post", raw)
	}
	return id, nil
}
