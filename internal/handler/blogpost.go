package handler

import (
	"log/slog"
	"net/http"

	"github.com/nhollis/inkwell/internal/service"
)

// PostHandler exposes the blog-post resource operations over HTTP.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleCreate publishes a new post.
//
// POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	projected, err := h.posts.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, projected)
}

// HandleGet returns one post by slug.
//
// GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	projected, err := h.posts.Get(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projected)
}

// HandleSearch lists posts matching the query parameters.
//
// GET /api/posts?title=&author=&active=&sortBy=&order=&offset=
func (h *PostHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.posts.Search(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleUpdate edits an existing post.
//
// PUT /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	projected, err := h.posts.Update(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projected)
}
