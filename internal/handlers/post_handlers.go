package handlers

import (
	"net/http"

	"mangrove/internal/middleware"
	"mangrove/internal/models"
)

// CreatePostRequest represents a request to create a new post
type CreatePostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// HandleCreatePost creates a post for the authenticated user.
func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.RequireViewer(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		var req CreatePostRequest
		if !s.decodeBody(w, r, &req) {
			return
		}

		post, err := s.Posts.Create(r.Context(), viewer.ID, req.Title, req.Content, req.Tags)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, post)
	}
}

// HandleEditPost updates a post the viewer owns.
func (s *Server) HandleEditPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.RequireViewer(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		postID, ok := s.pathUUID(w, r, "id")
		if !ok {
			return
		}

		var req CreatePostRequest
		if !s.decodeBody(w, r, &req) {
			return
		}

		post, err := s.Posts.Edit(r.Context(), postID, viewer.ID, req.Title, req.Content, req.Tags)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, post)
	}
}

// HandleDeletePost deletes a post the viewer owns.
func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.RequireViewer(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		postID, ok := s.pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := s.Posts.Delete(r.Context(), postID, viewer.ID); err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, models.StatusResponse{
			Success: true,
			Message: "Post deleted successfully",
		})
	}
}

// HandlePostDetail returns a single post annotated for the viewer,
// together with its comment tree.
func (s *Server) HandlePostDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, ok := s.pathUUID(w, r, "id")
		if !ok {
			return
		}

		viewer := middleware.ViewerFromContext(r.Context())

		view, err := s.Feed.Detail(r.Context(), viewer, postID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		tree, err := s.Comments.TreeForPost(r.Context(), postID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, struct {
			Post     interface{} `json:"post"`
			Comments interface{} `json:"comments"`
		}{Post: view, Comments: tree})
	}
}
