package handlers

import (
	"net/http"

	"mangrove/internal/middleware"
	"mangrove/internal/models"
	"mangrove/internal/utils"

	"github.com/google/uuid"
)

// CreateCommentRequest represents a request to create a comment or reply.
type CreateCommentRequest struct {
	PostID   string `json:"postId"`
	Content  string `json:"content"`
	ParentID string `json:"parentId,omitempty"`
}

// EditCommentRequest carries the replacement content for a comment.
type EditCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse wraps a comment with a success flag.
type CommentResponse struct {
	Success bool        `json:"success"`
	Comment interface{} `json:"comment"`
}

// HandleCreateComment creates a top level comment or a reply, depending
// on whether parentId is present.
func (s *Server) HandleCreateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.RequireViewer(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		var req CreateCommentRequest
		if !s.decodeBody(w, r, &req) {
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			s.writeError(w, utils.NewValidationError("Invalid postId"))
			return
		}

		var parentID *uuid.UUID
		if req.ParentID != "" {
			parsed, err := uuid.Parse(req.ParentID)
			if err != nil {
				s.writeError(w, utils.NewValidationError("Invalid parentId"))
				return
			}
			parentID = &parsed
		}

		comment, err := s.Comments.Create(r.Context(), postID, viewer.ID, req.Content, parentID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, CommentResponse{Success: true, Comment: comment})
	}
}

// HandleEditComment updates a comment's content. Only the author may edit.
func (s *Server) HandleEditComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.RequireViewer(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		commentID, ok := s.pathUUID(w, r, "id")
		if !ok {
			return
		}

		var req EditCommentRequest
		if !s.decodeBody(w, r, &req) {
			return
		}

		comment, err := s.Comments.Edit(r.Context(), commentID, viewer.ID, req.Content)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, CommentResponse{Success: true, Comment: comment})
	}
}

// HandleDeleteComment deletes a comment. Only the author may delete.
func (s *Server) HandleDeleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.RequireViewer(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		commentID, ok := s.pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := s.Comments.Delete(r.Context(), commentID, viewer.ID); err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, models.StatusResponse{
			Success: true,
			Message: "Comment deleted successfully",
		})
	}
}
