package handlers

import (
	"net/http"

	"mangrove/internal/middleware"
	"mangrove/internal/models"
)

// HandleVote toggles the viewer's vote on a post in the given direction.
// Voting the same direction twice retracts the vote; voting the other
// direction switches it.
func (s *Server) HandleVote(direction models.VoteDirection) http.HandlerFunc {
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

		result, err := s.Votes.ApplyVote(r.Context(), postID, viewer.ID, direction)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, result)
	}
}

// HandleBookmark toggles the post's membership in the viewer's saved set.
func (s *Server) HandleBookmark() http.HandlerFunc {
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

		result, err := s.Marks.Toggle(r.Context(), postID, viewer.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, result)
	}
}
