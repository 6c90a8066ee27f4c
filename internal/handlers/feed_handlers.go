package handlers

import (
	"net/http"
	"strconv"

	"mangrove/internal/middleware"
	"mangrove/internal/utils"
)

// HandleHomeFeed returns the reverse chronological feed. Anonymous
// viewers get a capped page; authenticated viewers get the full feed.
func (s *Server) HandleHomeFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middleware.ViewerFromContext(r.Context())

		posts, err := s.Feed.Home(r.Context(), viewer)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, posts)
	}
}

// HandleTrendingFeed returns posts ordered by upvote count.
func (s *Server) HandleTrendingFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middleware.ViewerFromContext(r.Context())

		posts, err := s.Feed.Trending(r.Context(), viewer)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, posts)
	}
}

// HandleTrendingPage returns one page of the trending feed. Pages are
// 1-based and fixed size.
func (s *Server) HandleTrendingPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middleware.ViewerFromContext(r.Context())

		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				s.writeError(w, utils.NewValidationError("Invalid page number"))
				return
			}
			page = parsed
		}

		posts, err := s.Feed.TrendingPage(r.Context(), viewer, page)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, struct {
			Page  int         `json:"page"`
			Posts interface{} `json:"posts"`
		}{Page: page, Posts: posts})
	}
}

// HandleSearch matches posts by title, content or tag.
func (s *Server) HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		tag := r.URL.Query().Get("tag")
		if query == "" && tag == "" {
			s.writeError(w, utils.NewValidationError("Provide a q or tag parameter"))
			return
		}

		viewer := middleware.ViewerFromContext(r.Context())

		posts, err := s.Feed.Search(r.Context(), viewer, query, tag)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, posts)
	}
}

// HandleSavedFeed returns the viewer's bookmarked posts.
func (s *Server) HandleSavedFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.RequireViewer(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		posts, err := s.Feed.Saved(r.Context(), viewer)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, posts)
	}
}

// HealthResponse reports store reachability, entity counts and request
// metrics.
type HealthResponse struct {
	Status   string                `json:"status"`
	Users    int64                 `json:"users"`
	Posts    int64                 `json:"posts"`
	Comments int64                 `json:"comments"`
	Metrics  utils.MetricsSnapshot `json:"metrics"`
}

// HandleHealth answers liveness probes with counts and metrics.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.Store.CountUsers(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		posts, err := s.Store.CountPosts(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		comments, err := s.Store.CountComments(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Users:    users,
			Posts:    posts,
			Comments: comments,
			Metrics:  s.Metrics.Snapshot(),
		})
	}
}
