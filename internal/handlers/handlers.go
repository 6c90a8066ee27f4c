package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mangrove/internal/database"
	"mangrove/internal/forum"
	"mangrove/internal/utils"
	"mangrove/internal/websocket"

	"github.com/google/uuid"
)

// Server holds all handler dependencies.
type Server struct {
	Store    database.Store
	Accounts *forum.AccountService
	Posts    *forum.PostService
	Votes    *forum.VoteLedger
	Marks    *forum.BookmarkSet
	Comments *forum.CommentTree
	Feed     *forum.FeedAssembler
	Hub      *websocket.Hub
	Metrics  *utils.MetricsCollector
}

// NewServer wires the services behind the HTTP surface. The hub doubles
// as the notifier for comment and vote events.
func NewServer(store database.Store, hub *websocket.Hub, metrics *utils.MetricsCollector) *Server {
	return &Server{
		Store:    store,
		Accounts: forum.NewAccountService(store),
		Posts:    forum.NewPostService(store),
		Votes:    forum.NewVoteLedger(store, hub),
		Marks:    forum.NewBookmarkSet(store),
		Comments: forum.NewCommentTree(store, hub),
		Feed:     forum.NewFeedAssembler(store),
		Hub:      hub,
		Metrics:  metrics,
	}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.track("health", s.HandleHealth()))

	// Accounts
	mux.HandleFunc("POST /user/register", s.track("register", s.HandleUserRegistration()))
	mux.HandleFunc("POST /user/login", s.track("login", s.HandleUserLogin()))
	mux.HandleFunc("POST /user/logout", s.track("logout", s.HandleUserLogout()))
	mux.HandleFunc("GET /profile/{username}", s.track("profile", s.HandleProfile()))
	mux.HandleFunc("POST /profile/update", s.track("profile_update", s.HandleProfileUpdate()))

	// Feeds
	mux.HandleFunc("GET /{$}", s.track("home_feed", s.HandleHomeFeed()))
	mux.HandleFunc("GET /trending", s.track("trending_feed", s.HandleTrendingFeed()))
	mux.HandleFunc("GET /api/trending", s.track("trending_page", s.HandleTrendingPage()))
	mux.HandleFunc("GET /search", s.track("search", s.HandleSearch()))
	mux.HandleFunc("GET /saved", s.track("saved_feed", s.HandleSavedFeed()))

	// Posts
	mux.HandleFunc("GET /post/{id}", s.track("post_detail", s.HandlePostDetail()))
	mux.HandleFunc("POST /create-post", s.track("post_create", s.HandleCreatePost()))
	mux.HandleFunc("POST /edit-post/{id}", s.track("post_edit", s.HandleEditPost()))
	mux.HandleFunc("DELETE /delete-post/{id}", s.track("post_delete", s.HandleDeletePost()))

	// Votes and bookmarks
	mux.HandleFunc("POST /post/{id}/upvote", s.track("vote", s.HandleVote("up")))
	mux.HandleFunc("POST /post/{id}/downvote", s.track("vote", s.HandleVote("down")))
	mux.HandleFunc("POST /post/{id}/bookmark", s.track("bookmark", s.HandleBookmark()))

	// Comments
	mux.HandleFunc("POST /comment", s.track("comment_create", s.HandleCreateComment()))
	mux.HandleFunc("PUT /comment/{id}", s.track("comment_edit", s.HandleEditComment()))
	mux.HandleFunc("DELETE /comment/{id}", s.track("comment_delete", s.HandleDeleteComment()))

	// Live updates
	mux.HandleFunc("GET /ws/post/{id}", s.HandlePostSocket())

	return mux
}

// track records request counts and latency per operation.
func (s *Server) track(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.Metrics.IncrementRequests()
		next(w, r)
		s.Metrics.AddOperationLatency(operation, time.Since(start))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// ErrorResponse is the JSON shape of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError maps application errors to HTTP statuses. Unknown errors
// become opaque 500s so store internals never leak to clients.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.Metrics.IncrementErrors()

	if appErr, ok := err.(*utils.AppError); ok {
		status := utils.AppErrorToHTTPStatus(appErr.Code)
		if status == http.StatusInternalServerError {
			log.Printf("Internal error [%s]: %v", appErr.Code, err)
			s.writeJSON(w, status, ErrorResponse{Error: "Internal server error"})
			return
		}
		s.writeJSON(w, status, ErrorResponse{Error: appErr.Message, Details: appErr.Code})
		return
	}

	log.Printf("Unhandled error: %v", err)
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.writeError(w, utils.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

func errMissingPathValue(name string) error {
	return utils.NewValidationError("Missing " + name + " in path")
}

// pathUUID parses a UUID path segment, writing the error response itself.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.writeError(w, utils.NewValidationError("Invalid "+name+" in path"))
		return uuid.Nil, false
	}
	return id, true
}
