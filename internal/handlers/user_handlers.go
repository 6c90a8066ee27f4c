package handlers

import (
	"net/http"

	"mangrove/internal/forum"
	"mangrove/internal/middleware"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// LoginResponse represents a response to a login request
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterUserRequest
		if !s.decodeBody(w, r, &req) {
			return
		}

		user, err := s.Accounts.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, user)
	}
}

// HandleUserLogin verifies credentials, issues a JWT and sets it as an
// HTTP-only cookie alongside the JSON body.
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !s.decodeBody(w, r, &req) {
			return
		}

		user, err := s.Accounts.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			s.writeError(w, err)
			return
		}

		token, err := middleware.GenerateToken(user.ID, user.Username, req.Remember)
		if err != nil {
			s.writeError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		s.writeJSON(w, http.StatusOK, LoginResponse{
			Success:  true,
			Token:    token,
			UserID:   user.ID.String(),
			Username: user.Username,
		})
	}
}

// HandleUserLogout clears the token cookie.
func (s *Server) HandleUserLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// HandleProfile returns a public profile with the user's posts.
func (s *Server) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		if username == "" {
			s.writeError(w, errMissingPathValue("username"))
			return
		}

		profile, err := s.Accounts.ProfileByUsername(r.Context(), username)
		if err != nil {
			s.writeError(w, err)
			return
		}

		viewer := middleware.ViewerFromContext(r.Context())
		s.writeJSON(w, http.StatusOK, struct {
			User interface{} `json:"user"`
			// Derived on read, never stored
			NumberOfPosts     int         `json:"numberOfPosts"`
			ProfilePictureURL string      `json:"profilePictureUrl"`
			Posts             interface{} `json:"posts"`
			Comments          interface{} `json:"comments"`
		}{
			User:              profile.User,
			NumberOfPosts:     profile.User.NumberOfPosts(),
			ProfilePictureURL: profile.User.ProfilePictureURL(),
			Posts:             s.Feed.Annotate(profile.Posts, viewer),
			Comments:          profile.Comments,
		})
	}
}

// HandleProfileUpdate edits the authenticated user's own profile.
func (s *Server) HandleProfileUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := middleware.RequireViewer(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}

		var req forum.ProfileUpdate
		if !s.decodeBody(w, r, &req) {
			return
		}

		user, err := s.Accounts.UpdateProfile(r.Context(), viewer.ID, req)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, user)
	}
}
