// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"mangrove/internal/config"
	"mangrove/internal/database"
	"mangrove/internal/models"
	"mangrove/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCookie is the cookie the login handler sets and the resolver reads.
const TokenCookie = "token"

var (
	jwtSecret        []byte
	tokenExpiration  = 24 * time.Hour
	rememberDuration = 30 * 24 * time.Hour
)

// Configure installs the signing secret and token lifetimes from config.
// Must be called once at startup before any token is issued or verified.
func Configure(cfg *config.AuthConfig) {
	jwtSecret = []byte(cfg.JWTSecret)
	if cfg.TokenTTL > 0 {
		tokenExpiration = cfg.TokenTTL
	}
	if cfg.RememberTokenTTL > 0 {
		rememberDuration = cfg.RememberTokenTTL
	}
}

// Claims represents the JWT claims for our application
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT token for the given user
func GenerateToken(userID uuid.UUID, username string, remember bool) (string, error) {
	ttl := tokenExpiration
	if remember {
		ttl = rememberDuration
	}
	expirationTime := time.Now().Add(ttl)

	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "mangrove-api",
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates the provided JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Define a custom context key type to avoid collisions
type contextKey string

// ViewerKey is the key used to store the resolved viewer in the context
const ViewerKey contextKey = "viewer"

// SetViewerInContext saves the viewer in the request context
func SetViewerInContext(ctx context.Context, viewer *models.Viewer) context.Context {
	return context.WithValue(ctx, ViewerKey, viewer)
}

// ViewerFromContext retrieves the viewer from the context. A missing
// entry is the anonymous viewer.
func ViewerFromContext(ctx context.Context) *models.Viewer {
	if viewer, ok := ctx.Value(ViewerKey).(*models.Viewer); ok {
		return viewer
	}
	return models.Anonymous()
}

// RequireViewer returns the authenticated viewer or an AuthRequired error
// for operations that reject anonymous callers.
func RequireViewer(ctx context.Context) (*models.Viewer, error) {
	viewer := ViewerFromContext(ctx)
	if viewer.IsAnonymous() {
		return nil, utils.NewAuthRequiredError()
	}
	return viewer, nil
}

// credentialFromRequest extracts a token from the Authorization header
// or the token cookie. Returns "" when no credential is present.
func credentialFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		return authHeader
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// clearTokenCookie expires the stale credential so subsequent requests
// arrive cleanly anonymous.
func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// ResolveViewer maps the request's credentials to a Viewer and threads it
// through the context. It fails open: missing or invalid credentials make
// the request anonymous rather than rejected, and an invalid cookie is
// cleared. Operations that need authentication call RequireViewer.
func ResolveViewer(store database.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := credentialFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r.WithContext(SetViewerInContext(r.Context(), models.Anonymous())))
				return
			}

			claims, err := ValidateToken(tokenString)
			if err != nil {
				log.Printf("Clearing invalid credential: %v", err)
				clearTokenCookie(w)
				next.ServeHTTP(w, r.WithContext(SetViewerInContext(r.Context(), models.Anonymous())))
				return
			}

			user, err := store.GetUser(r.Context(), claims.UserID)
			if err != nil {
				// Token for a user that no longer resolves; treat as anonymous.
				log.Printf("Viewer lookup failed for user %s: %v", claims.UserID, err)
				clearTokenCookie(w)
				next.ServeHTTP(w, r.WithContext(SetViewerInContext(r.Context(), models.Anonymous())))
				return
			}

			viewer := &models.Viewer{
				ID:              user.ID,
				Username:        user.Username,
				ProfilePicture:  user.ProfilePictureURL(),
				BookmarkedPosts: user.BookmarkedPosts,
			}
			next.ServeHTTP(w, r.WithContext(SetViewerInContext(r.Context(), viewer)))
		})
	}
}
