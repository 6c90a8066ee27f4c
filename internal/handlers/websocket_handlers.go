package handlers

import (
	"log"
	"net/http"

	"mangrove/internal/middleware"
	"mangrove/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: check Origin against config.AllowedOrigins
		return true
	},
}

// HandlePostSocket upgrades the connection and subscribes it to the
// post's live event stream. Browsers cannot set headers on websocket
// requests, so the token travels as a query parameter.
func (s *Server) HandlePostSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, "Invalid post id", http.StatusBadRequest)
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: invalid token: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		if _, err := s.Store.GetPost(r.Context(), postID); err != nil {
			s.writeError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %s: %v", claims.UserID, err)
			return
		}

		client := &websocket.Client{
			Hub:    s.Hub,
			PostID: postID,
			Conn:   conn,
			Send:   make(chan []byte, 256),
		}
		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
