package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"mangrove/internal/config"
	"mangrove/internal/database"
	"mangrove/internal/handlers"
	"mangrove/internal/middleware"
	"mangrove/internal/utils"
	"mangrove/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.Configure(cfg.Auth)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Printf("Error closing MongoDB connection: %v", err)
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	log.Println("Connected to MongoDB and ensured indexes")

	hub := websocket.NewHub()
	go hub.Run()

	metrics := utils.NewMetricsCollector()
	server := handlers.NewServer(db, hub, metrics)

	cors := middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins))
	resolveViewer := middleware.ResolveViewer(db)
	handler := cors(resolveViewer(server.Routes()))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
