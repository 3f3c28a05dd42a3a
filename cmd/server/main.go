package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/mwalczyk/chirp/internal/config"
	"github.com/mwalczyk/chirp/internal/docstore"
	"github.com/mwalczyk/chirp/internal/docstore/memory"
	"github.com/mwalczyk/chirp/internal/docstore/postgres"
	"github.com/mwalczyk/chirp/internal/identity"
	"github.com/mwalczyk/chirp/internal/logging"
	"github.com/mwalczyk/chirp/internal/service"
	"github.com/mwalczyk/chirp/internal/storage"
	"github.com/mwalczyk/chirp/internal/transport/http/handlers"
	"github.com/mwalczyk/chirp/internal/transport/http/middleware"
	"github.com/mwalczyk/chirp/internal/transport/ws"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	ctx := context.Background()

	// Document store
	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Blob store
	objects, err := newObjectStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Identity provider
	ident := identity.New(store, cfg.JWTSecret)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Services
	notificationService := service.NewNotificationService(store, hub)
	userService := service.NewUserService(store, objects, notificationService)
	tweetService := service.NewTweetService(store, userService, notificationService)
	feedService := service.NewFeedService(store, tweetService)
	authService := service.NewAuthService(store, ident, objects)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	tweetHandler := handlers.NewTweetHandler(tweetService)
	feedHandler := handlers.NewFeedHandler(feedService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Auth middleware
	auth := middleware.Auth(ident)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Users
	mux.Handle("GET /api/v1/users", auth(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /api/v1/users/{id}", auth(http.HandlerFunc(userHandler.Get)))
	mux.Handle("GET /api/v1/users/by-username/{username}", auth(http.HandlerFunc(userHandler.GetByUsername)))
	mux.Handle("PATCH /api/v1/users/me", auth(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("PUT /api/v1/users/me/profile-image", auth(http.HandlerFunc(userHandler.UpdateProfileImage)))
	mux.Handle("POST /api/v1/users/{id}/follow", auth(http.HandlerFunc(userHandler.Follow)))
	mux.Handle("DELETE /api/v1/users/{id}/follow", auth(http.HandlerFunc(userHandler.Unfollow)))
	mux.Handle("GET /api/v1/users/{id}/stats", auth(http.HandlerFunc(userHandler.Stats)))
	mux.Handle("GET /api/v1/users/{id}/tweets", auth(http.HandlerFunc(tweetHandler.ListByAuthor)))
	mux.Handle("GET /api/v1/users/{id}/replies", auth(http.HandlerFunc(tweetHandler.ListRepliesByAuthor)))
	mux.Handle("GET /api/v1/users/{id}/likes", auth(http.HandlerFunc(tweetHandler.ListLiked)))

	// Protected - Tweets
	mux.Handle("POST /api/v1/tweets", auth(http.HandlerFunc(tweetHandler.Create)))
	mux.Handle("GET /api/v1/tweets", auth(http.HandlerFunc(tweetHandler.ListAll)))
	mux.Handle("GET /api/v1/tweets/{id}", auth(http.HandlerFunc(tweetHandler.Get)))
	mux.Handle("DELETE /api/v1/tweets/{id}", auth(http.HandlerFunc(tweetHandler.Delete)))
	mux.Handle("POST /api/v1/tweets/{id}/replies", auth(http.HandlerFunc(tweetHandler.Reply)))
	mux.Handle("GET /api/v1/tweets/{id}/replies", auth(http.HandlerFunc(tweetHandler.ListReplies)))
	mux.Handle("POST /api/v1/tweets/{id}/like", auth(http.HandlerFunc(tweetHandler.ToggleLike)))

	// Protected - Feed & Notifications
	mux.Handle("GET /api/v1/feed", auth(http.HandlerFunc(feedHandler.Get)))
	mux.Handle("GET /api/v1/notifications", auth(http.HandlerFunc(notificationHandler.List)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, ident))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	slog.Info("starting server", "addr", addr, "store", cfg.StoreBackend)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}

func newStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	if cfg.StoreBackend == "memory" {
		slog.Warn("using in-memory document store; data is not persisted")
		return memory.New(), nil
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := postgres.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}

	store := postgres.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)
	return store, nil
}

func newObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.MinioEndpoint == "" {
		slog.Warn("no minio endpoint configured; using in-memory object store")
		return storage.NewMemoryStore(), nil
	}
	return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
}
