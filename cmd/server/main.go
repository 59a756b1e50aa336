package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/vleeko/soundwave/internal/config"
	"github.com/vleeko/soundwave/internal/database"
	"github.com/vleeko/soundwave/internal/notification"
	postgresrepo "github.com/vleeko/soundwave/internal/repository/postgres"
	"github.com/vleeko/soundwave/internal/service"
	"github.com/vleeko/soundwave/internal/storage"
	"github.com/vleeko/soundwave/internal/transport/http/handlers"
	"github.com/vleeko/soundwave/internal/transport/http/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		slog.Error("connecting to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database")

	// File storage
	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		slog.Error("preparing upload directories", "error", err)
		os.Exit(1)
	}

	// Email: Postmark when configured, log-only otherwise.
	var mailer notification.EmailSender
	if cfg.PostmarkServerToken != "" {
		mailer, err = notification.NewPostmarkSender(notification.PostmarkConfig{
			ServerToken:  cfg.PostmarkServerToken,
			AccountToken: cfg.PostmarkAccountToken,
			SenderEmail:  cfg.SenderEmail,
		})
		if err != nil {
			slog.Error("configuring postmark", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("POSTMARK_SERVER_TOKEN not set, emails will be logged instead of sent")
		mailer = notification.NewLogSender()
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	trackRepo := postgresrepo.NewTrackRepo(pool)
	playlistRepo := postgresrepo.NewPlaylistRepo(pool)

	// Services
	tokens := service.NewTokenService(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	otp := service.NewOTPGenerator(cfg.OTPTTL)
	authService := service.NewAuthService(userRepo, tokens, otp, mailer)
	userService := service.NewUserService(userRepo, trackRepo, files)
	trackService := service.NewTrackService(trackRepo, userRepo, files)
	playlistService := service.NewPlaylistService(playlistRepo, trackRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	trackHandler := handlers.NewTrackHandler(trackService)
	playlistHandler := handlers.NewPlaylistHandler(playlistService)
	adminHandler := handlers.NewAdminHandler(userService)

	// Middleware
	auth := middleware.Auth(tokens, userRepo)
	optionalAuth := middleware.OptionalAuth(tokens, userRepo)
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireAdmin(h))
	}

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/verify-otp", authHandler.VerifyOTP)
	mux.HandleFunc("POST /api/v1/auth/resend-otp", authHandler.ResendOTP)
	mux.HandleFunc("POST /api/v1/auth/refresh-token", authHandler.RefreshToken)
	mux.Handle("POST /api/v1/auth/logout", auth(http.HandlerFunc(authHandler.Logout)))

	// Users
	mux.Handle("GET /api/v1/users/profile", auth(http.HandlerFunc(userHandler.Profile)))
	mux.Handle("PUT /api/v1/users/profile", auth(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("POST /api/v1/users/avatar", auth(http.HandlerFunc(userHandler.UploadAvatar)))
	mux.Handle("DELETE /api/v1/users/avatar", auth(http.HandlerFunc(userHandler.DeleteAvatar)))
	mux.Handle("GET /api/v1/users/liked-music", auth(http.HandlerFunc(userHandler.LikedTracks)))
	mux.Handle("GET /api/v1/users/recently-played", auth(http.HandlerFunc(userHandler.RecentlyPlayed)))
	mux.Handle("PUT /api/v1/users/password", auth(http.HandlerFunc(userHandler.ChangePassword)))
	mux.Handle("DELETE /api/v1/users/account", auth(http.HandlerFunc(userHandler.DeleteAccount)))

	// Music catalog
	mux.HandleFunc("GET /api/v1/music", trackHandler.List)
	mux.Handle("GET /api/v1/music/my-uploads", auth(http.HandlerFunc(trackHandler.MyTracks)))
	mux.Handle("GET /api/v1/music/{id}", optionalAuth(http.HandlerFunc(trackHandler.Get)))
	mux.Handle("POST /api/v1/music", auth(http.HandlerFunc(trackHandler.Upload)))
	mux.Handle("POST /api/v1/music/{id}/cover", auth(http.HandlerFunc(trackHandler.UploadCover)))
	mux.Handle("PUT /api/v1/music/{id}", auth(http.HandlerFunc(trackHandler.Update)))
	mux.Handle("DELETE /api/v1/music/{id}", auth(http.HandlerFunc(trackHandler.Delete)))
	mux.Handle("POST /api/v1/music/{id}/like", auth(http.HandlerFunc(trackHandler.Like)))
	mux.Handle("DELETE /api/v1/music/{id}/like", auth(http.HandlerFunc(trackHandler.Unlike)))
	mux.Handle("POST /api/v1/music/{id}/play", auth(http.HandlerFunc(trackHandler.Play)))

	// Playlists
	mux.Handle("POST /api/v1/playlists", auth(http.HandlerFunc(playlistHandler.Create)))
	mux.Handle("GET /api/v1/playlists", auth(http.HandlerFunc(playlistHandler.ListMine)))
	mux.Handle("GET /api/v1/playlists/{id}", optionalAuth(http.HandlerFunc(playlistHandler.Get)))
	mux.Handle("PUT /api/v1/playlists/{id}", auth(http.HandlerFunc(playlistHandler.Update)))
	mux.Handle("DELETE /api/v1/playlists/{id}", auth(http.HandlerFunc(playlistHandler.Delete)))
	mux.Handle("POST /api/v1/playlists/{id}/tracks/{trackId}", auth(http.HandlerFunc(playlistHandler.AddTrack)))
	mux.Handle("DELETE /api/v1/playlists/{id}/tracks/{trackId}", auth(http.HandlerFunc(playlistHandler.RemoveTrack)))
	mux.Handle("POST /api/v1/playlists/{id}/follow", auth(http.HandlerFunc(playlistHandler.Follow)))
	mux.Handle("DELETE /api/v1/playlists/{id}/follow", auth(http.HandlerFunc(playlistHandler.Unfollow)))

	// Admin
	mux.Handle("GET /api/v1/admin/users", admin(adminHandler.ListUsers))
	mux.Handle("PUT /api/v1/admin/users/{id}", admin(adminHandler.UpdateUser))
	mux.Handle("DELETE /api/v1/admin/users/{id}", admin(adminHandler.DeleteUser))

	// Uploaded files
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(files.Dir()))))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	slog.Info("starting server", "addr", addr)
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
