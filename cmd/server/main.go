package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/colocash/colocash/internal/auth"
	"github.com/colocash/colocash/internal/config"
	"github.com/colocash/colocash/internal/server"
	"github.com/colocash/colocash/internal/service"
	"github.com/colocash/colocash/internal/storage/sqlite"
	"github.com/colocash/colocash/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	srv := server.New(
		service.NewSettlementService(store),
		service.NewColocationService(store),
		service.NewAuthService(authenticator, jwtManager),
		jwtManager,
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Server starting", "address", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
