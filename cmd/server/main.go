package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/samantr/randp-backend/internal/auth"
	"github.com/samantr/randp-backend/internal/config"
	"github.com/samantr/randp-backend/internal/handlers"
	"github.com/samantr/randp-backend/internal/storage/sqlite"
	"github.com/samantr/randp-backend/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	router := handlers.NewRouter(store, jwtManager)

	// h2c allows HTTP/2 without TLS, for deployments behind a terminating
	// proxy.
	handler := h2c.NewHandler(router, &http2.Server{})

	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
