package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"code-submitter/internal/auth"
	"code-submitter/internal/config"
	"code-submitter/internal/db"
	"code-submitter/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fatal("invalid configuration", err)
	}

	conn, err := db.Open(cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
	})
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close(conn)

	if cfg.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			fatal("database migration failed", err)
		}
	}

	store, err := db.NewStore(conn, cfg.Testing)
	if err != nil {
		fatal("failed to create store", err)
	}
	defer store.Close()

	validator, err := auth.FromConfig(cfg.AuthBackend)
	if err != nil {
		fatal("failed to configure authentication", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           server.New(store, validator, cfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("code submitter listening",
		"addr", httpServer.Addr,
		"auth_backend", cfg.AuthBackend.Backend,
		"testing", cfg.Testing,
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		return
	}
	slog.Info("server stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
