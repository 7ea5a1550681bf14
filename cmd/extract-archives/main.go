package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"code-submitter/internal/bundle"
	"code-submitter/internal/config"
	"code-submitter/internal/db"
)

func main() {
	output := flag.String("output", "", "path of the bundle to write")
	sessionID := flag.Int64("session", 0, "bundle the choices of this session instead of the current ones")
	flag.Parse()

	if *output == "" {
		fatal("an -output path is required", nil)
	}
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

	store, err := db.NewStore(conn, false)
	if err != nil {
		fatal("failed to create store", err)
	}

	submissions, err := loadSubmissions(context.Background(), store, *sessionID)
	if err != nil {
		fatal("failed to load chosen submissions", err)
	}
	if err := writeBundle(*output, submissions); err != nil {
		fatal("failed to write bundle", err)
	}
	slog.Info("bundle written", "output", *output, "teams", len(submissions))
}

// loadSubmissions reads the current choices, or with a non-zero sessionID
// that session's, in a single transaction.
func loadSubmissions(ctx context.Context, store *db.Store, sessionID int64) (map[string]db.Submission, error) {
	if sessionID == 0 {
		return store.ChosenSubmissions(ctx, nil)
	}
	_, submissions, err := store.SessionSubmissions(ctx, sessionID)
	return submissions, err
}

// writeBundle writes the bundle to path. A partly written file is removed.
func writeBundle(path string, submissions map[string]db.Submission) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return bundle.Write(file, submissions)
}

func fatal(msg string, err error) {
	if err != nil {
		slog.Error(msg, "error", err)
	} else {
		slog.Error(msg)
	}
	os.Exit(1)
}
