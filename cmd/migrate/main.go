package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"code-submitter/internal/config"
	"code-submitter/internal/db"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	dir := flag.String("dir", "db/migrations", "migrations directory")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fatal("invalid configuration", err)
	}
	dialect, _, err := db.ParseURL(cfg.DatabaseURL)
	if err != nil {
		fatal("invalid DATABASE_URL", err)
	}
	if dialect != db.DialectPostgres {
		// Other databases are migrated by the server at startup.
		fatal("versioned migrations need a postgres DATABASE_URL", fmt.Errorf("got a %s url", dialect))
	}

	m, err := migrate.New("file://"+*dir, cfg.DatabaseURL)
	if err != nil {
		fatal("migration setup failed", err)
	}
	defer m.Close()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fatal("database migration failed", err)
	}
	version, dirty, _ := m.Version()
	slog.Info("database migrations applied", "version", version, "dirty", dirty)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
