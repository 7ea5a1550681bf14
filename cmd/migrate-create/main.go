package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	migrationName = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)
	migrationFile = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)
)

func main() {
	name := flag.String("name", "", "migration name, lower_snake_case")
	dir := flag.String("dir", filepath.Join("db", "migrations"), "migrations directory")
	flag.Parse()

	up, down, err := createMigration(*dir, *name, time.Now().UTC())
	if err != nil {
		slog.Error("create migration failed", "name", *name, "error", err)
		os.Exit(1)
	}
	slog.Info("created migration", "up", up, "down", down)
}

// createMigration writes an empty up/down pair for name into dir. Versions
// are timestamps, bumped past the newest existing migration so golang-migrate
// always applies the new pair last.
func createMigration(dir, name string, now time.Time) (string, string, error) {
	if !migrationName.MatchString(name) {
		return "", "", fmt.Errorf("migration name %q must be lower_snake_case", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create migrations dir: %w", err)
	}

	latest, err := latestVersion(dir, name)
	if err != nil {
		return "", "", err
	}
	version, _ := strconv.ParseUint(now.Format(versionLayout), 10, 64)
	if version <= latest {
		version = latest + 1
	}

	base := fmt.Sprintf("%d_%s", version, name)
	upPath := filepath.Join(dir, base+".up.sql")
	downPath := filepath.Join(dir, base+".down.sql")
	header := fmt.Sprintf("-- %s (%d)\n", strings.ReplaceAll(name, "_", " "), version)

	if err := writeNew(upPath, header+"-- up migration\n"); err != nil {
		return "", "", err
	}
	if err := writeNew(downPath, header+"-- down migration\n"); err != nil {
		_ = os.Remove(upPath)
		return "", "", err
	}
	return upPath, downPath, nil
}

// latestVersion returns the highest version in dir, failing if name is
// already taken.
func latestVersion(dir, name string) (uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read migrations dir: %w", err)
	}
	var latest uint64
	for _, entry := range entries {
		match := migrationFile.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		if match[2] == name {
			return 0, fmt.Errorf("migration %q already exists as %s", name, entry.Name())
		}
		version, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		latest = max(latest, version)
	}
	return latest, nil
}

func writeNew(path, content string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("file already exists: %s", path)
		}
		return err
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
