package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCreateMigrationWritesPair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	up, down, err := createMigration(dir, "add_artefacts", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(up) != "20240506070809_add_artefacts.up.sql" {
		t.Fatalf("unexpected up path %s", up)
	}
	if filepath.Base(down) != "20240506070809_add_artefacts.down.sql" {
		t.Fatalf("unexpected down path %s", down)
	}
	content, err := os.ReadFile(up)
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}
	if !strings.Contains(string(content), "-- up migration") {
		t.Fatalf("unexpected up content %q", content)
	}
}

func TestCreateMigrationBumpsPastExistingVersion(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20990101000000_future.up.sql"), nil, 0o644); err != nil {
		t.Fatalf("seed migration: %v", err)
	}

	up, _, err := createMigration(dir, "next", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(up) != "20990101000001_next.up.sql" {
		t.Fatalf("expected version after the newest migration, got %s", filepath.Base(up))
	}
}

func TestCreateMigrationRejectsBadAndDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"", "has space", "a/b", "CamelCase", "trailing_"} {
		if _, _, err := createMigration(dir, name, now); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}

	if _, _, err := createMigration(dir, "create_tables", now); err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if _, _, err := createMigration(dir, "create_tables", now.Add(time.Hour)); err == nil {
		t.Fatalf("expected a duplicate name to be rejected")
	}
}
