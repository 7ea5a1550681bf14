package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultAuthBackend = `{"backend": "dummy"}`

// AuthBackend names one of the credential validators and the keyword
// arguments used to construct it.
type AuthBackend struct {
	Backend string          `json:"backend"`
	Kwargs  json.RawMessage `json:"kwargs,omitempty"`
}

type Config struct {
	Port                     int
	DatabaseURL              string
	Testing                  bool
	AutoMigrate              bool
	AuthBackend              AuthBackend
	RequiredFilesInArchive   []string
	MaxUploadBytes           int64
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
}

func Default() Config {
	backend, _ := ParseAuthBackend(defaultAuthBackend)
	return Config{
		Port:                     8080,
		DatabaseURL:              "sqlite://sqlite.db",
		AutoMigrate:              true,
		AuthBackend:              backend,
		RequiredFilesInArchive:   []string{"robot.py"},
		MaxUploadBytes:           32 << 20,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
	}
}

// Load builds a Config from the environment on top of Default. Malformed
// numeric values fall back to their defaults; a malformed AUTH_BACKEND is an
// error since the server cannot authenticate anyone without it.
func Load() (Config, error) {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Port = value
		}
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("TESTING"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Testing = value
		}
	}
	if raw := os.Getenv("DB_AUTO_MIGRATE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.AutoMigrate = value
		}
	}
	if raw := os.Getenv("AUTH_BACKEND"); raw != "" {
		backend, err := ParseAuthBackend(raw)
		if err != nil {
			return Config{}, fmt.Errorf("AUTH_BACKEND: %w", err)
		}
		cfg.AuthBackend = backend
	}
	if raw := os.Getenv("REQUIRED_FILES_IN_ARCHIVE"); raw != "" {
		cfg.RequiredFilesInArchive = ParseRequiredFiles(raw)
	}
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value > 0 {
			cfg.MaxUploadBytes = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	return cfg, nil
}

// ParseAuthBackend decodes the JSON form {"backend": name, "kwargs": {...}}.
func ParseAuthBackend(raw string) (AuthBackend, error) {
	var backend AuthBackend
	if err := json.Unmarshal([]byte(raw), &backend); err != nil {
		return AuthBackend{}, err
	}
	backend.Backend = strings.TrimSpace(backend.Backend)
	if backend.Backend == "" {
		return AuthBackend{}, errors.New("backend name is required")
	}
	if len(backend.Kwargs) == 0 || string(backend.Kwargs) == "null" {
		backend.Kwargs = json.RawMessage("{}")
	}
	return backend, nil
}

// ParseRequiredFiles splits on the OS path-list separator, dropping empty
// entries.
func ParseRequiredFiles(raw string) []string {
	var files []string
	for _, part := range strings.Split(raw, string(filepath.ListSeparator)) {
		if part = strings.TrimSpace(part); part != "" {
			files = append(files, part)
		}
	}
	return files
}
