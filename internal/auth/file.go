package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultBlueshirtTeam is the team code whose login is a blueshirt.
	DefaultBlueshirtTeam = "SRZ"

	incorrectCredentialsMessage = "Username or password is incorrect"
)

// FileBackend checks credentials against a YAML file mapping team code to
// plaintext password. The username is the team code.
type FileBackend struct {
	credentials   map[string]string
	blueshirtTeam string
}

// NewFileBackend loads credentials from path. An empty blueshirtTeam selects
// DefaultBlueshirtTeam.
func NewFileBackend(path, blueshirtTeam string) (*FileBackend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	var entries map[string]*string
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	// A team listed without a password cannot log in.
	credentials := make(map[string]string, len(entries))
	for team, password := range entries {
		if password != nil && *password != "" {
			credentials[team] = *password
		}
	}
	if blueshirtTeam == "" {
		blueshirtTeam = DefaultBlueshirtTeam
	}
	return &FileBackend{credentials: credentials, blueshirtTeam: blueshirtTeam}, nil
}

func (b *FileBackend) Validate(_ context.Context, username, password string) (Scopes, User, error) {
	known, ok := b.credentials[username]
	if !ok || password == "" {
		return nil, User{}, authError(incorrectCredentialsMessage)
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(known)) != 1 {
		return nil, User{}, authError(incorrectCredentialsMessage)
	}

	if username == b.blueshirtTeam {
		return Scopes{ScopeAuthenticated, ScopeBlueshirt}, User{Username: "Blueshirt"}, nil
	}
	return Scopes{ScopeAuthenticated}, User{Username: "Team " + username, Team: username}, nil
}
