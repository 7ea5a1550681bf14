// Package auth turns HTTP Basic credentials into an identity and a set of
// scopes. The backend is chosen once at startup from configuration.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"slices"
	"strings"
)

const (
	ScopeAuthenticated = "authenticated"
	ScopeBlueshirt     = "blueshirt"
)

var (
	// ErrNoCredentials means the request carried no Authorization header.
	ErrNoCredentials = errors.New("no credentials")
	// ErrInvalidCredentials means the Authorization header could not be
	// parsed as Basic credentials.
	ErrInvalidCredentials = errors.New("invalid basic auth credentials")
)

// AuthenticationError is a failed login. Message is safe to show the user.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func authError(message string) error {
	return &AuthenticationError{Message: message}
}

// User is an authenticated identity. Team is empty for users who belong to
// no team, such as blueshirts.
type User struct {
	Username string
	Team     string
}

func (u User) HasTeam() bool {
	return u.Team != ""
}

// Scopes are the capabilities granted to a user.
type Scopes []string

func (s Scopes) Has(scope string) bool {
	return slices.Contains(s, scope)
}

// Validator checks a username and password.
type Validator interface {
	Validate(ctx context.Context, username, password string) (Scopes, User, error)
}

// ExtractBasicAuth parses the value of an Authorization header.
func ExtractBasicAuth(header string) (string, string, error) {
	if header == "" {
		return "", "", ErrNoCredentials
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", "", ErrInvalidCredentials
	}
	if !strings.EqualFold(parts[0], "basic") {
		return "", "", authError("Invalid auth scheme")
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	username, password, _ := strings.Cut(string(decoded), ":")
	return username, password, nil
}

func requireCredentials(username, password string) error {
	if username == "" {
		return authError("Must provide a username")
	}
	if password == "" {
		return authError("Must provide a password")
	}
	return nil
}
