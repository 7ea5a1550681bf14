package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func userInfo() UserInfo {
	return UserInfo{
		Username:  "user",
		FirstName: "Dave",
		LastName:  "McDave",
		Teams:     []string{"team-ABC"},
		IsStudent: true,
	}
}

// newFakeNemesis serves info for /user/user, checking the basic auth
// credentials it is sent.
func newFakeNemesis(t *testing.T, status int, info UserInfo) (*NemesisBackend, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/user" {
			http.NotFound(w, r)
			return
		}
		username, password, ok := r.BasicAuth()
		if !ok || username != "user" || password != "pass" {
			t.Errorf("expected basic auth user/pass, got %q/%q", username, password)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(info)
			return
		}
		_, _ = w.Write([]byte(`{"authentication_errors": ["WRONG_PASSWORD"]}`))
	}))
	t.Cleanup(server.Close)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	backend := NewNemesisBackend(server.URL+"/", true)
	backend.logger = logger
	backend.loader.(*httpLoader).logger = logger
	return backend, &logs
}

func TestNemesisOK(t *testing.T) {
	backend, _ := newFakeNemesis(t, http.StatusOK, userInfo())
	scopes, user, err := backend.Validate(context.Background(), "user", "pass")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(scopes) != 1 || scopes[0] != ScopeAuthenticated {
		t.Fatalf("expected authenticated scope only, got %v", scopes)
	}
	if user.Username != "user" || user.Team != "ABC" {
		t.Fatalf("unexpected user %#v", user)
	}
}

func TestNemesisForbidden(t *testing.T) {
	backend, logs := newFakeNemesis(t, http.StatusForbidden, userInfo())
	_, _, err := backend.Validate(context.Background(), "user", "pass")
	if _, ok := err.(*AuthenticationError); !ok {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if strings.Contains(logs.String(), "level=ERROR") {
		t.Fatalf("expected 403 not to be logged as an error, got %q", logs.String())
	}
}

func TestNemesisUnexpectedStatusIsLogged(t *testing.T) {
	backend, logs := newFakeNemesis(t, http.StatusInternalServerError, userInfo())
	_, _, err := backend.Validate(context.Background(), "user", "pass")
	if _, ok := err.(*AuthenticationError); !ok {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if !strings.Contains(logs.String(), "level=ERROR") || !strings.Contains(logs.String(), "username=user") {
		t.Fatalf("expected an error log naming the user, got %q", logs.String())
	}
}

func TestNemesisNoTeam(t *testing.T) {
	info := userInfo()
	info.Teams = nil
	backend, logs := newFakeNemesis(t, http.StatusOK, info)
	scopes, user, err := backend.Validate(context.Background(), "user", "pass")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.HasTeam() || user.Username != "user" {
		t.Fatalf("unexpected user %#v", user)
	}
	if scopes.Has(ScopeBlueshirt) {
		t.Fatalf("unexpected scopes %v", scopes)
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Fatalf("expected a warning for a student without a team, got %q", logs.String())
	}
}

func TestNemesisMultipleTeams(t *testing.T) {
	info := userInfo()
	info.Teams = []string{"team-DEF", "team-ABC"}
	backend, logs := newFakeNemesis(t, http.StatusOK, info)
	_, user, err := backend.Validate(context.Background(), "user", "pass")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.Team != "DEF" {
		t.Fatalf("expected first team DEF, got %q", user.Team)
	}
	if !strings.Contains(logs.String(), "more than one team") {
		t.Fatalf("expected a warning about multiple teams, got %q", logs.String())
	}
}

func TestNemesisBlueshirt(t *testing.T) {
	info := userInfo()
	info.Teams = nil
	info.IsStudent = false
	info.IsBlueshirt = true
	backend, logs := newFakeNemesis(t, http.StatusOK, info)
	scopes, user, err := backend.Validate(context.Background(), "user", "pass")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.HasTeam() {
		t.Fatalf("expected no team, got %q", user.Team)
	}
	if !scopes.Has(ScopeAuthenticated) || !scopes.Has(ScopeBlueshirt) {
		t.Fatalf("expected blueshirt scopes, got %v", scopes)
	}
	if logs.Len() != 0 {
		t.Fatalf("expected no warning for a non-student without a team, got %q", logs.String())
	}
}

func TestDummyNemesis(t *testing.T) {
	backend := NewDummyNemesisBackend(nil)

	scopes, user, err := backend.Validate(context.Background(), "blueshirt", "x")
	if err != nil {
		t.Fatalf("validate blueshirt: %v", err)
	}
	if !scopes.Has(ScopeBlueshirt) || user.Team != "SRZ" {
		t.Fatalf("unexpected blueshirt identity %v %#v", scopes, user)
	}

	scopes, user, err = backend.Validate(context.Background(), "competitor", "x")
	if err != nil {
		t.Fatalf("validate competitor: %v", err)
	}
	if scopes.Has(ScopeBlueshirt) || user.Team != "ABC" {
		t.Fatalf("unexpected competitor identity %v %#v", scopes, user)
	}

	assertAuthError(t, backend, "nobody", "x", "Unknown user nobody")
	assertAuthError(t, backend, "competitor", "", "Must provide a password")
}
