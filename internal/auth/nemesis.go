package auth

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const teamPrefix = "team-"

// UserInfo is the identity service's description of a user.
type UserInfo struct {
	Username     string   `json:"username"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Teams        []string `json:"teams"`
	IsBlueshirt  bool     `json:"is_blueshirt"`
	IsStudent    bool     `json:"is_student"`
	IsTeamLeader bool     `json:"is_team_leader"`
}

type userLoader interface {
	loadUser(ctx context.Context, username, password string) (UserInfo, error)
}

// NemesisBackend authenticates against the competition identity service.
type NemesisBackend struct {
	loader userLoader
	logger *slog.Logger
}

// NewNemesisBackend talks to the identity service at baseURL. With verify
// unset TLS certificates are not checked.
func NewNemesisBackend(baseURL string, verify bool) *NemesisBackend {
	client := &http.Client{}
	if !verify {
		client.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	logger := slog.Default()
	return &NemesisBackend{
		loader: &httpLoader{
			baseURL: strings.TrimRight(baseURL, "/"),
			client:  client,
			logger:  logger,
		},
		logger: logger,
	}
}

func (b *NemesisBackend) Validate(ctx context.Context, username, password string) (Scopes, User, error) {
	if err := requireCredentials(username, password); err != nil {
		return nil, User{}, err
	}
	info, err := b.loader.loadUser(ctx, username, password)
	if err != nil {
		return nil, User{}, err
	}
	return scopesFor(info), User{Username: username, Team: b.teamFor(info)}, nil
}

func stripTeam(team string) string {
	return strings.TrimPrefix(team, teamPrefix)
}

func (b *NemesisBackend) teamFor(info UserInfo) string {
	if len(info.Teams) == 0 {
		if info.IsStudent {
			b.logger.Warn("competitor has no teams", "username", info.Username)
		}
		return ""
	}

	teams := make([]string, 0, len(info.Teams))
	for _, team := range info.Teams {
		teams = append(teams, stripTeam(team))
	}
	team := teams[0]
	if len(teams) > 1 {
		b.logger.Warn("user is in more than one team",
			"username", info.Username,
			"teams", teams,
			"using", team,
		)
	}
	return team
}

func scopesFor(info UserInfo) Scopes {
	scopes := Scopes{ScopeAuthenticated}
	if info.IsBlueshirt {
		scopes = append(scopes, ScopeBlueshirt)
	}
	return scopes
}

type httpLoader struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func (l *httpLoader) loadUser(ctx context.Context, username, password string) (UserInfo, error) {
	endpoint := l.baseURL + "/user/" + url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return UserInfo{}, fmt.Errorf("build identity request: %w", err)
	}
	req.SetBasicAuth(username, password)

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Error("failed to contact identity service", "username", username, "error", err)
		return UserInfo{}, authError("Unable to contact the identity service")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode != http.StatusForbidden {
			l.logger.Error("unexpected identity service response",
				"username", username,
				"status", resp.StatusCode,
			)
		}
		return UserInfo{}, authError(fmt.Sprintf("Identity service responded %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		l.logger.Error("invalid identity service response", "username", username, "error", err)
		return UserInfo{}, authError("Invalid response from the identity service")
	}
	return info, nil
}
