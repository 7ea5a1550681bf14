package auth

import "context"

// DefaultDummyTeam is the team every DummyBackend user belongs to unless
// configured otherwise.
const DefaultDummyTeam = "SRZ"

// DummyBackend accepts any non-empty credentials.
type DummyBackend struct {
	team string
}

func NewDummyBackend(team string) *DummyBackend {
	return &DummyBackend{team: team}
}

func (b *DummyBackend) Validate(_ context.Context, username, password string) (Scopes, User, error) {
	if err := requireCredentials(username, password); err != nil {
		return nil, User{}, err
	}
	return Scopes{ScopeAuthenticated}, User{Username: username, Team: b.team}, nil
}
