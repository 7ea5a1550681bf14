package auth

import (
	"context"
	"log/slog"
)

// DefaultDummyUsers are served by a DummyNemesisBackend configured without
// users of its own.
var DefaultDummyUsers = []UserInfo{
	{
		Username:    "blueshirt",
		FirstName:   "Blue",
		LastName:    "Shirt",
		Teams:       []string{"team-SRZ"},
		IsBlueshirt: true,
	},
	{
		Username:  "competitor",
		FirstName: "Competitor",
		Teams:     []string{"team-ABC"},
	},
}

type staticLoader map[string]UserInfo

func (l staticLoader) loadUser(_ context.Context, username, _ string) (UserInfo, error) {
	info, ok := l[username]
	if !ok {
		return UserInfo{}, authError("Unknown user " + username)
	}
	return info, nil
}

// NewDummyNemesisBackend behaves like NewNemesisBackend but serves users
// from memory and accepts any non-empty password.
func NewDummyNemesisBackend(users []UserInfo) *NemesisBackend {
	if users == nil {
		users = DefaultDummyUsers
	}
	loader := make(staticLoader, len(users))
	for _, user := range users {
		loader[user.Username] = user
	}
	return &NemesisBackend{loader: loader, logger: slog.Default()}
}
