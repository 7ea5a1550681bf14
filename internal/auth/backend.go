package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"code-submitter/internal/config"
)

const (
	BackendDummy        = "dummy"
	BackendFile         = "file"
	BackendNemesis      = "nemesis"
	BackendDummyNemesis = "dummy-nemesis"
)

type dummyKwargs struct {
	// Team is a pointer so an explicit null can mean "no team".
	Team *string `json:"team"`
}

type fileKwargs struct {
	Path          string `json:"path"`
	BlueshirtTeam string `json:"blueshirt_team"`
}

type nemesisKwargs struct {
	URL    string `json:"url"`
	Verify *bool  `json:"verify"`
}

type dummyNemesisKwargs struct {
	Data []UserInfo `json:"data"`
}

// FromConfig builds the configured Validator.
func FromConfig(cfg config.AuthBackend) (Validator, error) {
	switch cfg.Backend {
	case BackendDummy:
		var kwargs dummyKwargs
		if err := decodeKwargs(cfg, &kwargs); err != nil {
			return nil, err
		}
		team := DefaultDummyTeam
		if kwargs.Team != nil {
			team = *kwargs.Team
		} else if hasKey(cfg.Kwargs, "team") {
			team = ""
		}
		return NewDummyBackend(team), nil

	case BackendFile:
		var kwargs fileKwargs
		if err := decodeKwargs(cfg, &kwargs); err != nil {
			return nil, err
		}
		if kwargs.Path == "" {
			return nil, errors.New("file auth backend requires a path")
		}
		return NewFileBackend(kwargs.Path, kwargs.BlueshirtTeam)

	case BackendNemesis:
		var kwargs nemesisKwargs
		if err := decodeKwargs(cfg, &kwargs); err != nil {
			return nil, err
		}
		if kwargs.URL == "" {
			return nil, errors.New("nemesis auth backend requires a url")
		}
		verify := true
		if kwargs.Verify != nil {
			verify = *kwargs.Verify
		}
		return NewNemesisBackend(kwargs.URL, verify), nil

	case BackendDummyNemesis:
		var kwargs dummyNemesisKwargs
		if err := decodeKwargs(cfg, &kwargs); err != nil {
			return nil, err
		}
		return NewDummyNemesisBackend(kwargs.Data), nil
	}
	return nil, fmt.Errorf("unknown auth backend %q", cfg.Backend)
}

func decodeKwargs(cfg config.AuthBackend, into any) error {
	if len(cfg.Kwargs) == 0 {
		return nil
	}
	if err := json.Unmarshal(cfg.Kwargs, into); err != nil {
		return fmt.Errorf("%s auth backend kwargs: %w", cfg.Backend, err)
	}
	return nil
}

func hasKey(raw json.RawMessage, key string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	_, ok := fields[key]
	return ok
}
