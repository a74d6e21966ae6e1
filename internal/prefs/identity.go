// Package prefs persists small per-user preferences in the user config
// directory. Currently just the participant identity.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const identityFile = "identity.json"

// Identity is the participant's display choice, remembered across visits:
// either a display name or an explicit anonymous opt-out.
type Identity struct {
	DisplayName string `json:"displayName"`
	Anonymous   bool   `json:"anonymous"`
}

// Author resolves the name written onto items this participant creates.
func (id Identity) Author() string {
	if id.Anonymous || id.DisplayName == "" {
		return "Anonymous"
	}
	return id.DisplayName
}

func identityPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "treeboard")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, identityFile), nil
}

// SaveIdentity writes the identity choice, atomically.
func SaveIdentity(id Identity) error {
	path, err := identityPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadIdentity reads the stored identity; the zero value if none exists.
func LoadIdentity() (Identity, error) {
	path, err := identityPath()
	if err != nil {
		return Identity{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, nil
		}
		return Identity{}, err
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, err
	}
	return id, nil
}
