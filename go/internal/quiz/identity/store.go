package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists the participant identifier between runs, the way the
// browser client keeps it in a cookie. It is read-only to the sync core;
// only the join/exit flows touch it.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath places the identifier under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "brainup", "player_id"), nil
}

// Load returns the stored identifier, or "" when none is stored.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read player id: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save stores the identifier.
func (s *Store) Save(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("write player id: %w", err)
	}
	return nil
}

// Clear removes the stored identifier. Clearing an empty store is fine.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear player id: %w", err)
	}
	return nil
}
