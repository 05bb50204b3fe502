package identity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyStore(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "player_id"))

	id, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSaveAndLoad(t *testing.T) {
	// Save creates missing parent directories
	s := NewStore(filepath.Join(t.TempDir(), "nested", "player_id"))

	require.NoError(t, s.Save("p-42"))

	id, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "p-42", id)
}

func TestClear(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "player_id"))
	require.NoError(t, s.Save("p-42"))

	require.NoError(t, s.Clear())

	id, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, id)

	// clearing again is a no-op
	assert.NoError(t, s.Clear())
}
