package prefs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Anonymous", Identity{}.Author())
	require.Equal(t, "Anonymous", Identity{DisplayName: "Riya", Anonymous: true}.Author())
	require.Equal(t, "Riya", Identity{DisplayName: "Riya"}.Author())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	id, err := LoadIdentity()
	require.NoError(t, err)
	require.Equal(t, Identity{}, id)

	require.NoError(t, SaveIdentity(Identity{DisplayName: "Riya"}))
	id, err = LoadIdentity()
	require.NoError(t, err)
	require.Equal(t, "Riya", id.DisplayName)
	require.False(t, id.Anonymous)
}
