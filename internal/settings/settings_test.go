package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsWhenMissing(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"), Defaults())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s.Get())
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	s, err := Open(path, Defaults())
	require.NoError(t, err)

	got, err := s.Update(func(st *Settings) {
		st.Hotkey = "alt+ctrl+f9"
		st.ToggleMode = true
		st.Model = "small.en"
	})
	require.NoError(t, err)
	assert.Equal(t, "small.en", got.Model)

	reopened, err := Open(path, Defaults())
	require.NoError(t, err)
	assert.Equal(t, Settings{Hotkey: "alt+ctrl+f9", ToggleMode: true, Model: "small.en"}, reopened.Get())
}

func TestPartialFileMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"toggle_mode": true}`), 0644))

	s, err := Open(path, Defaults())
	require.NoError(t, err)
	got := s.Get()
	assert.True(t, got.ToggleMode)
	assert.Equal(t, "ctrl+alt+space", got.Hotkey)
	assert.Equal(t, "base.en", got.Model)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err := Open(path, Defaults())
	assert.Error(t, err)
}

func TestValidModel(t *testing.T) {
	assert.True(t, ValidModel("large-v3"))
	assert.False(t, ValidModel("huge"))
}
