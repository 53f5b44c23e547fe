package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNewestFirstAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	s, err := Open(path, 0)
	require.NoError(t, err)
	assert.Empty(t, s.List())

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time { n++; return base.Add(time.Duration(n) * time.Second) }

	require.NoError(t, s.Add("first"))
	require.NoError(t, s.Add("second"))
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Text)
	assert.Equal(t, "first", list[1].Text)
	first, err := time.Parse(time.RFC3339, list[0].Timestamp)
	require.NoError(t, err)
	second, err := time.Parse(time.RFC3339, list[1].Timestamp)
	require.NoError(t, err)
	assert.True(t, first.After(second))

	reopened, err := Open(path, 0)
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, reopened.List()[0].ID)

	got, err := reopened.Get(list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)
	_, err = reopened.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLimit(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "h.json"), 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(fmt.Sprintf("t%d", i)))
	}
	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "t4", list[0].Text)
	assert.Equal(t, "t2", list[2].Text)
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Add("x"))
	require.NoError(t, s.Clear())
	assert.Empty(t, s.List())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestOpenLegacyEntriesWithoutIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	body := `[{"text":"old","timestamp":"2024-01-02T03:04:05.123456"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	s, err := Open(path, 0)
	require.NoError(t, err)
	list := s.List()
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, "old", list[0].Text)
	assert.Equal(t, "2024-01-02T03:04:05.123456", list[0].Timestamp)
}

func TestOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err := Open(path, 0)
	assert.Error(t, err)
}
