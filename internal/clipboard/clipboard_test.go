package clipboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	content string
	readErr error
	writes  []string
}

func newTestPaster(b *fakeBoard, pasteErr error) *Paster {
	return &Paster{
		readAll: func() (string, error) {
			if b.readErr != nil {
				return "", b.readErr
			}
			return b.content, nil
		},
		writeAll: func(s string) error {
			b.content = s
			b.writes = append(b.writes, s)
			return nil
		},
		paste: func() error { return pasteErr },
		sleep: func(time.Duration) {},
	}
}

func TestInjectRestoresClipboard(t *testing.T) {
	b := &fakeBoard{content: "previous"}
	p := newTestPaster(b, nil)

	require.NoError(t, p.Inject("hello"))
	assert.Equal(t, []string{"hello", "previous"}, b.writes)
	assert.Equal(t, "previous", b.content)
}

func TestInjectRestoresClipboardWhenPasteFails(t *testing.T) {
	b := &fakeBoard{content: "previous"}
	p := newTestPaster(b, errors.New("keyboard init failed"))

	err := p.Inject("hello")
	require.Error(t, err)
	assert.Equal(t, "previous", b.content)
}

func TestInjectSkipsRestoreWhenReadFails(t *testing.T) {
	b := &fakeBoard{readErr: errors.New("no clipboard owner")}
	p := newTestPaster(b, nil)

	require.NoError(t, p.Inject("hello"))
	assert.Equal(t, []string{"hello"}, b.writes)
	assert.Equal(t, "hello", b.content)
}

func TestInjectWriteFailure(t *testing.T) {
	b := &fakeBoard{content: "previous"}
	p := newTestPaster(b, nil)
	p.writeAll = func(string) error { return errors.New("denied") }
	pasted := false
	p.paste = func() error { pasted = true; return nil }

	err := p.Inject("hello")
	require.ErrorContains(t, err, "clipboard write failed")
	assert.False(t, pasted)
	assert.Equal(t, "previous", b.content)
}
