package tray

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"openwhisper/internal/record"
	"openwhisper/internal/transcript"
)

func TestIconPNG(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(iconPNG(32)))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	r, g, b, _ := img.At(16, 16).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
	r, g, b, _ = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0x6666), g)
	assert.Zero(t, r)
	assert.Equal(t, uint32(0xcccc), b)
}

func TestWrapICO(t *testing.T) {
	p := iconPNG(64)
	ico := wrapICO(p, 64)
	require.Len(t, ico, 22+len(p))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[2:]))
	assert.Equal(t, uint32(len(p)), binary.LittleEndian.Uint32(ico[14:]))
	assert.Equal(t, uint32(22), binary.LittleEndian.Uint32(ico[18:]))
	assert.Equal(t, p, ico[22:])
}

func TestRecordLabel(t *testing.T) {
	assert.Equal(t, "Start Recording", recordLabel(record.StateIdle))
	assert.Equal(t, "Stop Recording", recordLabel(record.StateRecording))
	assert.Equal(t, "Processing...", recordLabel(record.StateProcessing))
}

func TestReplayEnabledAfterAcceptedResult(t *testing.T) {
	tr := New(nil, zaptest.NewLogger(t).Sugar())

	tr.Processed(record.Result{Err: errors.New("engine down")})
	tr.Processed(record.Result{Text: "[BLANK_AUDIO]", Verdict: transcript.VerdictArtifact})
	tr.Processed(record.Result{Verdict: transcript.VerdictNoSpeech})
	assert.False(t, tr.hasReplay)

	tr.Processed(record.Result{Text: "hello", Verdict: transcript.VerdictAccepted, Err: errors.New("no focus")})
	assert.True(t, tr.hasReplay)
}
