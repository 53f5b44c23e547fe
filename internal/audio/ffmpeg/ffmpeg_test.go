package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsWithBitrate(t *testing.T) {
	args, err := Args(Options{Codec: "OPUS", Channels: 1, SampleRate: 16000, BitRateK: 32}, "in.wav", "out.ogg")
	require.NoError(t, err)
	assert.Equal(t, []string{"-y", "-loglevel", "error", "-i", "in.wav", "-ac", "1", "-ar", "16000", "-c:a", "libopus", "-b:a", "32k", "out.ogg"}, args)
}

func TestArgsLossless(t *testing.T) {
	args, err := Args(Options{Codec: "flac"}, "in.wav", "out.flac")
	require.NoError(t, err)
	assert.NotContains(t, args, "-b:a")
	assert.Equal(t, "out.flac", args[len(args)-1])
}

func TestArgsUnsupported(t *testing.T) {
	_, err := Args(Options{Codec: "tape"}, "in.wav", "out")
	assert.Error(t, err)
}
