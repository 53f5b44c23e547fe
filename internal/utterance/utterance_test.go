package utterance

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openwhisper/internal/audio"
)

func chunk(f audio.Format, fill byte) []byte {
	return bytes.Repeat([]byte{fill}, f.ChunkBytes())
}

func TestPadShortBufferToWholeChunks(t *testing.T) {
	f := audio.DefaultFormat()
	// 16000 frames / 1024 per chunk = 15.6, so one second needs 16 chunks.
	for n := 0; n < 16; n++ {
		var in [][]byte
		for i := 0; i < n; i++ {
			in = append(in, chunk(f, byte(i+1)))
		}
		out := Pad(in, f, time.Second)
		require.Len(t, out, 16, "n=%d", n)
		for i := 0; i < n; i++ {
			assert.Equal(t, in[i], out[i], "original chunk %d changed", i)
		}
		for i := n; i < 16; i++ {
			assert.Equal(t, make([]byte, f.ChunkBytes()), out[i], "padding chunk %d not silent", i)
		}
	}
}

func TestPadNeverTruncates(t *testing.T) {
	f := audio.DefaultFormat()
	var in [][]byte
	for i := 0; i < 40; i++ {
		in = append(in, chunk(f, 7))
	}
	assert.Len(t, Pad(in, f, time.Second), 40)
}

func TestEncodeWritesDecodableWav(t *testing.T) {
	f := audio.DefaultFormat()
	dir := t.TempDir()
	samples := make([]int16, f.ChunkSize)
	for i := range samples {
		samples[i] = int16(i - 512)
	}
	c := make([]byte, f.ChunkBytes())
	audio.PutInt16LE(c, samples)

	path, err := Encode(dir, Pad([][]byte{c}, f, time.Second), f)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), ScratchPrefix))
	assert.Equal(t, dir, filepath.Dir(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	dec := wav.NewDecoder(file)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 16000, int(dec.SampleRate))
	assert.Equal(t, 1, int(dec.NumChans))
	assert.Equal(t, 16, int(dec.BitDepth))
	require.Len(t, buf.Data, 16*f.ChunkSize)
	for i, s := range samples {
		assert.Equal(t, int(s), buf.Data[i])
	}
	assert.Equal(t, 0, buf.Data[len(buf.Data)-1])
}

func TestEncodeFailureLeavesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	_, err := Encode(dir, [][]byte{make([]byte, 2048)}, audio.DefaultFormat())
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}
