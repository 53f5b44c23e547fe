// Package utterance pads captured PCM to a minimum length and writes it to a
// scratch WAV file for the transcription engine.
package utterance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"openwhisper/internal/audio"
)

// ScratchPrefix names every scratch file so stale ones can be swept at startup.
const ScratchPrefix = "RecordTemp_"

// EncodingError reports a failure writing the scratch container.
type EncodingError struct {
	Path string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Pad appends zero chunks until the buffer lasts at least minDur. The deficit is
// rounded up to whole chunks. Existing chunks are never modified or dropped.
func Pad(chunks [][]byte, format audio.Format, minDur time.Duration) [][]byte {
	frameBytes := format.Channels * audio.BytesPerSample
	var have int
	for _, c := range chunks {
		have += len(c)
	}
	haveFrames := have / frameBytes
	minFrames := int(minDur * time.Duration(format.SampleRate) / time.Second)
	if haveFrames >= minFrames {
		return chunks
	}
	missing := minFrames - haveFrames
	n := (missing + format.ChunkSize - 1) / format.ChunkSize

	out := make([][]byte, len(chunks), len(chunks)+n)
	copy(out, chunks)
	for i := 0; i < n; i++ {
		out = append(out, make([]byte, format.ChunkBytes()))
	}
	return out
}

// ScratchPath returns a fresh scratch file path in dir with the given extension.
func ScratchPath(dir, ext string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("%s%s.%s", ScratchPrefix, id, ext))
}

// Encode writes chunks as a 16-bit PCM WAV file under dir and returns its path.
// On failure nothing is left on disk.
func Encode(dir string, chunks [][]byte, format audio.Format) (string, error) {
	path := ScratchPath(dir, "wav")
	if err := writeWav(path, chunks, format); err != nil {
		_ = os.Remove(path)
		return "", &EncodingError{Path: path, Err: err}
	}
	return path, nil
}

func writeWav(path string, chunks [][]byte, format audio.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(f, format.SampleRate, 16, format.Channels, 1)
	afmt := &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate}
	for _, c := range chunks {
		buf := &goaudio.IntBuffer{Format: afmt, Data: audio.Int16LE(c), SourceBitDepth: 16}
		if err := enc.Write(buf); err != nil {
			_ = enc.Close()
			_ = f.Close()
			return fmt.Errorf("wav write failed: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("wav close failed: %w", err)
	}
	return f.Close()
}
