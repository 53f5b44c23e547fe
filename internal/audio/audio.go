// Package audio defines the capture format and the device abstraction the
// recorder reads from.
package audio

import (
	"encoding/binary"
	"time"
)

// BytesPerSample is fixed: capture is always signed 16-bit little-endian.
const BytesPerSample = 2

// Format describes PCM capture parameters.
type Format struct {
	SampleRate int
	Channels   int
	ChunkSize  int // frames per Read
}

// DefaultFormat is 16 kHz mono in 1024-frame chunks.
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, ChunkSize: 1024}
}

// ChunkBytes is the size of one chunk as returned by Stream.Read.
func (f Format) ChunkBytes() int {
	return f.ChunkSize * f.Channels * BytesPerSample
}

// ChunkDuration is the playback length of one chunk.
func (f Format) ChunkDuration() time.Duration {
	return time.Duration(f.ChunkSize) * time.Second / time.Duration(f.SampleRate)
}

// Device opens input streams.
type Device interface {
	Open(format Format) (Stream, error)
}

// Stream is an open input stream. Read blocks until one chunk is available.
type Stream interface {
	Read() ([]byte, error)
	Close() error
}

// PutInt16LE writes samples into dst as little-endian bytes. dst must hold
// at least 2*len(samples) bytes.
func PutInt16LE(dst []byte, samples []int16) {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
}

// Int16LE decodes little-endian PCM bytes into ints, the sample type used by
// go-audio buffers.
func Int16LE(src []byte) []int {
	out := make([]int, len(src)/2)
	for i := range out {
		out[i] = int(int16(binary.LittleEndian.Uint16(src[i*2:])))
	}
	return out
}
