// Package portaudio implements audio.Device on the default PortAudio input.
package portaudio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"openwhisper/internal/audio"
)

// Device is the default PortAudio input device. PortAudio is initialized once
// in New and terminated by Close.
type Device struct {
	mu     sync.Mutex
	closed bool
}

// New initializes PortAudio.
func New() (*Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	return &Device{}, nil
}

// Open opens and starts a blocking input stream on the default device.
func (d *Device) Open(format audio.Format) (audio.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("portaudio device closed")
	}

	in := make([]int16, format.ChunkSize*format.Channels)
	stream, err := portaudio.OpenDefaultStream(format.Channels, 0, float64(format.SampleRate), format.ChunkSize, in)
	if err != nil {
		return nil, fmt.Errorf("open stream failed: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start stream failed: %w", err)
	}
	return &Stream{stream: stream, in: in}, nil
}

// Close terminates PortAudio.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return portaudio.Terminate()
}

// Stream wraps a started PortAudio stream.
type Stream struct {
	stream *portaudio.Stream
	in     []int16
}

// Read blocks for one chunk and returns it as little-endian bytes. Input
// overflow is reported by PortAudio as an error but the buffer is still
// filled, so it is not treated as fatal.
func (s *Stream) Read() ([]byte, error) {
	if err := s.stream.Read(); err != nil && err != portaudio.InputOverflowed {
		return nil, err
	}
	out := make([]byte, len(s.in)*audio.BytesPerSample)
	audio.PutInt16LE(out, s.in)
	return out, nil
}

// Close stops and closes the stream.
func (s *Stream) Close() error {
	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	if stopErr != nil {
		return stopErr
	}
	return closeErr
}
