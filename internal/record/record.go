// Package record implements the recording session: it owns the microphone
// stream while a trigger is held and, on stop, runs the captured audio
// through encode, transcribe, filter and inject.
package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"openwhisper/internal/audio"
	"openwhisper/internal/transcript"
	"openwhisper/internal/utterance"
)

// State represents session state.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrNotIdle      = errors.New("recorder not idle")
	ErrNotRecording = errors.New("recorder not recording")
)

// DeviceError reports that the input stream could not be opened.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string { return "audio device: " + e.Err.Error() }

func (e *DeviceError) Unwrap() error { return e.Err }

// CaptureError reports a read failure mid-recording. Chunks read before the
// failure are still processed.
type CaptureError struct {
	Chunks int
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture stopped after %d chunks: %v", e.Chunks, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Transcriber turns a scratch audio file into trimmed text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Deliverer injects accepted text into the focused window.
type Deliverer interface {
	Deliver(text string) error
}

// Cues are played on start and stop.
type Cues interface {
	Armed()
	Disarmed()
}

// HistoryStore records accepted transcriptions.
type HistoryStore interface {
	Add(text string) error
}

// Result describes one completed recording.
type Result struct {
	Text     string
	Verdict  transcript.Verdict
	Chunks   int
	Duration time.Duration
	Err      error
}

// Options configures a Session. History, Cues and Events are optional.
type Options struct {
	Device      audio.Device
	Format      audio.Format
	MinDuration time.Duration
	ScratchDir  string
	Transcriber Transcriber
	Deliverer   Deliverer
	Cache       *transcript.Cache
	History     HistoryStore
	Cues        Cues
	Events      EventSink
	Logger      *zap.SugaredLogger
}

// Session is the recording state machine. Start and Stop may be called from
// any goroutine; Stop blocks until the captured audio has been processed.
type Session struct {
	opts Options

	mu     sync.Mutex
	state  State
	stream audio.Stream
	done   chan captured
	active atomic.Bool
}

// New creates an idle session.
func New(opts Options) *Session {
	if opts.Cache == nil {
		opts.Cache = &transcript.Cache{}
	}
	if opts.Events == nil {
		opts.Events = nopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Session{opts: opts, state: StateIdle}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cache returns the replay cache.
func (s *Session) Cache() *transcript.Cache {
	return s.opts.Cache
}

// Start opens the input stream and begins capturing.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrNotIdle
	}
	stream, err := s.opts.Device.Open(s.opts.Format)
	if err != nil {
		s.mu.Unlock()
		derr := &DeviceError{Err: err}
		s.opts.Logger.Errorw("start failed", "error", derr)
		return derr
	}
	s.stream = stream
	s.done = make(chan captured, 1)
	s.active.Store(true)
	s.state = StateRecording
	go s.capture(stream, s.done)
	s.mu.Unlock()

	s.opts.Logger.Infow("recording started")
	if s.opts.Cues != nil {
		s.opts.Cues.Armed()
	}
	s.opts.Events.StateChanged(StateRecording)
	return nil
}

// Stop ends capture and processes the utterance. Processing is not
// interrupted by ctx cancellation. Pipeline failures are reported in
// Result.Err; the returned error is only ErrNotRecording.
func (s *Session) Stop(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return Result{}, ErrNotRecording
	}
	s.state = StateProcessing
	s.active.Store(false)
	stream, done := s.stream, s.done
	s.mu.Unlock()
	s.opts.Events.StateChanged(StateProcessing)

	got := <-done
	if err := stream.Close(); err != nil {
		s.opts.Logger.Warnw("close stream failed", "error", err)
	}
	if s.opts.Cues != nil {
		s.opts.Cues.Disarmed()
	}
	if got.err != nil {
		s.opts.Logger.Warnw("capture ended early, using partial audio", "error", got.err)
	}
	s.opts.Logger.Infow("recording stopped, processing", "chunks", len(got.chunks))

	res := s.process(context.WithoutCancel(ctx), got.chunks)

	s.mu.Lock()
	s.stream = nil
	s.done = nil
	s.state = StateIdle
	s.mu.Unlock()

	s.opts.Events.StateChanged(StateIdle)
	s.opts.Events.Processed(res)
	return res, nil
}

// Toggle starts when idle and stops when recording.
func (s *Session) Toggle(ctx context.Context) (Result, error) {
	if s.State() == StateRecording {
		return s.Stop(ctx)
	}
	return Result{}, s.Start()
}

// Replay re-injects the last accepted transcription. It reports false when
// there is nothing to replay.
func (s *Session) Replay() (bool, error) {
	text, ok := s.opts.Cache.Get()
	if !ok {
		s.opts.Logger.Infow("no previous transcription to replay")
		return false, nil
	}
	s.opts.Logger.Infow("replaying last transcription", "chars", len(text))
	return true, s.opts.Deliverer.Deliver(text)
}

// Close stops an active recording, processing whatever was captured.
func (s *Session) Close(ctx context.Context) {
	if s.State() == StateRecording {
		_, _ = s.Stop(ctx)
	}
}

func (s *Session) process(ctx context.Context, chunks [][]byte) Result {
	res := Result{
		Chunks:   len(chunks),
		Duration: time.Duration(len(chunks)) * s.opts.Format.ChunkDuration(),
	}

	if len(chunks) == 0 {
		// engines tend to hallucinate text from pure silence
		s.opts.Logger.Infow("no audio data to process")
		res.Verdict = transcript.VerdictNoSpeech
		return res
	}

	padded := utterance.Pad(chunks, s.opts.Format, s.opts.MinDuration)
	if len(padded) > len(chunks) {
		s.opts.Logger.Debugw("padded utterance with silence", "chunks", len(padded)-len(chunks))
	}
	path, err := utterance.Encode(s.opts.ScratchDir, padded, s.opts.Format)
	if err != nil {
		s.opts.Logger.Errorw("encode failed", "error", err)
		res.Err = err
		return res
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.opts.Logger.Warnw("remove scratch file failed", "path", path, "error", err)
		}
	}()

	text, err := s.opts.Transcriber.Transcribe(ctx, path)
	if err != nil {
		s.opts.Logger.Errorw("transcription failed", "error", err)
		res.Err = err
		return res
	}
	res.Text = text
	res.Verdict = transcript.Classify(text)
	switch res.Verdict {
	case transcript.VerdictNoSpeech:
		s.opts.Logger.Infow("no speech detected")
		return res
	case transcript.VerdictArtifact:
		s.opts.Logger.Infow("ignored non-speech transcription", "text", text)
		return res
	}

	s.opts.Logger.Infow("transcription", "text", text)
	s.opts.Cache.Set(text)
	if s.opts.History != nil {
		if err := s.opts.History.Add(text); err != nil {
			s.opts.Logger.Warnw("history add failed", "error", err)
		}
	}
	if err := s.opts.Deliverer.Deliver(text); err != nil {
		res.Err = err
	}
	return res
}
