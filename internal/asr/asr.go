// Package asr hands scratch audio files to a transcription engine and joins
// the returned segments into one transcription.
package asr

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"openwhisper/internal/transcript"
)

// Request is one transcription call.
type Request struct {
	Path     string
	Model    string
	Language string
	Prompt   string
}

// Engine produces ordered segments for an audio file.
type Engine interface {
	Transcribe(ctx context.Context, req Request) ([]transcript.Segment, error)
}

// TranscriptionError wraps any engine failure.
type TranscriptionError struct {
	Model string
	Err   error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed (model %q): %v", e.Model, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// RetryExhaustedError is returned when every upload attempt failed.
type RetryExhaustedError struct {
	Attempts     int
	MaxRetry     int
	LastResponse []byte
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("exceeded max retries (%d attempts of %d): %s", e.Attempts, e.MaxRetry, formatResponse(e.LastResponse))
}

// Invoker calls the engine with the current model and joins its output.
type Invoker struct {
	engine   Engine
	model    atomic.Value
	language string
	prompt   string
	logger   *zap.SugaredLogger
}

// NewInvoker wraps engine. model may be changed later with SetModel.
func NewInvoker(engine Engine, model, language, prompt string, logger *zap.SugaredLogger) *Invoker {
	inv := &Invoker{engine: engine, language: language, prompt: prompt, logger: logger}
	inv.model.Store(model)
	return inv
}

// SetModel switches the model used by subsequent calls.
func (i *Invoker) SetModel(model string) {
	i.model.Store(model)
	i.logger.Infow("model changed", "model", model)
}

// Model returns the current model.
func (i *Invoker) Model() string {
	return i.model.Load().(string)
}

// Transcribe runs the engine on path and returns the joined, trimmed text.
func (i *Invoker) Transcribe(ctx context.Context, path string) (string, error) {
	model := i.Model()
	segments, err := i.engine.Transcribe(ctx, Request{
		Path:     path,
		Model:    model,
		Language: i.language,
		Prompt:   i.prompt,
	})
	if err != nil {
		return "", &TranscriptionError{Model: model, Err: err}
	}
	text := transcript.Join(segments)
	i.logger.Debugw("transcribed", "segments", len(segments), "chars", len(text))
	return text, nil
}
