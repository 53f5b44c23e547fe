package asr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"openwhisper/internal/config"
	"openwhisper/internal/transcript"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "RecordTemp_test.wav")
	require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
	return path
}

func TestTranscribeRetryExhaustedError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("fail"))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.APIEndpoint = server.URL
	cfg.MaxRetry = 2
	cfg.RetryBaseDelay = 0

	engine, err := NewHTTPEngine(cfg, &http.Client{Timeout: time.Second}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	_, err = engine.Transcribe(context.Background(), Request{Path: writeTempAudio(t)})
	require.Error(t, err)

	var re *RetryExhaustedError
	require.True(t, errors.As(err, &re), "expected RetryExhaustedError, got %T: %v", err, err)
	assert.Equal(t, cfg.MaxRetry, re.Attempts)
	assert.Equal(t, cfg.MaxRetry, re.MaxRetry)
	assert.Equal(t, "fail", string(re.LastResponse))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestTranscribeSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "base.en", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "0.2", r.FormValue("temperature"))
		f, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		b, _ := io.ReadAll(f)
		assert.Equal(t, "test", string(b))
		_, _ = w.Write([]byte(`{"text":"Hello world","segments":[{"text":"Hello"},{"text":"world"}]}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.APIEndpoint = server.URL
	cfg.Token = "tok"
	cfg.ExtraConfig = `{"temperature":0.2}`

	engine, err := NewHTTPEngine(cfg, nil, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	segs, err := engine.Transcribe(context.Background(), Request{Path: writeTempAudio(t), Model: "base.en"})
	require.NoError(t, err)
	assert.Equal(t, []transcript.Segment{{Text: "Hello"}, {Text: "world"}}, segs)
}

func TestTranscribeFallsBackToTextPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":" just text "}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.APIEndpoint = server.URL
	engine, err := NewHTTPEngine(cfg, nil, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	segs, err := engine.Transcribe(context.Background(), Request{Path: writeTempAudio(t)})
	require.NoError(t, err)
	assert.Equal(t, []transcript.Segment{{Text: " just text "}}, segs)
}

func TestNewHTTPEngineRejectsBadExtraConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ExtraConfig = "{"
	_, err := NewHTTPEngine(cfg, nil, zaptest.NewLogger(t).Sugar())
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.APIEndpoint = ""
	_, err = NewHTTPEngine(cfg, nil, zaptest.NewLogger(t).Sugar())
	assert.Error(t, err)
}

type stubEngine struct {
	segs []transcript.Segment
	err  error
	last Request
}

func (s *stubEngine) Transcribe(_ context.Context, req Request) ([]transcript.Segment, error) {
	s.last = req
	return s.segs, s.err
}

func TestInvokerJoinsSegments(t *testing.T) {
	eng := &stubEngine{segs: []transcript.Segment{{Text: "Hello"}, {Text: "world"}}}
	inv := NewInvoker(eng, "base.en", "en", "", zaptest.NewLogger(t).Sugar())

	text, err := inv.Transcribe(context.Background(), "a.wav")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
	assert.Equal(t, Request{Path: "a.wav", Model: "base.en", Language: "en"}, eng.last)

	inv.SetModel("small.en")
	_, err = inv.Transcribe(context.Background(), "b.wav")
	require.NoError(t, err)
	assert.Equal(t, "small.en", eng.last.Model)
}

func TestInvokerWrapsEngineError(t *testing.T) {
	boom := errors.New("boom")
	inv := NewInvoker(&stubEngine{err: boom}, "tiny.en", "", "", zaptest.NewLogger(t).Sugar())

	_, err := inv.Transcribe(context.Background(), "a.wav")
	var te *TranscriptionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "tiny.en", te.Model)
	assert.ErrorIs(t, err, boom)
}
