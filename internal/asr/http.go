package asr

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"openwhisper/internal/audio/ffmpeg"
	"openwhisper/internal/config"
	"openwhisper/internal/jsonpath"
	"openwhisper/internal/transcript"
	"openwhisper/internal/utterance"
)

// HTTPEngine uploads audio as multipart form data to a whisper-style
// inference endpoint (whisper.cpp server, OpenAI-compatible APIs).
type HTTPEngine struct {
	cfg            config.Config
	rest           *resty.Client
	extraConfigMap map[string]interface{}
	logger         *zap.SugaredLogger
}

// NewHTTPEngine creates the engine and parses ExtraConfig.
func NewHTTPEngine(cfg config.Config, httpClient *http.Client, logger *zap.SugaredLogger) (*HTTPEngine, error) {
	if cfg.APIEndpoint == "" {
		return nil, fmt.Errorf("API endpoint is empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second}
	}
	e := &HTTPEngine{
		cfg:    cfg,
		rest:   resty.NewWithClient(httpClient).SetHeader("User-Agent", "openwhisper/1.0"),
		logger: logger,
	}
	if cfg.ExtraConfig != "" {
		e.extraConfigMap = make(map[string]interface{})
		if err := json.Unmarshal([]byte(cfg.ExtraConfig), &e.extraConfigMap); err != nil {
			return nil, fmt.Errorf("invalid extra-config JSON: %w", err)
		}
	}
	return e, nil
}

// Transcribe uploads req.Path, retrying with doubling delay, and returns
// the ordered segments of the response.
func (e *HTTPEngine) Transcribe(ctx context.Context, req Request) ([]transcript.Segment, error) {
	path := req.Path
	if e.cfg.UploadCodec != "" {
		out := utterance.ScratchPath(e.scratchDir(), config.ContainerExt(e.cfg.UploadContainer))
		defer os.Remove(out)
		opts := ffmpeg.Options{
			Codec:      e.cfg.UploadCodec,
			Channels:   e.cfg.Channels,
			SampleRate: e.cfg.SAMPLING_RATE,
			BitRateK:   e.cfg.BIT_RATE,
		}
		if err := ffmpeg.Convert(ctx, opts, path, out); err != nil {
			return nil, err
		}
		path = out
	}

	fields := e.formFields(req)
	delay := e.cfg.RetryBaseDelay
	var lastResp []byte
	for try := 1; ; try++ {
		ok, body := e.doUpload(ctx, path, fields)
		if ok {
			return e.segments(body)
		}
		lastResp = body
		e.logger.Warnw("upload attempt failed", "attempt", try, "response", formatResponse(body))
		if try >= e.cfg.MaxRetry {
			return nil, &RetryExhaustedError{Attempts: try, MaxRetry: e.cfg.MaxRetry, LastResponse: lastResp}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(delay * float64(time.Second))):
		}
		delay *= 2
	}
}

func (e *HTTPEngine) scratchDir() string {
	return config.TempDir(&e.cfg)
}

func (e *HTTPEngine) formFields(req Request) map[string]string {
	base := make(map[string]interface{})
	if req.Model != "" {
		base["model"] = req.Model
	}
	if req.Language != "" {
		base["language"] = req.Language
	}
	if req.Prompt != "" {
		base["prompt"] = req.Prompt
	}
	if e.cfg.SegmentsPath != "" {
		base["response_format"] = "verbose_json"
	}
	for k, v := range e.extraConfigMap {
		base[k] = v
	}

	fields := make(map[string]string, len(base))
	for k, v := range base {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case bool, float64, int:
			fields[k] = fmt.Sprintf("%v", val)
		default:
			if b, err := json.Marshal(val); err == nil {
				fields[k] = string(b)
			} else {
				fields[k] = fmt.Sprintf("%v", val)
			}
		}
	}
	return fields
}

func (e *HTTPEngine) doUpload(ctx context.Context, path string, fields map[string]string) (bool, []byte) {
	e.logger.Debugw("uploading", "file", path, "endpoint", e.cfg.APIEndpoint)

	r := e.rest.R().
		SetContext(ctx).
		SetFile("file", path).
		SetFormData(fields)
	if e.cfg.Token != "" {
		r.SetAuthToken(e.cfg.Token)
	}

	start := time.Now()
	resp, err := r.Post(e.cfg.APIEndpoint)
	e.logger.Debugw("upload finished", "duration", time.Since(start))
	if err != nil {
		return false, []byte(fmt.Sprintf("request error: %v", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return false, resp.Body()
	}
	return true, resp.Body()
}

// segments prefers the per-segment path and falls back to the whole-text path.
func (e *HTTPEngine) segments(body []byte) ([]transcript.Segment, error) {
	if e.cfg.SegmentsPath != "" {
		texts, err := jsonpath.ExtractTexts(body, e.cfg.SegmentsPath)
		if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if len(texts) > 0 {
			out := make([]transcript.Segment, len(texts))
			for i, t := range texts {
				out[i] = transcript.Segment{Text: t}
			}
			return out, nil
		}
	}
	text := jsonpath.ExtractTextFromResponse(body, e.cfg.TEXTPath)
	if text == "" {
		return nil, nil
	}
	return []transcript.Segment{{Text: text}}, nil
}

func formatResponse(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	const maxText = 1000
	const maxBin = 256

	if utf8.Valid(b) {
		s := string(b)
		if len(s) > maxText {
			return fmt.Sprintf("%s... (truncated, total %d bytes)", s[:maxText], len(b))
		}
		return s
	}

	if len(b) > maxBin {
		return fmt.Sprintf("<binary %d bytes, prefix hex: %s...>", len(b), hex.EncodeToString(b[:maxBin]))
	}
	return fmt.Sprintf("<binary %d bytes, hex: %s>", len(b), hex.EncodeToString(b))
}
