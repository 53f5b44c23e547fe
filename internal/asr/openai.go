package asr

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"openwhisper/internal/transcript"
)

// OpenAIEngine calls the OpenAI transcription API. The API returns a single
// text, reported as one segment.
type OpenAIEngine struct {
	client openai.Client
}

// NewOpenAIEngine builds a client. baseURL may be empty for the public API.
func NewOpenAIEngine(apiKey, baseURL string, httpClient *http.Client) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAIEngine{client: openai.NewClient(opts...)}, nil
}

// Transcribe uploads req.Path.
func (e *OpenAIEngine) Transcribe(ctx context.Context, req Request) ([]transcript.Segment, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	model := req.Model
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(model),
	}
	if req.Language != "" {
		params.Language = openai.String(req.Language)
	}
	if req.Prompt != "" {
		params.Prompt = openai.String(req.Prompt)
	}

	resp, err := e.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if resp.Text == "" {
		return nil, nil
	}
	return []transcript.Segment{{Text: resp.Text}}, nil
}
