// Package whisper implements the speech-to-text backend for OpenAI's
// Whisper transcription endpoint: a multipart/form-data upload of the
// raw audio file alongside model and formatting fields.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
	"github.com/adapterhub/commonrt/pkg/internal/multipart"
)

const (
	providerName   = "whisper"
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "whisper-1"
)

// Config configures a Client. APIKey falls back to the OPENAI_API_KEY
// environment variable when left empty, resolved once inside New.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client is an OpenAI Whisper transcription session.
type Client struct {
	http *httpclient.Client
}

// New builds a Client, resolving the API key from the environment when
// Config leaves it empty.
func New(cfg Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("whisper: API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := httpclient.New(httpclient.Config{
		BaseURL: baseURL,
		Headers: map[string]string{"Authorization": "Bearer " + apiKey},
	})
	return &Client{http: httpClient}, nil
}

// TranscriptionOptions configures one Whisper transcription call.
type TranscriptionOptions struct {
	ModelID          string
	MimeType         string
	Language         string
	Prompt           string
	EnableTimestamps bool
}

// Transcribe uploads raw audio bytes to Whisper's
// /v1/audio/transcriptions endpoint as a multipart/form-data request and
// returns the uniform Transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte, opts TranscriptionOptions) (*adapter.Transcript, error) {
	model := opts.ModelID
	if model == "" {
		model = defaultModel
	}
	ext := multipart.ExtensionForMimeType(opts.MimeType)

	builder := multipart.New().
		AddBytes("file", "audio."+ext, audio).
		AddField("model", model).
		AddField("response_format", "verbose_json")
	if opts.Language != "" {
		builder = builder.AddField("language", opts.Language)
	}
	if opts.Prompt != "" {
		builder = builder.AddField("prompt", opts.Prompt)
	}
	if opts.EnableTimestamps {
		builder = builder.AddField("timestamp_granularities[]", "word")
	}

	body, contentType, err := builder.Finish()
	if err != nil {
		return nil, adapter.NewSTTError(providerName, model, adapter.STTInvalidInput, 0, "build multipart request", err)
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:      http.MethodPost,
		Path:        "/v1/audio/transcriptions",
		RawBody:     body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, adapter.NewSTTError(providerName, model, adapter.STTInternalError, 0, "request to whisper failed", err)
	}
	if resp.StatusCode >= 400 {
		return nil, adapter.NewSTTError(providerName, model, adapter.STTErrorCodeForStatus(resp.StatusCode), resp.StatusCode,
			fmt.Sprintf("whisper returned %d: %s", resp.StatusCode, string(resp.Body)), nil)
	}

	var wire verboseTranscriptionResponse
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, adapter.NewSTTError(providerName, model, adapter.STTInternalError, 0, "decode whisper response", err)
	}
	return wire.toTranscript(), nil
}

// verboseTranscriptionResponse is Whisper's verbose_json response shape:
// full text plus word-level timestamps when requested.
type verboseTranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Words    []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

func (r verboseTranscriptionResponse) toTranscript() *adapter.Transcript {
	t := &adapter.Transcript{
		Text:       r.Text,
		Language:   r.Language,
		DurationMs: int64(r.Duration * 1000),
	}
	t.Words = make([]adapter.Word, len(r.Words))
	for i, w := range r.Words {
		t.Words[i] = adapter.Word{
			Text:    w.Word,
			StartMs: int64(w.Start * 1000),
			EndMs:   int64(w.End * 1000),
		}
	}
	return t
}
