// Package deepgram implements the speech-to-text backend for Deepgram's
// pre-recorded audio API: a single POST of the raw audio body with
// transcription options carried as query parameters.
package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
)

const (
	providerName   = "deepgram"
	defaultBaseURL = "https://api.deepgram.com"
)

// Config configures a Client. APIKey falls back to the DEEPGRAM_API_KEY
// environment variable when left empty, resolved once inside New.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client is a Deepgram transcription session.
type Client struct {
	http *httpclient.Client
}

// New builds a Client, resolving the API key from the environment when
// Config leaves it empty.
func New(cfg Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram: API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := httpclient.New(httpclient.Config{
		BaseURL: baseURL,
		Headers: map[string]string{"Authorization": "Token " + apiKey},
	})
	return &Client{http: httpClient}, nil
}

// TranscriptionOptions carries the subset of Deepgram's query-parameter
// vocabulary this adapter exposes; ModelID selects the Deepgram model
// (e.g. "nova-3") and gates which of Keyterms/Keywords is accepted.
type TranscriptionOptions struct {
	ModelID          string
	MimeType         string
	Language         string
	Multichannel     bool
	ProfanityFilter  bool
	Diarize          bool
	Keyterms         []string
	Keywords         []Keyword
}

// Keyword is a single boosted recognition term, valid only on
// nova-2/nova-1/enhanced/base models.
type Keyword struct {
	Term  string
	Boost *float64
}

var keytermModels = map[string]bool{"nova-3": true}
var keywordModels = map[string]bool{"nova-2": true, "nova-1": true, "enhanced": true, "base": true}

func modelFamily(modelID string) string {
	for family := range keytermModels {
		if strings.HasPrefix(modelID, family) {
			return family
		}
	}
	for family := range keywordModels {
		if strings.HasPrefix(modelID, family) {
			return family
		}
	}
	return modelID
}

func buildQuery(opts TranscriptionOptions) url.Values {
	q := url.Values{}
	if opts.ModelID != "" {
		q.Set("model", opts.ModelID)
	}
	if opts.Multichannel {
		q.Set("multichannel", "true")
	}
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.ProfanityFilter {
		q.Set("profanity_filter", "true")
	}
	if opts.Diarize {
		q.Set("diarize", "true")
	}

	family := modelFamily(opts.ModelID)
	if keytermModels[family] {
		for _, kt := range opts.Keyterms {
			q.Add("keyterm", strings.ReplaceAll(kt, " ", "+"))
		}
	}
	if keywordModels[family] {
		for _, kw := range opts.Keywords {
			val := kw.Term
			if kw.Boost != nil {
				val = fmt.Sprintf("%s:%g", kw.Term, *kw.Boost)
			}
			q.Add("keyword", val)
		}
	}
	return q
}

// Transcribe sends raw audio bytes to Deepgram's /v1/listen endpoint and
// returns the uniform Transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte, opts TranscriptionOptions) (*adapter.Transcript, error) {
	contentType := opts.MimeType
	if contentType == "" {
		contentType = "audio/wav"
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:      http.MethodPost,
		Path:        "/v1/listen",
		RawBody:     audio,
		ContentType: contentType,
		Query:       buildQuery(opts),
	})
	if err != nil {
		return nil, adapter.NewSTTError(providerName, opts.ModelID, adapter.STTInternalError, 0, "request to deepgram failed", err)
	}
	if resp.StatusCode >= 400 {
		return nil, mapError(opts.ModelID, resp.StatusCode, resp.Body)
	}

	var wire transcriptionResponse
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, adapter.NewSTTError(providerName, opts.ModelID, adapter.STTInternalError, 0, "decode deepgram response", err)
	}
	return wire.toTranscript(), nil
}

// mapError classifies a non-2xx Deepgram response by its HTTP status,
// preserving the raw body as the error's provider-facing detail.
func mapError(modelID string, status int, body []byte) error {
	code := adapter.STTErrorCodeForStatus(status)
	switch status {
	case 402:
		code = adapter.STTUnprocessableEntity
	}
	return adapter.NewSTTError(providerName, modelID, code, status,
		fmt.Sprintf("deepgram returned %d: %s", status, string(body)), nil)
}
