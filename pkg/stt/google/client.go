// Package google implements the speech-to-text backend for Google Cloud
// Speech-to-Text: a single synchronous recognize call carrying the audio
// inline, base64-encoded, alongside a recognition config.
package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
)

const (
	providerName   = "google"
	defaultBaseURL = "https://speech.googleapis.com"
)

// Config configures a Client. APIKey falls back to the
// GOOGLE_SPEECH_API_KEY environment variable when left empty, resolved
// once inside New.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client is a Google Cloud Speech-to-Text session.
type Client struct {
	http   *httpclient.Client
	apiKey string
}

// New builds a Client, resolving the API key from the environment when
// Config leaves it empty.
func New(cfg Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_SPEECH_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("google: API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{http: httpclient.New(httpclient.Config{BaseURL: baseURL}), apiKey: apiKey}, nil
}

// AudioEncoding names a Google Speech-to-Text audio encoding.
type AudioEncoding string

const (
	EncodingLinear16 AudioEncoding = "LINEAR16"
	EncodingFLAC     AudioEncoding = "FLAC"
	EncodingMP3      AudioEncoding = "MP3"
	EncodingOggOpus  AudioEncoding = "OGG_OPUS"
	EncodingWebmOpus AudioEncoding = "WEBM_OPUS"
)

// EncodingForMimeType maps a common audio MIME type onto the Google
// Speech-to-Text encoding that reads it.
func EncodingForMimeType(mimeType string) AudioEncoding {
	switch mimeType {
	case "audio/wav", "audio/x-wav":
		return EncodingLinear16
	case "audio/flac":
		return EncodingFLAC
	case "audio/mpeg", "audio/mp3":
		return EncodingMP3
	case "audio/ogg":
		return EncodingOggOpus
	case "audio/webm":
		return EncodingWebmOpus
	default:
		return EncodingLinear16
	}
}

// DiarizationConfig requests speaker-labeled output.
type DiarizationConfig struct {
	Enabled         bool
	MinSpeakerCount int
	MaxSpeakerCount int
}

// Phrase is a recognition hint: a term or phrase to boost, with an
// optional per-phrase weight.
type Phrase struct {
	Value string
	Boost *float64
}

// TranscriptionOptions configures one recognize call.
type TranscriptionOptions struct {
	Encoding            AudioEncoding
	SampleRateHertz     int
	LanguageCodes       []string
	Model               string
	EnableProfanityFilter bool
	Diarization         *DiarizationConfig
	EnableMultiChannel  bool
	Phrases             []Phrase
}

func (c *Client) buildRequest(audio []byte, opts TranscriptionOptions) recognizeRequest {
	req := recognizeRequest{}
	req.Config.Encoding = string(opts.Encoding)
	req.Config.SampleRateHertz = opts.SampleRateHertz
	req.Config.LanguageCode = "en-US"
	if len(opts.LanguageCodes) > 0 {
		req.Config.LanguageCode = opts.LanguageCodes[0]
		req.Config.AlternativeLanguageCodes = opts.LanguageCodes[1:]
	}
	req.Config.Model = opts.Model
	req.Config.ProfanityFilter = opts.EnableProfanityFilter
	req.Config.EnableWordTimeOffsets = true
	req.Config.AudioChannelCount = 1
	if opts.EnableMultiChannel {
		req.Config.AudioChannelCount = 2
		req.Config.EnableSeparateRecognitionPerChannel = true
	}
	if opts.Diarization != nil && opts.Diarization.Enabled {
		req.Config.DiarizationConfig = &diarizationWire{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          opts.Diarization.MinSpeakerCount,
			MaxSpeakerCount:          opts.Diarization.MaxSpeakerCount,
		}
	}
	for _, p := range opts.Phrases {
		hints := speechContext{Phrases: []string{p.Value}}
		if p.Boost != nil {
			hints.Boost = *p.Boost
		}
		req.Config.SpeechContexts = append(req.Config.SpeechContexts, hints)
	}
	req.Audio.Content = base64.StdEncoding.EncodeToString(audio)
	return req
}

// Transcribe sends audio bytes to Speech-to-Text's synchronous recognize
// endpoint and returns the uniform Transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte, opts TranscriptionOptions) (*adapter.Transcript, error) {
	req := c.buildRequest(audio, opts)

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/v1/speech:recognize",
		Body:   req,
		Query:  url.Values{"key": {c.apiKey}},
	})
	if err != nil {
		return nil, adapter.NewSTTError(providerName, opts.Model, adapter.STTInternalError, 0, "request to google speech failed", err)
	}
	if resp.StatusCode >= 400 {
		return nil, adapter.NewSTTError(providerName, opts.Model, adapter.STTErrorCodeForStatus(resp.StatusCode), resp.StatusCode,
			fmt.Sprintf("google speech returned %d: %s", resp.StatusCode, string(resp.Body)), nil)
	}

	var wire recognizeResponse
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, adapter.NewSTTError(providerName, opts.Model, adapter.STTInternalError, 0, "decode google speech response", err)
	}
	return wire.toTranscript(), nil
}
