// Package kling implements the video generation backend for the Kling
// AI API: text/image-to-video, video extension and upscaling, stock
// video effects, multi-image generation, and lip sync, all driven
// through the common GenerationConfig/VideoResult/JobStatus vocabulary.
package kling

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
)

const defaultBaseURL = "https://api-singapore.klingai.com"

// Config configures a Client. AccessKey/SecretKey fall back to the
// KLINGAI_ACCESS_KEY/KLINGAI_SECRET_KEY environment variables when left
// empty, resolved once inside New.
type Config struct {
	AccessKey string
	SecretKey string
	BaseURL   string
	Headers   map[string]string
}

// Client is a Kling API session: a signed HTTP client plus the
// credentials used to mint a fresh bearer JWT on every request.
type Client struct {
	accessKey string
	secretKey string
	http      *httpclient.Client
}

// New builds a Client, resolving credentials from the environment when
// Config leaves them empty.
func New(cfg Config) (*Client, error) {
	accessKey := cfg.AccessKey
	if accessKey == "" {
		accessKey = os.Getenv("KLINGAI_ACCESS_KEY")
	}
	secretKey := cfg.SecretKey
	if secretKey == "" {
		secretKey = os.Getenv("KLINGAI_SECRET_KEY")
	}
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("kling: access key and secret key are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	base := httpclient.New(httpclient.Config{BaseURL: baseURL, Headers: cfg.Headers})
	c := &Client{accessKey: accessKey, secretKey: secretKey}
	c.http = base.WithSigner(c.signRequest)
	return c, nil
}

// signRequest mints a fresh 30-minute JWT and attaches it as the
// Authorization bearer header immediately before the request is sent, so
// a long-polled client never sends an expired token.
func (c *Client) signRequest(req *http.Request, _ []byte) error {
	token, err := generateAuthToken(c.accessKey, c.secretKey)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	resp, err := c.http.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return internalError("", fmt.Sprintf("request to %s", path), err)
	}
	if resp.StatusCode >= 400 {
		return statusError("", resp.StatusCode, resp.Body)
	}
	return decodeJSON(resp.Body, result)
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	resp, err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return internalError("", fmt.Sprintf("request to %s", path), err)
	}
	if resp.StatusCode >= 400 {
		return statusError("", resp.StatusCode, resp.Body)
	}
	return decodeJSON(resp.Body, result)
}

// Generate submits a text-to-video or image-to-video generation job,
// selecting the endpoint by whether cfg.Image is populated.
func (c *Client) Generate(ctx context.Context, cfg adapter.GenerationConfig) (adapter.JobID, []adapter.Warning, error) {
	req, warnings, err := buildGenerateRequest(cfg)
	if err != nil {
		return "", nil, err
	}

	path := "/v1/videos/text2video"
	if cfg.Image != nil {
		path = "/v1/videos/image2video"
	}

	var resp createTaskResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return "", nil, err
	}
	if err := resp.asError(req.ModelName, 0); err != nil {
		return "", nil, err
	}
	return adapter.JobID(resp.Data.TaskID), warnings, nil
}

// Poll fetches the current status of a previously submitted job.
func (c *Client) Poll(ctx context.Context, jobID adapter.JobID) (*adapter.JobStatus, error) {
	var resp taskStatusResponse
	if err := c.get(ctx, "/v1/videos/text2video/"+string(jobID), &resp); err != nil {
		return nil, err
	}
	if err := resp.asError("", 0); err != nil {
		return nil, err
	}
	return statusFromTaskResponse(jobID, resp), nil
}

func statusFromTaskResponse(jobID adapter.JobID, resp taskStatusResponse) *adapter.JobStatus {
	state := mapJobState(resp.Data.TaskStatus)
	status := &adapter.JobStatus{
		JobID:     jobID,
		State:     state,
		UpdatedAt: time.UnixMilli(resp.Data.UpdatedAt),
		RawMetadata: map[string]interface{}{
			"task_status_msg": resp.Data.TaskStatusMsg,
		},
	}
	if state == adapter.JobSucceeded {
		status.Progress = 1.0
	} else if state == adapter.JobRunning {
		status.Progress = 0.5
	}
	if state == adapter.JobFailed {
		status.Error = adapter.NewVideoError(providerName, "", adapter.VideoGenerationFailed, 0, resp.Data.TaskStatusMsg, nil)
	}
	return status
}

func mapJobState(wireStatus string) adapter.JobState {
	switch wireStatus {
	case "submitted", "pending":
		return adapter.JobQueued
	case "processing":
		return adapter.JobRunning
	case "succeed":
		return adapter.JobSucceeded
	case "failed":
		return adapter.JobFailed
	default:
		return adapter.JobQueued
	}
}

// VideoResult fetches a completed job's generated videos. Callers should
// only call this once Poll reports adapter.JobSucceeded.
func (c *Client) VideoResult(ctx context.Context, jobID adapter.JobID) (*adapter.VideoResult, error) {
	var resp taskStatusResponse
	if err := c.get(ctx, "/v1/videos/text2video/"+string(jobID), &resp); err != nil {
		return nil, err
	}
	if err := resp.asError("", 0); err != nil {
		return nil, err
	}
	if mapJobState(resp.Data.TaskStatus) != adapter.JobSucceeded {
		return nil, invalidInput("", "job has not reached a succeeded state")
	}

	videos := make([]adapter.Video, len(resp.Data.TaskResult.Videos))
	for i, v := range resp.Data.TaskResult.Videos {
		videos[i] = adapter.Video{
			GenerationID: adapter.GenerationID(v.ID),
			URL:          v.URL,
			MimeType:     "video/mp4",
		}
	}
	return &adapter.VideoResult{Videos: videos}, nil
}

// Cancel cancels a queued or running job.
func (c *Client) Cancel(ctx context.Context, jobID adapter.JobID) error {
	var resp apiResponse
	if err := c.post(ctx, "/v1/videos/text2video/"+string(jobID)+"/cancel", struct{}{}, &resp); err != nil {
		return err
	}
	return resp.asError("", 0)
}

// Extend requests a further clip be generated onto the end of a
// previously generated video.
func (c *Client) Extend(ctx context.Context, cfg adapter.ExtendConfig) (adapter.JobID, error) {
	req := &extendRequest{VideoID: string(cfg.GenerationID), Prompt: cfg.Prompt}
	var resp createTaskResponse
	if err := c.post(ctx, "/v1/videos/video-extend", req, &resp); err != nil {
		return "", err
	}
	if err := resp.asError("", 0); err != nil {
		return "", err
	}
	return adapter.JobID(resp.Data.TaskID), nil
}

// Upscale requests a resolution upscale of a previously generated video.
func (c *Client) Upscale(ctx context.Context, cfg adapter.UpscaleConfig) (adapter.JobID, error) {
	req := &upscaleRequest{VideoID: string(cfg.GenerationID), Resolution: string(cfg.TargetResolution)}
	var resp createTaskResponse
	if err := c.post(ctx, "/v1/videos/video-upscale", req, &resp); err != nil {
		return "", err
	}
	if err := resp.asError("", 0); err != nil {
		return "", err
	}
	return adapter.JobID(resp.Data.TaskID), nil
}

// GenerateVideoEffects submits a stock-template effects job.
func (c *Client) GenerateVideoEffects(ctx context.Context, cfg adapter.EffectsConfig) (adapter.JobID, error) {
	req, err := buildEffectsRequest(cfg)
	if err != nil {
		return "", err
	}
	var resp createTaskResponse
	if err := c.post(ctx, "/v1/videos/effects", req, &resp); err != nil {
		return "", err
	}
	if err := resp.asError(cfg.ModelID, 0); err != nil {
		return "", err
	}
	return adapter.JobID(resp.Data.TaskID), nil
}

// MultiImageGeneration submits a subject-reference generation job built
// from several input images.
func (c *Client) MultiImageGeneration(ctx context.Context, cfg adapter.MultiImageConfig) (adapter.JobID, []adapter.Warning, error) {
	req, warnings, err := buildMultiImageRequest(cfg)
	if err != nil {
		return "", nil, err
	}
	var resp createTaskResponse
	if err := c.post(ctx, "/v1/videos/multi-image2video", req, &resp); err != nil {
		return "", nil, err
	}
	if err := resp.asError(multiImageModelID, 0); err != nil {
		return "", nil, err
	}
	return adapter.JobID(resp.Data.TaskID), warnings, nil
}

// GenerateLipSyncVideo submits a lip-sync re-render job.
func (c *Client) GenerateLipSyncVideo(ctx context.Context, cfg adapter.LipSyncConfig) (adapter.JobID, error) {
	req, err := buildLipSyncRequest(cfg)
	if err != nil {
		return "", err
	}
	var resp createTaskResponse
	if err := c.post(ctx, "/v1/videos/lip-sync", req, &resp); err != nil {
		return "", err
	}
	if err := resp.asError("", 0); err != nil {
		return "", err
	}
	return adapter.JobID(resp.Data.TaskID), nil
}

// ListAvailableVoices returns the TTS voices lip sync can select from.
func (c *Client) ListAvailableVoices(ctx context.Context) ([]adapter.VoiceInfo, error) {
	var resp voiceListResponse
	if err := c.get(ctx, "/v1/videos/lip-sync/voices", &resp); err != nil {
		return nil, err
	}
	if err := resp.asError("", 0); err != nil {
		return nil, err
	}
	voices := make([]adapter.VoiceInfo, len(resp.Data))
	for i, v := range resp.Data {
		langs := make([]adapter.VoiceLanguage, len(v.Languages))
		for j, code := range v.Languages {
			langs[j] = adapter.VoiceLanguage{Code: code}
		}
		voices[i] = adapter.VoiceInfo{ID: v.VoiceID, Name: v.VoiceName, Languages: langs}
	}
	return voices, nil
}
