// Package awstranscribe implements the speech-to-text backend for
// Amazon Transcribe's asynchronous batch API: requests are signed with
// AWS Signature Version 4, submitted as JSON-RPC-style calls against the
// regional Transcribe endpoint, and polled until the job's output
// transcript (itself a JSON document on S3) is ready.
package awstranscribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/awssig"
	"github.com/adapterhub/commonrt/pkg/internal/httpclient"
)

const providerName = "aws-transcribe"

// Config configures a Client. AccessKeyID/SecretAccessKey fall back to
// the AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY environment variables, and
// Region falls back to AWS_REGION, resolved once inside New.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	// OutputBucket is the S3 bucket Transcribe writes job output into. It
	// is optional: when empty, OutputBucketName is left out of the request.
	OutputBucket string
}

// Client is an Amazon Transcribe batch-job session.
type Client struct {
	http   *httpclient.Client
	region string
	bucket string
}

// New builds a Client, resolving credentials and region from the
// environment when Config leaves them empty.
func New(cfg Config) (*Client, error) {
	accessKeyID := cfg.AccessKeyID
	if accessKeyID == "" {
		accessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	secretAccessKey := cfg.SecretAccessKey
	if secretAccessKey == "" {
		secretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if accessKeyID == "" || secretAccessKey == "" || region == "" {
		return nil, fmt.Errorf("awstranscribe: access key, secret key, and region are required")
	}

	signer := awssig.New(accessKeyID, secretAccessKey, region, "transcribe")
	if cfg.SessionToken != "" {
		signer = signer.WithSessionToken(cfg.SessionToken)
	}

	baseURL := fmt.Sprintf("https://transcribe.%s.amazonaws.com", region)
	base := httpclient.New(httpclient.Config{
		BaseURL: baseURL,
		Headers: map[string]string{"Content-Type": "application/x-amz-json-1.1"},
	})
	httpClient := base.WithSigner(func(req *http.Request, body []byte) error {
		return signer.SignRequest(req, body)
	})

	return &Client{http: httpClient, region: region, bucket: cfg.OutputBucket}, nil
}

func (c *Client) rpc(ctx context.Context, target string, body interface{}, result interface{}) error {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/",
		Body:   body,
		Headers: map[string]string{
			"X-Amz-Target": "Transcribe_20170814." + target,
		},
	})
	if err != nil {
		return adapter.NewSTTError(providerName, "", adapter.STTInternalError, 0, "request to transcribe failed", err)
	}
	if resp.StatusCode >= 400 {
		return mapError(resp.StatusCode, resp.Body)
	}
	if result == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return adapter.NewSTTError(providerName, "", adapter.STTInternalError, 0, "decode transcribe response", err)
	}
	return nil
}

func mapError(status int, body []byte) error {
	return adapter.NewSTTError(providerName, "", adapter.STTErrorCodeForStatus(status), status,
		fmt.Sprintf("aws transcribe returned %d: %s", status, string(body)), nil)
}

type startJobRequest struct {
	TranscriptionJobName string `json:"TranscriptionJobName"`
	LanguageCode          string `json:"LanguageCode,omitempty"`
	IdentifyLanguage      bool   `json:"IdentifyLanguage,omitempty"`
	Media                 struct {
		MediaFileURI string `json:"MediaFileUri"`
	} `json:"Media"`
	MediaFormat              string `json:"MediaFormat,omitempty"`
	OutputBucketName         string `json:"OutputBucketName,omitempty"`
	Settings                 *jobSettings `json:"Settings,omitempty"`
}

type jobSettings struct {
	ShowSpeakerLabels  bool `json:"ShowSpeakerLabels,omitempty"`
	MaxSpeakerLabels   int  `json:"MaxSpeakerLabels,omitempty"`
	ChannelIdentification bool `json:"ChannelIdentification,omitempty"`
}

// StartOptions configures a transcription job submission.
type StartOptions struct {
	JobName        string
	MediaURI       string
	LanguageCode   string
	MediaFormat    string
	Diarize        bool
	MaxSpeakers    int
}

// StartTranscriptionJob submits a batch transcription job and returns its
// job name, used to Poll for completion.
func (c *Client) StartTranscriptionJob(ctx context.Context, opts StartOptions) (adapter.JobID, error) {
	req := startJobRequest{
		TranscriptionJobName: opts.JobName,
		MediaFormat:          opts.MediaFormat,
		OutputBucketName:     c.bucket,
	}
	req.Media.MediaFileURI = opts.MediaURI
	if opts.LanguageCode == "" {
		req.IdentifyLanguage = true
	} else {
		req.LanguageCode = opts.LanguageCode
	}
	if opts.Diarize {
		req.Settings = &jobSettings{ShowSpeakerLabels: true, MaxSpeakerLabels: opts.MaxSpeakers}
	}

	var resp struct {
		TranscriptionJob struct {
			TranscriptionJobName string `json:"TranscriptionJobName"`
		} `json:"TranscriptionJob"`
	}
	if err := c.rpc(ctx, "StartTranscriptionJob", req, &resp); err != nil {
		return "", err
	}
	return adapter.JobID(resp.TranscriptionJob.TranscriptionJobName), nil
}

type getJobResponse struct {
	TranscriptionJob struct {
		TranscriptionJobStatus string `json:"TranscriptionJobStatus"`
		FailureReason          string `json:"FailureReason"`
		Transcript             struct {
			TranscriptFileURI string `json:"TranscriptFileUri"`
		} `json:"Transcript"`
		CompletionTime float64 `json:"CompletionTime"`
	} `json:"TranscriptionJob"`
}

// Poll fetches the current status of a submitted job.
func (c *Client) Poll(ctx context.Context, jobID adapter.JobID) (*adapter.JobStatus, error) {
	var resp getJobResponse
	if err := c.rpc(ctx, "GetTranscriptionJob", map[string]string{"TranscriptionJobName": string(jobID)}, &resp); err != nil {
		return nil, err
	}

	state := mapJobState(resp.TranscriptionJob.TranscriptionJobStatus)
	status := &adapter.JobStatus{JobID: jobID, State: state, UpdatedAt: time.Now()}
	if state == adapter.JobSucceeded {
		status.Progress = 1.0
	}
	if state == adapter.JobFailed {
		status.Error = adapter.NewSTTError(providerName, "", adapter.STTTranscriptionFailed, 0, resp.TranscriptionJob.FailureReason, nil)
	}
	return status, nil
}

func mapJobState(wireStatus string) adapter.JobState {
	switch wireStatus {
	case "QUEUED":
		return adapter.JobQueued
	case "IN_PROGRESS":
		return adapter.JobRunning
	case "COMPLETED":
		return adapter.JobSucceeded
	case "FAILED":
		return adapter.JobFailed
	default:
		return adapter.JobQueued
	}
}

// FetchTranscript downloads and parses a completed job's output document
// from the signed transcriptFileUri GetTranscriptionJob returned.
func (c *Client) FetchTranscript(ctx context.Context, transcriptFileURI string) (*adapter.Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transcriptFileURI, nil)
	if err != nil {
		return nil, adapter.NewSTTError(providerName, "", adapter.STTInternalError, 0, "build transcript fetch request", err)
	}
	resp, err := httpclient.DefaultHTTPClient.Do(req)
	if err != nil {
		return nil, adapter.NewSTTError(providerName, "", adapter.STTInternalError, 0, "fetch transcript output", err)
	}
	defer resp.Body.Close()

	var wire transcriptOutput
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, adapter.NewSTTError(providerName, "", adapter.STTInternalError, 0, "decode transcript output", err)
	}
	return wire.toTranscript(), nil
}
