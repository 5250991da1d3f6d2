package awstranscribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

func TestStartTranscriptionJob_SignsRequest(t *testing.T) {
	t.Parallel()

	var sawAuth, sawTarget, sawContentSHA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		sawTarget = r.Header.Get("X-Amz-Target")
		sawContentSHA = r.Header.Get("x-amz-content-sha256")
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"TranscriptionJob": map[string]interface{}{"TranscriptionJobName": "job-1"},
		})
	}))
	defer srv.Close()

	c, err := New(Config{AccessKeyID: "ak", SecretAccessKey: "sk", Region: "us-east-1", OutputBucket: "bucket"})
	require.NoError(t, err)
	c.http.SetBaseURL(srv.URL)

	jobID, err := c.StartTranscriptionJob(context.Background(), StartOptions{
		JobName: "job-1", MediaURI: "s3://bucket/audio.wav", LanguageCode: "en-US",
	})
	require.NoError(t, err)
	assert.Equal(t, adapter.JobID("job-1"), jobID)

	assert.Contains(t, sawAuth, "AWS4-HMAC-SHA256 Credential=ak/")
	assert.Equal(t, "Transcribe_20170814.StartTranscriptionJob", sawTarget)
	assert.NotEmpty(t, sawContentSHA)
}

func TestPoll_MapsJobState(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"TranscriptionJob": map[string]interface{}{"TranscriptionJobStatus": "COMPLETED"},
		})
	}))
	defer srv.Close()

	c, err := New(Config{AccessKeyID: "ak", SecretAccessKey: "sk", Region: "us-east-1"})
	require.NoError(t, err)
	c.http.SetBaseURL(srv.URL)

	status, err := c.Poll(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, adapter.JobSucceeded, status.State)
	assert.Equal(t, 1.0, status.Progress)
}

func TestTranscriptOutput_ToTranscript(t *testing.T) {
	t.Parallel()

	out := transcriptOutput{}
	out.Results.Transcripts = []struct {
		Transcript string `json:"transcript"`
	}{{Transcript: "hi there"}}
	out.Results.Items = []struct {
		Type         string `json:"type"`
		StartTime    string `json:"start_time"`
		EndTime      string `json:"end_time"`
		Alternatives []struct {
			Content    string `json:"content"`
			Confidence string `json:"confidence"`
		} `json:"alternatives"`
		Speaker string `json:"speaker_label"`
	}{
		{
			Type: "pronunciation", StartTime: "0.0", EndTime: "0.5",
			Alternatives: []struct {
				Content    string `json:"content"`
				Confidence string `json:"confidence"`
			}{{Content: "hi", Confidence: "0.98"}},
		},
	}

	transcript := out.toTranscript()
	assert.Equal(t, "hi there", transcript.Text)
	require.Len(t, transcript.Words, 1)
	assert.Equal(t, "hi", transcript.Words[0].Text)
	assert.Equal(t, int64(500), transcript.Words[0].EndMs)
}
