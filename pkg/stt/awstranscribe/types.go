package awstranscribe

import (
	"strconv"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// transcriptOutput is the JSON document Amazon Transcribe writes to S3
// for a completed batch job: a full-text transcript plus a flat list of
// word/punctuation items, each with its own timing and confidence.
type transcriptOutput struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
		Items []struct {
			Type         string `json:"type"`
			StartTime    string `json:"start_time"`
			EndTime      string `json:"end_time"`
			Alternatives []struct {
				Content    string `json:"content"`
				Confidence string `json:"confidence"`
			} `json:"alternatives"`
			Speaker string `json:"speaker_label"`
		} `json:"items"`
	} `json:"results"`
}

func (t transcriptOutput) toTranscript() *adapter.Transcript {
	out := &adapter.Transcript{}
	if len(t.Results.Transcripts) > 0 {
		out.Text = t.Results.Transcripts[0].Transcript
	}

	out.Words = make([]adapter.Word, 0, len(t.Results.Items))
	for _, item := range t.Results.Items {
		if item.Type != "pronunciation" || len(item.Alternatives) == 0 {
			continue
		}
		startMs := parseSecondsToMs(item.StartTime)
		endMs := parseSecondsToMs(item.EndTime)
		confidence, _ := strconv.ParseFloat(item.Alternatives[0].Confidence, 64)
		out.Words = append(out.Words, adapter.Word{
			Text:       item.Alternatives[0].Content,
			StartMs:    startMs,
			EndMs:      endMs,
			Confidence: confidence,
			Speaker:    item.Speaker,
		})
	}
	return out
}

func parseSecondsToMs(s string) int64 {
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(seconds * 1000)
}
