package deepgram

import (
	"strconv"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// transcriptionResponse is Deepgram's pre-recorded transcription
// response: one set of channels, each with ranked alternatives.
type transcriptionResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []struct {
					Word              string   `json:"word"`
					Start             float64  `json:"start"`
					End               float64  `json:"end"`
					Confidence        float64  `json:"confidence"`
					Speaker           *int     `json:"speaker,omitempty"`
					SpeakerConfidence *float64 `json:"speaker_confidence,omitempty"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (r transcriptionResponse) toTranscript() *adapter.Transcript {
	t := &adapter.Transcript{DurationMs: int64(r.Metadata.Duration * 1000)}
	if len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return t
	}

	alt := r.Results.Channels[0].Alternatives[0]
	t.Text = alt.Transcript
	t.Words = make([]adapter.Word, len(alt.Words))
	for i, w := range alt.Words {
		word := adapter.Word{
			Text:       w.Word,
			StartMs:    int64(w.Start * 1000),
			EndMs:      int64(w.End * 1000),
			Confidence: w.Confidence,
		}
		if w.Speaker != nil {
			word.Speaker = strconv.Itoa(*w.Speaker)
		}
		t.Words[i] = word
	}
	return t
}
