package google

import (
	"strconv"
	"strings"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

type diarizationWire struct {
	EnableSpeakerDiarization bool `json:"enableSpeakerDiarization"`
	MinSpeakerCount          int  `json:"minSpeakerCount,omitempty"`
	MaxSpeakerCount          int  `json:"maxSpeakerCount,omitempty"`
}

type speechContext struct {
	Phrases []string `json:"phrases"`
	Boost   float64  `json:"boost,omitempty"`
}

// recognizeRequest is the wire body for POST /v1/speech:recognize.
type recognizeRequest struct {
	Config struct {
		Encoding                              string            `json:"encoding"`
		SampleRateHertz                       int               `json:"sampleRateHertz,omitempty"`
		AudioChannelCount                     int               `json:"audioChannelCount,omitempty"`
		EnableSeparateRecognitionPerChannel   bool              `json:"enableSeparateRecognitionPerChannel,omitempty"`
		LanguageCode                          string            `json:"languageCode"`
		AlternativeLanguageCodes              []string          `json:"alternativeLanguageCodes,omitempty"`
		Model                                 string            `json:"model,omitempty"`
		ProfanityFilter                       bool              `json:"profanityFilter,omitempty"`
		EnableWordTimeOffsets                 bool              `json:"enableWordTimeOffsets,omitempty"`
		DiarizationConfig                     *diarizationWire  `json:"diarizationConfig,omitempty"`
		SpeechContexts                        []speechContext   `json:"speechContexts,omitempty"`
	} `json:"config"`
	Audio struct {
		Content string `json:"content"`
	} `json:"audio"`
}

// recognizeResponse is Google Speech-to-Text's recognize response: a
// list of results, one per speech segment, each carrying ranked
// alternatives.
type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
			Words      []struct {
				Word         string `json:"word"`
				StartTime    string `json:"startTime"`
				EndTime      string `json:"endTime"`
				SpeakerTag   int    `json:"speakerTag"`
			} `json:"words"`
		} `json:"alternatives"`
		LanguageCode string `json:"languageCode"`
	} `json:"results"`
}

func (r recognizeResponse) toTranscript() *adapter.Transcript {
	t := &adapter.Transcript{}
	var texts []string
	for _, result := range r.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		texts = append(texts, alt.Transcript)
		if t.Language == "" {
			t.Language = result.LanguageCode
		}
		for _, w := range alt.Words {
			word := adapter.Word{
				Text:    w.Word,
				StartMs: parseGoogleDuration(w.StartTime),
				EndMs:   parseGoogleDuration(w.EndTime),
			}
			if w.SpeakerTag != 0 {
				word.Speaker = strconv.Itoa(w.SpeakerTag)
			}
			t.Words = append(t.Words, word)
		}
	}
	t.Text = strings.Join(texts, " ")
	if len(t.Words) > 0 {
		t.DurationMs = t.Words[len(t.Words)-1].EndMs
	}
	return t
}

// parseGoogleDuration parses a duration string like "1.200s" into
// milliseconds.
func parseGoogleDuration(s string) int64 {
	s = strings.TrimSuffix(s, "s")
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(seconds * 1000)
}
