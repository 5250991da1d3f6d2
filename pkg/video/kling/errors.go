package kling

import (
	"encoding/json"
	"fmt"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

// decodeJSON unmarshals an already-buffered response body, wrapping a
// decode failure as an internal VideoError rather than a bare json error.
func decodeJSON(body []byte, result interface{}) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return internalError("", "decode kling response", err)
	}
	return nil
}

const providerName = "kling"

// apiResponse is the envelope every Kling endpoint wraps its payload in.
// A non-zero Code means the call failed even on a 200 HTTP status.
type apiResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (r apiResponse) asError(modelID string, statusCode int) error {
	if r.Code == 0 {
		return nil
	}
	return adapter.NewVideoError(providerName, modelID, apiErrorCode(statusCode, r.Code),
		statusCode, fmt.Sprintf("API error %d: %s", r.Code, r.Message), nil)
}

func apiErrorCode(statusCode, apiCode int) adapter.VideoErrorCode {
	if statusCode != 0 {
		return adapter.VideoErrorCodeForStatus(statusCode)
	}
	switch {
	case apiCode >= 1000 && apiCode < 1100:
		return adapter.VideoUnauthorized
	case apiCode >= 1100 && apiCode < 1200:
		return adapter.VideoRateLimited
	case apiCode >= 1200 && apiCode < 1300:
		return adapter.VideoInvalidInput
	default:
		return adapter.VideoGenerationFailed
	}
}

func statusError(modelID string, statusCode int, body []byte) error {
	return adapter.NewVideoError(providerName, modelID, adapter.VideoErrorCodeForStatus(statusCode),
		statusCode, fmt.Sprintf("Kling HTTP %d: %s", statusCode, string(body)), nil)
}

func invalidInput(modelID, message string) error {
	return adapter.NewVideoError(providerName, modelID, adapter.VideoInvalidInput, 0, message, nil)
}

func internalError(modelID, message string, cause error) error {
	return adapter.NewVideoError(providerName, modelID, adapter.VideoInternalError, 0, message, cause)
}
