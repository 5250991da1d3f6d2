package kling

import "strings"

// ModelID identifies one of Kling's text-to-video, image-to-video, or
// motion-control model families. Mode (t2v/i2v/motion-control) is
// detected from the id's suffix rather than tracked separately.
type ModelID = string

const (
	ModelV1T2V      ModelID = "kling-v1-t2v"
	ModelV1_6T2V    ModelID = "kling-v1.6-t2v"
	ModelV2MasterT2V ModelID = "kling-v2-master-t2v"
	ModelV2_1MasterT2V ModelID = "kling-v2.1-master-t2v"
	ModelV2_5TurboT2V ModelID = "kling-v2.5-turbo-t2v"
	ModelV2_6T2V    ModelID = "kling-v2.6-t2v"
	ModelV3T2V      ModelID = "kling-v3.0-t2v"

	ModelV1I2V      ModelID = "kling-v1-i2v"
	ModelV1_5I2V    ModelID = "kling-v1.5-i2v"
	ModelV1_6I2V    ModelID = "kling-v1.6-i2v"
	ModelV2MasterI2V ModelID = "kling-v2-master-i2v"
	ModelV2_1I2V    ModelID = "kling-v2.1-i2v"
	ModelV2_1MasterI2V ModelID = "kling-v2.1-master-i2v"
	ModelV2_5TurboI2V ModelID = "kling-v2.5-turbo-i2v"
	ModelV2_6I2V    ModelID = "kling-v2.6-i2v"
	ModelV3I2V      ModelID = "kling-v3.0-i2v"

	ModelV2_6MotionControl ModelID = "kling-v2.6-motion-control"

	// defaultModelID is used when a request leaves ModelID empty.
	defaultModelID ModelID = ModelV1_6T2V

	// multiImageModelID is the only model multi-image generation is
	// offered on; a caller-supplied ModelID is overridden to this one.
	multiImageModelID ModelID = "kling-v1-6"
)

// isImageToVideo reports whether modelID's suffix marks it as an
// image-conditioned model (it has an Image input rather than text-only).
func isImageToVideo(modelID string) bool {
	return strings.HasSuffix(modelID, "-i2v") || strings.Contains(modelID, "i2v")
}

// knownValidationModels is the reduced family-name set buildGenerateRequest
// checks a model against; unrecognized ids are still sent through (with a
// warning). Duration and camera-control validation are the same for every
// model.
var knownValidationModels = map[string]bool{
	"kling-v1":   true,
	"kling-v1-5": true,
	"kling-v1-6": true,
	"kling-v2":   true,
	"kling-v2-1": true,
}

// baseModelFamily strips a T2V/I2V/motion-control suffix and turns dots
// into dashes, so a model id can be looked up by version family in
// knownValidationModels.
func baseModelFamily(modelID string) string {
	s := modelID
	for _, suffix := range []string{"-t2v", "-i2v", "-motion-control"} {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.ReplaceAll(s, ".", "-")
	return s
}
