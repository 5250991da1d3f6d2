package kling

import (
	"encoding/base64"
	"fmt"

	"github.com/adapterhub/commonrt/pkg/adapter"
)

const maxPromptChars = 2500

// mediaToWireString renders a MediaData as the string Kling's JSON API
// expects: a URL passed through verbatim, or raw bytes base64-encoded
// inline (Kling accepts either form for image/mask fields).
func mediaToWireString(md *adapter.MediaData) (string, error) {
	if md == nil {
		return "", nil
	}
	switch md.Kind {
	case adapter.MediaURL:
		return md.URL, nil
	case adapter.MediaBytes:
		return base64.StdEncoding.EncodeToString(md.Bytes), nil
	default:
		return "", fmt.Errorf("kling: unrecognized media kind %q", md.Kind)
	}
}

// determineAspectRatio maps the common AspectRatio vocabulary onto
// Kling's string values, falling back to "16:9" (and a warning) for a
// ratio Kling doesn't support natively.
func determineAspectRatio(ratio adapter.AspectRatio, warnings *[]adapter.Warning) string {
	switch ratio {
	case "", adapter.AspectRatioAuto:
		return ""
	case adapter.AspectRatio16x9, adapter.AspectRatio9x16, adapter.AspectRatio1x1:
		return string(ratio)
	default:
		*warnings = append(*warnings, adapter.Warning{
			Type:    "unsupported_aspect_ratio",
			Message: fmt.Sprintf("aspect ratio %q is not supported by kling, falling back to 16:9", ratio),
		})
		return "16:9"
	}
}

// durationBucket buckets an arbitrary requested duration onto Kling's
// two supported clip lengths: 10 seconds or under rounds to "5", anything
// longer rounds to "10". Kling only ever generates 5s or 10s clips.
func durationBucket(seconds float64) string {
	if seconds <= 0 {
		return "5"
	}
	if seconds <= 10.0 {
		return "5"
	}
	return "10"
}

// cfgScaleFromGuidance rescales a 0-10 guidance value onto Kling's 0-1
// cfg_scale, clamping out-of-range input rather than rejecting it.
func cfgScaleFromGuidance(guidance float64) float64 {
	scale := guidance / 10.0
	if scale < 0 {
		return 0
	}
	if scale > 1 {
		return 1
	}
	return scale
}

// convertCameraControl validates and renders a CameraMovement as Kling's
// "simple" camera-control payload: exactly one axis must be non-zero, and
// it must fall within [-10, 10].
func convertCameraControl(cm *adapter.CameraMovement) (*cameraControl, error) {
	if cm == nil {
		return nil, nil
	}
	axes := []float64{cm.Horizontal, cm.Vertical, cm.Pan, cm.Tilt, cm.Roll, cm.Zoom}
	nonZero := 0
	for _, v := range axes {
		if v != 0 {
			nonZero++
		}
		if v < -10 || v > 10 {
			return nil, invalidInput("", "camera control values must be within [-10, 10]")
		}
	}
	if nonZero != 1 {
		return nil, invalidInput("", "camera control in simple mode requires exactly one non-zero axis")
	}
	return &cameraControl{
		Type: "simple",
		Config: &cameraConfig{
			Horizontal: cm.Horizontal,
			Vertical:   cm.Vertical,
			Pan:        cm.Pan,
			Tilt:       cm.Tilt,
			Roll:       cm.Roll,
			Zoom:       cm.Zoom,
		},
	}, nil
}

// convertDynamicMasks validates and renders DynamicMask entries: each
// trajectory must carry between 2 and 77 points, matching the range
// Kling's motion-brush endpoint accepts.
func convertDynamicMasks(masks []adapter.DynamicMask) ([]dynamicMask, error) {
	if len(masks) == 0 {
		return nil, nil
	}
	out := make([]dynamicMask, 0, len(masks))
	for i, m := range masks {
		if len(m.Trajectory) < 2 || len(m.Trajectory) > 77 {
			return nil, invalidInput("", fmt.Sprintf("dynamic mask %d: trajectory must have between 2 and 77 points, got %d", i, len(m.Trajectory)))
		}
		maskStr, err := mediaToWireString(&m.Mask)
		if err != nil {
			return nil, err
		}
		points := make([]trajectoryPoint, len(m.Trajectory))
		for j, p := range m.Trajectory {
			points[j] = trajectoryPoint{X: p.X, Y: p.Y}
		}
		out = append(out, dynamicMask{Mask: maskStr, Trajectories: points})
	}
	return out, nil
}

func truncatedOrError(modelID, field, value string, limit int) (string, error) {
	if len(value) > limit {
		return "", invalidInput(modelID, fmt.Sprintf("%s exceeds %d characters", field, limit))
	}
	return value, nil
}

// buildGenerateRequest validates a GenerationConfig and renders it as
// Kling's text2video/image2video wire request, collecting warnings for
// options the request silently downgrades instead of rejecting.
func buildGenerateRequest(cfg adapter.GenerationConfig) (*generateRequest, []adapter.Warning, error) {
	var warnings []adapter.Warning
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}

	if cfg.ImageTail != nil && cfg.CameraControl != nil {
		return nil, nil, invalidInput(modelID, "image_tail and camera_control are mutually exclusive")
	}
	if cfg.CameraControl != nil && (len(cfg.DynamicMasks) > 0 || len(cfg.StaticMasks) > 0) {
		return nil, nil, invalidInput(modelID, "camera_control and dynamic/static masks are mutually exclusive")
	}

	prompt, err := truncatedOrError(modelID, "prompt", cfg.Prompt, maxPromptChars)
	if err != nil {
		return nil, nil, err
	}
	negPrompt, err := truncatedOrError(modelID, "negative_prompt", cfg.NegativePrompt, maxPromptChars)
	if err != nil {
		return nil, nil, err
	}

	req := &generateRequest{
		ModelName:      modelID,
		Prompt:         prompt,
		NegativePrompt: negPrompt,
		Duration:       durationBucket(cfg.DurationSeconds),
		Sound:          cfg.SoundEnabled,
	}
	if cfg.GuidanceScale > 0 {
		req.CfgScale = cfgScaleFromGuidance(cfg.GuidanceScale)
	}
	if cfg.Seed != nil {
		req.Seed = *cfg.Seed
	}
	req.AspectRatio = determineAspectRatio(cfg.AspectRatio, &warnings)

	if !knownValidationModels[baseModelFamily(modelID)] {
		warnings = append(warnings, adapter.Warning{
			Type:    "unrecognized_model",
			Message: fmt.Sprintf("model %q is not in kling's known validation set; options will be sent as-is", modelID),
		})
	}

	if cfg.Image != nil {
		s, err := mediaToWireString(cfg.Image)
		if err != nil {
			return nil, nil, internalError(modelID, "encode image", err)
		}
		req.Image = s
	}
	if cfg.ImageTail != nil {
		s, err := mediaToWireString(cfg.ImageTail)
		if err != nil {
			return nil, nil, internalError(modelID, "encode image_tail", err)
		}
		req.ImageTail = s
	}

	if cfg.CameraControl != nil {
		cc, err := convertCameraControl(cfg.CameraControl)
		if err != nil {
			return nil, nil, err
		}
		req.CameraControl = cc
	}

	if len(cfg.DynamicMasks) > 0 {
		dm, err := convertDynamicMasks(cfg.DynamicMasks)
		if err != nil {
			return nil, nil, err
		}
		req.DynamicMasks = dm
	}
	if len(cfg.StaticMasks) > 0 {
		s, err := mediaToWireString(&cfg.StaticMasks[0].Mask)
		if err != nil {
			return nil, nil, err
		}
		req.StaticMask = s
		if len(cfg.StaticMasks) > 1 {
			warnings = append(warnings, adapter.Warning{
				Type:    "static_mask_truncated",
				Message: "kling accepts only one static mask; extra entries were dropped",
			})
		}
	}

	logUnsupportedOptions(cfg, &warnings)

	return req, warnings, nil
}

// logUnsupportedOptions records a warning for every GenerationConfig
// field Kling's text2video/image2video endpoints silently ignore instead
// of rejecting outright.
func logUnsupportedOptions(cfg adapter.GenerationConfig, warnings *[]adapter.Warning) {
	if cfg.CharacterOrientation != "" {
		*warnings = append(*warnings, adapter.Warning{
			Type:    "unsupported_option",
			Message: "character_orientation is not supported by this kling endpoint",
		})
	}
	if cfg.Resolution != "" && cfg.Resolution != adapter.ResolutionStandard {
		*warnings = append(*warnings, adapter.Warning{
			Type:    "unsupported_option",
			Message: fmt.Sprintf("resolution %q is not configurable on generation; use an upscale call instead", cfg.Resolution),
		})
	}
}

// buildMultiImageRequest validates and renders a multi-image generation
// request. Kling only offers multi-image on kling-v1-6, and requires
// between 1 and 4 reference images.
func buildMultiImageRequest(cfg adapter.MultiImageConfig) (*multiImageRequest, []adapter.Warning, error) {
	var warnings []adapter.Warning
	if len(cfg.Images) == 0 || len(cfg.Images) > 4 {
		return nil, nil, invalidInput(multiImageModelID, fmt.Sprintf("multi-image generation requires between 1 and 4 images, got %d", len(cfg.Images)))
	}
	if cfg.ModelID != "" && cfg.ModelID != multiImageModelID {
		warnings = append(warnings, adapter.Warning{
			Type:    "model_overridden",
			Message: fmt.Sprintf("multi-image generation is only available on %s; overriding requested model %q", multiImageModelID, cfg.ModelID),
		})
	}

	imageList := make([]string, len(cfg.Images))
	for i := range cfg.Images {
		s, err := mediaToWireString(&cfg.Images[i])
		if err != nil {
			return nil, nil, internalError(multiImageModelID, "encode reference image", err)
		}
		imageList[i] = s
	}

	return &multiImageRequest{
		ModelName:   multiImageModelID,
		Prompt:      cfg.Prompt,
		ImageList:   imageList,
		AspectRatio: determineAspectRatio(cfg.AspectRatio, &warnings),
		Duration:    durationBucket(cfg.DurationSeconds),
	}, warnings, nil
}

// clampVoiceSpeed restricts a lip-sync TTS voice speed to Kling's
// supported [0.8, 2.0] range.
func clampVoiceSpeed(speed float64) float64 {
	if speed == 0 {
		return 1.0
	}
	if speed < 0.8 {
		return 0.8
	}
	if speed > 2.0 {
		return 2.0
	}
	return speed
}

// buildLipSyncRequest validates and renders a LipSyncConfig. Exactly one
// of text-driven (voice ID + language) or audio-driven lip sync must be
// selected by which AudioSource fields are populated.
func buildLipSyncRequest(cfg adapter.LipSyncConfig) (*lipSyncRequest, error) {
	req := &lipSyncRequest{}
	if cfg.Source.GenerationID != "" {
		req.Input.VideoID = string(cfg.Source.GenerationID)
	} else {
		s, err := mediaToWireString(&cfg.Source.Video)
		if err != nil {
			return nil, internalError("", "encode lip-sync source video", err)
		}
		req.Input.VideoURL = s
	}

	switch {
	case cfg.Audio.Text != "":
		if cfg.Audio.VoiceID == "" {
			return nil, invalidInput("", "text-driven lip sync requires a voice_id")
		}
		req.Input.Mode = "text2video"
		req.Input.Text = cfg.Audio.Text
		req.Input.VoiceID = cfg.Audio.VoiceID
		req.Input.VoiceLang = cfg.Audio.Language
		req.Input.VoiceSpeed = clampVoiceSpeed(cfg.Audio.Speed)
	case cfg.Audio.Audio != nil:
		s, err := mediaToWireString(cfg.Audio.Audio)
		if err != nil {
			return nil, internalError("", "encode lip-sync audio", err)
		}
		req.Input.Mode = "audio2video"
		req.Input.AudioType = "url"
		if cfg.Audio.Audio.Kind == adapter.MediaBytes {
			req.Input.AudioType = "file"
		}
		req.Input.AudioURL = s
	default:
		return nil, invalidInput("", "lip sync requires either Text+VoiceID or Audio")
	}

	return req, nil
}

// effectSceneName maps a common EffectType plus image count onto Kling's
// scene-name vocabulary, which distinguishes single- and dual-subject
// variants.
func effectSceneName(effect adapter.EffectType, imageCount int) (string, error) {
	switch effect {
	case adapter.EffectSingleSubject:
		if imageCount != 1 {
			return "", invalidInput("", "single_subject effect requires exactly one image")
		}
		return "singleImage", nil
	case adapter.EffectDualCharacter:
		if imageCount != 2 {
			return "", invalidInput("", "dual_character effect requires exactly two images")
		}
		return "hug", nil
	default:
		return "", invalidInput("", fmt.Sprintf("unsupported effect type %q", effect))
	}
}

// buildEffectsRequest validates and renders an EffectsConfig.
func buildEffectsRequest(cfg adapter.EffectsConfig) (*effectsRequest, error) {
	scene, err := effectSceneName(cfg.Effect, len(cfg.Images))
	if err != nil {
		return nil, err
	}
	images := make([]string, len(cfg.Images))
	for i := range cfg.Images {
		s, err := mediaToWireString(&cfg.Images[i])
		if err != nil {
			return nil, internalError("", "encode effect image", err)
		}
		images[i] = s
	}
	req := &effectsRequest{
		EffectScene: scene,
		ModelName:   cfg.ModelID,
		Duration:    durationBucket(cfg.DurationSeconds),
	}
	req.Input.Images = images
	return req, nil
}
