package adapter

// AspectRatio is a provider-agnostic target frame ratio for video
// generation. Providers map it to their own string vocabulary and warn
// when a ratio isn't representable.
type AspectRatio string

const (
	AspectRatio16x9  AspectRatio = "16:9"
	AspectRatio9x16  AspectRatio = "9:16"
	AspectRatio1x1   AspectRatio = "1:1"
	AspectRatio4x3   AspectRatio = "4:3"
	AspectRatio3x4   AspectRatio = "3:4"
	AspectRatioAuto  AspectRatio = "auto"
)

// Resolution is a coarse output quality tier; providers map it onto their
// own mode names ("std"/"pro", "720p"/"1080p", ...).
type Resolution string

const (
	ResolutionStandard Resolution = "standard"
	ResolutionHigh     Resolution = "high"
	ResolutionUltra    Resolution = "ultra"
)

// CameraMovement is a simple single-axis camera instruction. Providers
// that only support single-axis control reject a movement unless exactly
// one field is non-zero, and reject any field outside [-10, 10].
type CameraMovement struct {
	Horizontal float64
	Vertical   float64
	Pan        float64
	Tilt       float64
	Roll       float64
	Zoom       float64
}

// TrajectoryPoint is one (x, y) sample of a dynamic mask's motion path.
type TrajectoryPoint struct {
	X float64
	Y float64
}

// StaticMask pins a region of the frame so it is excluded from a dynamic
// mask's free-form motion.
type StaticMask struct {
	Mask MediaData
}

// DynamicMask paints motion onto a masked region of the first frame: Mask
// selects the region, Trajectory supplies the path of points it follows.
type DynamicMask struct {
	Mask        MediaData
	Trajectory  []TrajectoryPoint
}

// EffectType names a provider's stock video-effect template (e.g. a
// single-subject or dual-subject stylization preset).
type EffectType string

const (
	EffectSingleSubject EffectType = "single_subject"
	EffectDualCharacter EffectType = "dual_character"
)

// AudioSource supplies the voice track a lip-sync operation should match
// the generated mouth movement to: either a text script read by a
// provider TTS voice, or an existing audio clip.
type AudioSource struct {
	Text     string
	VoiceID  string
	Language string
	Speed    float64
	Audio    *MediaData
}

// LipSyncVideo is the source video a lip-sync request re-renders with new
// mouth movement.
type LipSyncVideo struct {
	Video       MediaData
	GenerationID GenerationID
}

// VoiceLanguage is one language a TTS voice can speak in.
type VoiceLanguage struct {
	Code string
	Name string
}

// VoiceInfo describes one voice available to a lip-sync or TTS backend.
type VoiceInfo struct {
	ID        string
	Name      string
	Languages []VoiceLanguage
}

// Kv is a single opaque provider-specific option, carried through
// GenerationConfig.Extra for flags no common field models.
type Kv struct {
	Key   string
	Value interface{}
}

// GenerationConfig is the uniform request shape for a video generation
// job: a prompt plus whichever optional media inputs and knobs the
// selected provider and model support. A field that is flatly
// incompatible with another (e.g. ImageTail together with CameraControl)
// is a validation error. Other fields a provider does not support are
// dropped: Kling records a Warning for CharacterOrientation and for a
// non-standard Resolution, and drops MultiImages, KeepOriginalAudio,
// WatermarkEnabled and Extra without one.
type GenerationConfig struct {
	ModelID         string
	Prompt          string
	NegativePrompt  string
	Image           *MediaData
	ImageTail       *MediaData
	MultiImages     []MediaData
	AspectRatio     AspectRatio
	Resolution      Resolution
	DurationSeconds float64
	GuidanceScale   float64
	Seed            *int64
	CameraControl   *CameraMovement
	DynamicMasks    []DynamicMask
	StaticMasks     []StaticMask
	SoundEnabled    bool
	KeepOriginalAudio bool
	WatermarkEnabled  bool
	CharacterOrientation string
	Extra           []Kv
}

// ExtendConfig requests a provider extend a previously generated video by
// a further clip, chained onto GenerationID.
type ExtendConfig struct {
	GenerationID GenerationID
	Prompt       string
	DurationSeconds float64
}

// UpscaleConfig requests a provider upscale a previously generated video.
type UpscaleConfig struct {
	GenerationID GenerationID
	TargetResolution Resolution
}

// EffectsConfig requests a stock-template effect be applied to one or two
// source images.
type EffectsConfig struct {
	Effect   EffectType
	ModelID  string
	DurationSeconds float64
	Images   []MediaData
}

// LipSyncConfig requests a provider re-render a video's mouth movement to
// match a given audio source.
type LipSyncConfig struct {
	Source LipSyncVideo
	Audio  AudioSource
}

// MultiImageConfig requests a video generated from several reference
// images (a "multi-image" or subject-reference generation mode).
type MultiImageConfig struct {
	ModelID string
	Prompt  string
	Images  []MediaData
	AspectRatio AspectRatio
	DurationSeconds float64
}
