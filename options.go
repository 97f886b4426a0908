package modalkit

// Options contains configuration for a chat or text request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Option is a functional option for configuring chat and text requests.
type Option func(*Options)

// WithModel sets the model to use for the request.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// ApplyOptions applies functional options to an Options struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SpeechOptions contains configuration for speech synthesis and transcription.
type SpeechOptions struct {
	Model    string
	Voice    string
	Format   string
	Language string
}

// SpeechOption is a functional option for configuring speech requests.
type SpeechOption func(*SpeechOptions)

// WithSpeechModel sets the model for speech synthesis or transcription.
func WithSpeechModel(model string) SpeechOption {
	return func(o *SpeechOptions) {
		o.Model = model
	}
}

// WithVoice sets the voice used for speech synthesis.
func WithVoice(voice string) SpeechOption {
	return func(o *SpeechOptions) {
		o.Voice = voice
	}
}

// WithAudioFormat sets the output audio format (e.g. "mp3", "wav").
func WithAudioFormat(format string) SpeechOption {
	return func(o *SpeechOptions) {
		o.Format = format
	}
}

// WithLanguage sets the expected language for transcription (ISO 639-1).
func WithLanguage(lang string) SpeechOption {
	return func(o *SpeechOptions) {
		o.Language = lang
	}
}

// ApplySpeechOptions applies functional options to a SpeechOptions struct.
func ApplySpeechOptions(opts ...SpeechOption) *SpeechOptions {
	o := &SpeechOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ImageSize represents predefined image dimensions.
type ImageSize string

const (
	ImageSize1024x1024 ImageSize = "1024x1024"
	ImageSize1024x1792 ImageSize = "1024x1792" // Portrait
	ImageSize1792x1024 ImageSize = "1792x1024" // Landscape
)

// ImageOptions contains configuration for image generation.
type ImageOptions struct {
	Model string
	Size  ImageSize
}

// ImageOption is a functional option for configuring image requests.
type ImageOption func(*ImageOptions)

// WithImageModel sets the model for image generation.
func WithImageModel(model string) ImageOption {
	return func(o *ImageOptions) {
		o.Model = model
	}
}

// WithImageSize sets the output dimensions for generated images.
func WithImageSize(size ImageSize) ImageOption {
	return func(o *ImageOptions) {
		o.Size = size
	}
}

// ApplyImageOptions applies functional options to an ImageOptions struct.
func ApplyImageOptions(opts ...ImageOption) *ImageOptions {
	o := &ImageOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// VideoOptions contains configuration for video generation.
type VideoOptions struct {
	Model       string
	AspectRatio string
	// DurationSeconds requests a clip length; providers clamp to their limits.
	DurationSeconds int
}

// VideoOption is a functional option for configuring video requests.
type VideoOption func(*VideoOptions)

// WithVideoModel sets the model for video generation.
func WithVideoModel(model string) VideoOption {
	return func(o *VideoOptions) {
		o.Model = model
	}
}

// WithAspectRatio sets the aspect ratio for generated video (e.g. "16:9").
func WithAspectRatio(ratio string) VideoOption {
	return func(o *VideoOptions) {
		o.AspectRatio = ratio
	}
}

// WithVideoDuration sets the requested clip length in seconds.
func WithVideoDuration(seconds int) VideoOption {
	return func(o *VideoOptions) {
		o.DurationSeconds = seconds
	}
}

// ApplyVideoOptions applies functional options to a VideoOptions struct.
func ApplyVideoOptions(opts ...VideoOption) *VideoOptions {
	o := &VideoOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ModelOptions contains configuration for 3D model generation.
type ModelOptions struct {
	// Format selects the output file format (e.g. "glb", "obj").
	Format string
}

// ModelOption is a functional option for configuring 3D model requests.
type ModelOption func(*ModelOptions)

// WithModelFormat sets the output file format for generated 3D models.
func WithModelFormat(format string) ModelOption {
	return func(o *ModelOptions) {
		o.Format = format
	}
}

// ApplyModelOptions applies functional options to a ModelOptions struct.
func ApplyModelOptions(opts ...ModelOption) *ModelOptions {
	o := &ModelOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
