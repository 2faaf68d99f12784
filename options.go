package voxscribe

import (
	"fmt"

	"github.com/voxscribe/voxscribe/internal/model"
	"github.com/voxscribe/voxscribe/internal/whisper"
)

// AudioProcessing holds the optional DSP steps applied between decode and
// inference. All steps are off by default: the raw resampled PCM goes straight
// to the engine. Enable individual steps only when the source material needs
// it (DC bias, wildly varying levels, long silence padding).
type AudioProcessing struct {
	RemoveDCOffset bool
	Normalize      bool
	TrimSilence    bool
	// SilenceThresholdDB is the RMS level below which audio counts as silence.
	// Used only when TrimSilence is set.
	SilenceThresholdDB float32
	// SilencePadMS keeps this much audio around detected speech boundaries so
	// onsets are not clipped. Used only when TrimSilence is set.
	SilencePadMS int
}

// DefaultAudioProcessing returns the all-off processing config with standard
// silence-trim tuning.
func DefaultAudioProcessing() AudioProcessing {
	return AudioProcessing{SilenceThresholdDB: -40, SilencePadMS: 50}
}

// Options is an immutable transcription configuration snapshot. Build one
// with NewOptions; the zero value is usable and equals DefaultOptions.
type Options struct {
	modelID     string
	modelPath   string
	modelSHA256 string

	language       string // normalized short code, "" = auto
	translate      bool
	wordTimestamps bool
	beamSize       int // 0 = greedy
	temperature    float32
	threads        int
	gpu            bool
	gpuDevice      int
	vad            bool

	processing AudioProcessing
}

// DefaultOptions is large-v3, auto language, VAD on, greedy sampling.
func DefaultOptions() Options {
	return Options{
		modelID:    "large-v3",
		gpu:        whisper.Available(),
		vad:        true,
		processing: DefaultAudioProcessing(),
	}
}

// ModelName returns the catalog ID, or "custom" for file-based models.
func (o Options) ModelName() string {
	if o.modelPath != "" {
		return "custom"
	}
	return o.modelID
}

// Language returns the normalized language code, or "" for auto-detect.
func (o Options) Language() string { return o.language }

func (o Options) modelSpec() model.Spec {
	return model.Spec{ID: o.modelID, Path: o.modelPath, SHA256: o.modelSHA256}
}

func (o Options) inferParams() whisper.Params {
	return whisper.Params{
		Language:       o.language,
		Translate:      o.translate,
		WordTimestamps: o.wordTimestamps,
		BeamSize:       o.beamSize,
		Temperature:    o.temperature,
		Threads:        o.threads,
		GPU:            o.gpu,
		GPUDevice:      o.gpuDevice,
		VAD:            o.vad,
	}
}

// OptionsBuilder validates each option as it is set and fails fast at Build.
// The first invalid option wins; later setters are no-ops once an error is
// recorded.
type OptionsBuilder struct {
	opts   Options
	gpuSet bool
	err    error
}

// NewOptions starts a builder seeded with DefaultOptions.
func NewOptions() *OptionsBuilder {
	return &OptionsBuilder{opts: DefaultOptions()}
}

// Model selects a catalog model by identifier, e.g. "base.en".
func (b *OptionsBuilder) Model(id string) *OptionsBuilder {
	if b.err != nil {
		return b
	}
	if !model.Known(id) {
		b.err = errf(KindInvalidOptions, "options", "unknown model %q (known: %v)", id, model.IDs())
		return b
	}
	b.opts.modelID = id
	b.opts.modelPath = ""
	b.opts.modelSHA256 = ""
	return b
}

// ModelFile selects a custom ggml model file. sha256 may be empty to skip
// integrity verification against a pinned value.
func (b *OptionsBuilder) ModelFile(path, sha256 string) *OptionsBuilder {
	if b.err != nil {
		return b
	}
	if path == "" {
		b.err = errf(KindInvalidOptions, "options", "custom model path must not be empty")
		return b
	}
	b.opts.modelID = ""
	b.opts.modelPath = path
	b.opts.modelSHA256 = sha256
	return b
}

// Language sets the spoken language. Accepts short codes ("en", "de"), full
// names ("english", "german"), or "auto".
func (b *OptionsBuilder) Language(lang string) *OptionsBuilder {
	if b.err != nil {
		return b
	}
	code, ok := normalizeLanguage(lang)
	if !ok {
		b.err = errf(KindInvalidOptions, "options", "unsupported language %q (see SupportedLanguages)", lang)
		return b
	}
	b.opts.language = code
	return b
}

// Translate requests translation to English.
func (b *OptionsBuilder) Translate(enabled bool) *OptionsBuilder {
	b.opts.translate = enabled
	return b
}

// WordTimestamps requests per-word timing on every segment.
func (b *OptionsBuilder) WordTimestamps(enabled bool) *OptionsBuilder {
	b.opts.wordTimestamps = enabled
	return b
}

// BeamSize sets the beam search width. 0 means greedy decoding.
func (b *OptionsBuilder) BeamSize(n int) *OptionsBuilder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		b.err = errf(KindInvalidOptions, "options", "beam size must be >= 0, got %d", n)
		return b
	}
	b.opts.beamSize = n
	return b
}

// Temperature sets the sampling temperature.
func (b *OptionsBuilder) Temperature(t float32) *OptionsBuilder {
	if b.err != nil {
		return b
	}
	if t < 0 {
		b.err = errf(KindInvalidOptions, "options", "temperature must be >= 0, got %v", t)
		return b
	}
	b.opts.temperature = t
	return b
}

// Threads caps engine compute threads. 0 means engine default.
func (b *OptionsBuilder) Threads(n int) *OptionsBuilder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		b.err = errf(KindInvalidOptions, "options", "threads must be >= 0, got %d", n)
		return b
	}
	b.opts.threads = n
	return b
}

// GPU enables or disables GPU inference.
func (b *OptionsBuilder) GPU(enabled bool) *OptionsBuilder {
	b.opts.gpu = enabled
	b.gpuSet = true
	return b
}

// GPUDevice selects the GPU device index.
func (b *OptionsBuilder) GPUDevice(n int) *OptionsBuilder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		b.err = errf(KindInvalidOptions, "options", "gpu device must be >= 0, got %d", n)
		return b
	}
	b.opts.gpuDevice = n
	return b
}

// VAD toggles voice activity detection.
func (b *OptionsBuilder) VAD(enabled bool) *OptionsBuilder {
	b.opts.vad = enabled
	return b
}

// Processing sets the optional DSP steps.
func (b *OptionsBuilder) Processing(p AudioProcessing) *OptionsBuilder {
	b.opts.processing = p
	return b
}

// Build returns the validated immutable Options. Misconfiguration surfaces
// here, before any pipeline stage runs.
func (b *OptionsBuilder) Build() (Options, error) {
	if b.err != nil {
		return Options{}, b.err
	}
	if b.gpuSet && b.opts.gpu && !whisper.Available() {
		return Options{}, errf(KindInvalidOptions, "options",
			"gpu requested but the speech engine is not compiled in: %v", whisper.ErrUnavailable)
	}
	if b.opts.modelID == "" && b.opts.modelPath == "" {
		return Options{}, errf(KindInvalidOptions, "options", "no model selected")
	}
	return b.opts, nil
}

// String summarizes the options for logs.
func (o Options) String() string {
	lang := o.language
	if lang == "" {
		lang = "auto"
	}
	return fmt.Sprintf("model=%s lang=%s translate=%v words=%v beam=%d",
		o.ModelName(), lang, o.translate, o.wordTimestamps, o.beamSize)
}
