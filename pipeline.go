package voxscribe

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/voxscribe/voxscribe/internal/media"
	"github.com/voxscribe/voxscribe/internal/model"
)

// Fetched is the product of the fetch stage: a local media file plus whatever
// metadata the tool reported.
type Fetched struct {
	Path     string
	Title    string
	Duration float64
}

// Fetcher turns a URL into a local media file under destDir.
type Fetcher interface {
	Fetch(ctx context.Context, url, destDir string) (Fetched, error)
}

// Decoder turns a local media file into 16 kHz mono float32 PCM.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]float32, error)
}

// RecognizedWord is one word of raw engine output.
type RecognizedWord struct {
	Text        string
	Start       float64
	End         float64
	Probability float32
}

// RecognizedSegment is one utterance of raw engine output, in engine order.
type RecognizedSegment struct {
	Start float64
	End   float64
	Text  string
	Words []RecognizedWord
}

// Recognition is the raw speech engine output before transcript construction.
type Recognition struct {
	Segments []RecognizedSegment
	Language string
}

// Inferencer runs speech recognition over decoded audio with a resolved model.
type Inferencer interface {
	Infer(ctx context.Context, samples []float32, modelPath string, opts Options) (Recognition, error)
}

// Config wires a Pipeline. Nil adapters fall back to the production ones
// (yt-dlp, ffmpeg, whisper.cpp); tests inject deterministic stubs.
type Config struct {
	Fetcher    Fetcher
	Decoder    Decoder
	Inferencer Inferencer
	// CacheDir overrides the model cache location
	// (default: os.UserCacheDir()/voxscribe/models).
	CacheDir string
	Logger   *slog.Logger
}

// Pipeline sequences fetch -> decode -> model resolve -> infer for one source.
// Stages run strictly in order within a run; concurrent runs share only the
// model registry.
type Pipeline struct {
	fetcher    Fetcher
	decoder    Decoder
	inferencer Inferencer
	registry   *model.Registry
	log        *slog.Logger
}

// NewPipeline builds a pipeline, opening (or creating) the model cache.
func NewPipeline(cfg Config) (*Pipeline, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	dir := cfg.CacheDir
	if dir == "" {
		dir = DefaultCacheDir()
	}
	reg, err := model.Open(dir, log)
	if err != nil {
		return nil, errf(KindUnknown, "cache", "opening model cache: %v", err)
	}

	p := &Pipeline{
		fetcher:    cfg.Fetcher,
		decoder:    cfg.Decoder,
		inferencer: cfg.Inferencer,
		registry:   reg,
		log:        log,
	}
	if p.fetcher == nil {
		p.fetcher = ytdlpFetcher{}
	}
	if p.decoder == nil {
		p.decoder = ffmpegDecoder{}
	}
	if p.inferencer == nil {
		p.inferencer = whisperInferencer{}
	}
	return p, nil
}

// Models lists the catalog plus locally cached custom entries.
func (p *Pipeline) Models() []ModelInfo {
	return modelInfos(p.registry.List())
}

// Prefetch resolves a catalog model into the cache without transcribing.
func (p *Pipeline) Prefetch(ctx context.Context, id string) error {
	if _, err := p.registry.Resolve(ctx, model.Spec{ID: id}); err != nil {
		return mapModelErr(ctx, err)
	}
	return nil
}

// Run executes the pipeline for one source. The fetch stage runs only for URL
// sources; decode always runs so the engine's 16 kHz mono contract holds even
// for already-PCM input. Cancellation at any stage terminates the in-flight
// tool, removes the temp fetch dir, and returns a Canceled error.
func (p *Pipeline) Run(ctx context.Context, src Source, opts Options) (*Transcript, error) {
	if opts.modelID == "" && opts.modelPath == "" {
		opts = DefaultOptions()
	}

	log := p.log.With("run", uuid.NewString()[:8])
	log.Debug("starting run", "source", src.String(), "options", opts.String())

	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: KindCanceled, Op: "run", Err: err}
	}

	localPath := src.ref
	var sourceURL, sourceTitle string

	if src.IsURL() {
		tmpDir, err := os.MkdirTemp("", "voxscribe-*")
		if err != nil {
			return nil, errf(KindFetchFailed, "fetch", "creating temp dir: %v", err)
		}
		defer os.RemoveAll(tmpDir)

		log.Info("fetching media", "url", src.ref)
		fetched, err := p.fetcher.Fetch(ctx, src.ref, tmpDir)
		if err != nil {
			return nil, stageErr(ctx, KindFetchFailed, "fetch", err)
		}
		localPath = fetched.Path
		sourceURL = src.ref
		sourceTitle = fetched.Title

		// The transcript is built before the deferred cleanup runs, so the
		// decode below is the last reader of the fetched file.
		return p.runLocal(ctx, log, localPath, sourceURL, sourceTitle, opts)
	}

	return p.runLocal(ctx, log, localPath, sourceURL, sourceTitle, opts)
}

func (p *Pipeline) runLocal(ctx context.Context, log *slog.Logger, path, sourceURL, sourceTitle string, opts Options) (*Transcript, error) {
	if path == "" {
		return nil, errf(KindDecodeFailed, "decode", "empty source path")
	}

	log.Info("decoding audio", "path", path)
	samples, err := p.decoder.Decode(ctx, path)
	if err != nil {
		return nil, stageErr(ctx, KindDecodeFailed, "decode", err)
	}
	samples = applyProcessing(samples, opts.processing)
	duration := float64(len(samples)) / media.SampleRate
	log.Debug("audio ready", "samples", len(samples), "duration_secs", duration)

	resolved, err := p.registry.Resolve(ctx, opts.modelSpec())
	if err != nil {
		return nil, mapModelErr(ctx, err)
	}

	log.Info("running inference", "model", resolved.ID, "duration_secs", duration)
	rec, err := p.inferencer.Infer(ctx, samples, resolved.Path, opts)
	if err != nil {
		return nil, stageErr(ctx, KindInferFailed, "infer", err)
	}

	return buildTranscript(rec, opts, duration, sourceURL, sourceTitle), nil
}

// applyProcessing runs the optional DSP steps between decode and inference.
func applyProcessing(samples []float32, p AudioProcessing) []float32 {
	if p.RemoveDCOffset {
		media.RemoveDCOffset(samples)
	}
	if p.Normalize {
		media.NormalizePeak(samples)
	}
	if p.TrimSilence {
		samples = media.TrimSilence(samples, p.SilenceThresholdDB, p.SilencePadMS)
	}
	return samples
}

// buildTranscript maps raw engine output to the transcript model. The engine's
// chronological segmentation is authoritative: segments are copied in order,
// never merged, split, or re-bucketed. Negative timings are clamped to zero.
func buildTranscript(rec Recognition, opts Options, duration float64, sourceURL, sourceTitle string) *Transcript {
	segments := make([]Segment, 0, len(rec.Segments))
	for _, rs := range rec.Segments {
		seg := Segment{
			Start: clampNonNegative(rs.Start),
			End:   clampNonNegative(rs.End),
			Text:  rs.Text,
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		for _, rw := range rs.Words {
			seg.Words = append(seg.Words, Word{
				Text:        rw.Text,
				Start:       clampNonNegative(rw.Start),
				End:         clampNonNegative(rw.End),
				Probability: rw.Probability,
			})
		}
		segments = append(segments, seg)
	}

	language := rec.Language
	if language == "" {
		language = opts.language
	}

	return &Transcript{
		Segments:    segments,
		Language:    language,
		Duration:    duration,
		Model:       opts.ModelName(),
		SourceURL:   sourceURL,
		SourceTitle: sourceTitle,
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// mapModelErr translates registry error types into the public taxonomy.
func mapModelErr(ctx context.Context, err error) error {
	var (
		unsupported *model.UnsupportedError
		checksum    *model.ChecksumError
		notFound    *model.NotFoundError
	)
	switch {
	case errors.As(err, &unsupported):
		return &Error{Kind: KindUnsupportedModel, Op: "resolve", Err: err}
	case errors.As(err, &checksum):
		return &Error{Kind: KindChecksumMismatch, Op: "resolve", Err: err}
	case errors.As(err, &notFound):
		return &Error{Kind: KindUnsupportedModel, Op: "resolve", Err: err}
	default:
		return stageErr(ctx, KindDownloadFailed, "resolve", err)
	}
}
