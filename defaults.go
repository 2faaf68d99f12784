package voxscribe

import (
	"context"
	"os"
	"path/filepath"

	"github.com/voxscribe/voxscribe/internal/fetch"
	"github.com/voxscribe/voxscribe/internal/media"
	"github.com/voxscribe/voxscribe/internal/model"
	"github.com/voxscribe/voxscribe/internal/whisper"
)

// DefaultCacheDir is where models are cached when Config.CacheDir is empty.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = ".cache"
	}
	return filepath.Join(base, "voxscribe", "models")
}

// ytdlpFetcher is the production Fetcher: a yt-dlp subprocess.
type ytdlpFetcher struct{}

func (ytdlpFetcher) Fetch(ctx context.Context, url, destDir string) (Fetched, error) {
	res, err := fetch.Download(ctx, url, destDir)
	if err != nil {
		return Fetched{}, err
	}
	return Fetched{Path: res.Path, Title: res.Title, Duration: res.Duration}, nil
}

// ffmpegDecoder is the production Decoder: ffmpeg with a native WAV fast path.
type ffmpegDecoder struct{}

func (ffmpegDecoder) Decode(ctx context.Context, path string) ([]float32, error) {
	return media.Decode(ctx, path)
}

// whisperInferencer is the production Inferencer: whisper.cpp Go bindings.
type whisperInferencer struct{}

func (whisperInferencer) Infer(ctx context.Context, samples []float32, modelPath string, opts Options) (Recognition, error) {
	res, err := whisper.Infer(ctx, samples, modelPath, opts.inferParams())
	if err != nil {
		return Recognition{}, err
	}

	rec := Recognition{Language: res.Language}
	rec.Segments = make([]RecognizedSegment, 0, len(res.Segments))
	for _, s := range res.Segments {
		seg := RecognizedSegment{Start: s.Start, End: s.End, Text: s.Text}
		for _, w := range s.Words {
			seg.Words = append(seg.Words, RecognizedWord{
				Text:        w.Text,
				Start:       w.Start,
				End:         w.End,
				Probability: w.Probability,
			})
		}
		rec.Segments = append(rec.Segments, seg)
	}
	return rec, nil
}

// ModelInfo is one listable model: a catalog entry or a cached custom file.
type ModelInfo struct {
	ID        string
	Filename  string
	SizeLabel string
	Cached    bool
	Custom    bool
	Path      string
}

func modelInfos(infos []model.Info) []ModelInfo {
	out := make([]ModelInfo, len(infos))
	for i, m := range infos {
		out[i] = ModelInfo{
			ID:        m.ID,
			Filename:  m.Filename,
			SizeLabel: m.SizeLabel,
			Cached:    m.Cached,
			Custom:    m.Custom,
			Path:      m.Path,
		}
	}
	return out
}
