// Package voxscribe turns an audio source — a remote URL or a local file —
// into a timestamped transcript behind a single call.
//
// The pipeline sequences yt-dlp (fetch), ffmpeg (decode to 16 kHz mono PCM),
// the model registry (download, verify, cache whisper models), and whisper.cpp
// (inference). Output renders as plain text, SRT, WebVTT, or JSON.
//
//	transcript, err := voxscribe.Transcribe(ctx, "https://example.com/talk")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(transcript.SRT())
//
// Every external capability is an interface (Fetcher, Decoder, Inferencer);
// NewPipeline accepts replacements so tests run without network, ffmpeg, or a
// GPU in sight.
package voxscribe

import (
	"context"
	"sync"
)

var (
	defaultOnce     sync.Once
	defaultPipeline *Pipeline
	defaultErr      error
)

func getDefaultPipeline() (*Pipeline, error) {
	defaultOnce.Do(func() {
		defaultPipeline, defaultErr = NewPipeline(Config{})
	})
	return defaultPipeline, defaultErr
}

// Transcribe downloads media from url and transcribes it with default options.
func Transcribe(ctx context.Context, url string) (*Transcript, error) {
	return TranscribeWithOptions(ctx, url, DefaultOptions())
}

// TranscribeWithOptions downloads media from url and transcribes it.
func TranscribeWithOptions(ctx context.Context, url string, opts Options) (*Transcript, error) {
	p, err := getDefaultPipeline()
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, FromURL(url), opts)
}

// TranscribeFile transcribes a local audio/video file with default options.
func TranscribeFile(ctx context.Context, path string) (*Transcript, error) {
	return TranscribeFileWithOptions(ctx, path, DefaultOptions())
}

// TranscribeFileWithOptions transcribes a local audio/video file.
func TranscribeFileWithOptions(ctx context.Context, path string, opts Options) (*Transcript, error) {
	p, err := getDefaultPipeline()
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, FromFile(path), opts)
}

// ListModels returns the static model catalog plus locally cached custom
// entries from the default cache directory.
func ListModels() ([]ModelInfo, error) {
	p, err := getDefaultPipeline()
	if err != nil {
		return nil, err
	}
	return p.Models(), nil
}
