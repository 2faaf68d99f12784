//go:build cgo

package whisper

import (
	"context"
	"fmt"
	"io"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Available reports whether the real engine is compiled into this binary.
func Available() bool { return true }

// Infer transcribes mono 16kHz float32 samples with the model at modelPath.
// The engine's own segmentation and ordering are preserved as-is.
//
// ctx is honored up to the start of inference only: the bindings expose no
// abort hook, so cancellation during a long Process call takes effect after
// the engine returns.
func Infer(ctx context.Context, samples []float32, modelPath string, p Params) (Result, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return Result{}, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}
	defer model.Close()

	wctx, err := model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("whisper: create context: %w", err)
	}

	lang := p.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return Result{}, fmt.Errorf("whisper: set language %q: %w", lang, err)
	}
	wctx.SetTranslate(p.Translate)
	wctx.SetTokenTimestamps(p.WordTimestamps)
	if p.Threads > 0 {
		wctx.SetThreads(uint(p.Threads))
	}
	if p.BeamSize > 0 {
		wctx.SetBeamSize(p.BeamSize)
	}
	if p.Temperature > 0 {
		wctx.SetTemperature(p.Temperature)
	}
	// GPU device selection and VAD ride on the libwhisper build; the bindings
	// expose no per-context switch for them.

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("whisper: process: %w", err)
	}

	var segments []Segment
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("whisper: next segment: %w", err)
		}

		out := Segment{
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Text:  strings.TrimSpace(seg.Text),
		}
		if p.WordTimestamps {
			for _, tok := range seg.Tokens {
				text := strings.TrimSpace(tok.Text)
				// Special tokens come back as bracketed markers.
				if text == "" || strings.HasPrefix(text, "[") || strings.HasPrefix(text, "<") {
					continue
				}
				out.Words = append(out.Words, Word{
					Text:        tok.Text,
					Start:       tok.Start.Seconds(),
					End:         tok.End.Seconds(),
					Probability: tok.P,
				})
			}
		}
		segments = append(segments, out)
	}

	detected := p.Language
	if detected == "" {
		detected = wctx.DetectedLanguage()
	}

	return Result{Segments: segments, Language: detected}, nil
}
