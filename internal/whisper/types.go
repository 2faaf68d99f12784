// Package whisper runs speech inference through the whisper.cpp Go bindings.
// The real engine needs cgo and a libwhisper build; without cgo a stub is
// compiled in so the rest of the module builds and tests everywhere.
package whisper

import "errors"

// ErrUnavailable is returned when the binary was built without the engine.
var ErrUnavailable = errors.New("whisper: engine not compiled in (build with CGO_ENABLED=1 and libwhisper)")

// Params is the per-call inference configuration. Zero values mean engine
// defaults.
type Params struct {
	Language       string // short code, "" = auto-detect
	Translate      bool
	WordTimestamps bool
	BeamSize       int // 0 = greedy
	Temperature    float32
	Threads        int
	GPU            bool
	GPUDevice      int
	VAD            bool
}

// Word is one recognized token with timing.
type Word struct {
	Text        string
	Start       float64
	End         float64
	Probability float32
}

// Segment is one utterance as reported by the engine, in engine order.
type Segment struct {
	Start float64
	End   float64
	Text  string
	Words []Word
}

// Result is the raw recognition output.
type Result struct {
	Segments []Segment
	Language string
}
