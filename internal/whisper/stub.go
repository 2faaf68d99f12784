//go:build !cgo

package whisper

import "context"

// Available reports whether the real engine is compiled into this binary.
func Available() bool { return false }

// Infer always fails without the cgo engine.
func Infer(ctx context.Context, samples []float32, modelPath string, p Params) (Result, error) {
	return Result{}, ErrUnavailable
}
