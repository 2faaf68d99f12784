// Package capture records microphone audio at the pipeline's target format
// (16 kHz mono float32) and writes it out as WAV, so captured audio enters
// the pipeline through the ordinary local-file path.
package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/voxscribe/voxscribe/internal/media"
)

// SampleRate is the capture rate, fixed to the decode contract so recordings
// skip the resample entirely.
const SampleRate = media.SampleRate

// ErrNoAudio is returned by Record when the capture ends with zero samples.
var ErrNoAudio = errors.New("capture: no audio captured")

// Recorder captures from the default microphone. One Recorder can run any
// number of sequential Record calls; Close releases the audio backend.
type Recorder struct {
	ctx *malgo.AllocatedContext

	mu     sync.Mutex
	active bool
}

// NewRecorder initializes the audio backend. Call Close when done.
func NewRecorder() (*Recorder, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("capture: initializing audio context: %w", err)
	}
	return &Recorder{ctx: ctx}, nil
}

// Record captures mono float32 audio at SampleRate until ctx ends, then
// returns everything captured. Ending the context is the normal way to stop;
// the context's error is not treated as a failure.
func (r *Recorder) Record(ctx context.Context) ([]float32, error) {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil, errors.New("capture: recording already in progress")
	}
	r.active = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
	}()

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = SampleRate

	var bufMu sync.Mutex
	var buf []float32
	onData := func(_, pSample []byte, frameCount uint32) {
		samples := bytesToFloat32(pSample, frameCount)
		bufMu.Lock()
		buf = append(buf, samples...)
		bufMu.Unlock()
	}

	device, err := malgo.InitDevice(r.ctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		return nil, fmt.Errorf("capture: initializing capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("capture: starting capture device: %w", err)
	}

	<-ctx.Done()
	device.Uninit() // stops the callback before buf is read

	bufMu.Lock()
	defer bufMu.Unlock()
	if len(buf) == 0 {
		return nil, ErrNoAudio
	}
	out := make([]float32, len(buf))
	copy(out, buf)
	return out, nil
}

// Close releases the audio backend.
func (r *Recorder) Close() error {
	if r.ctx == nil {
		return nil
	}
	if err := r.ctx.Uninit(); err != nil {
		return fmt.Errorf("capture: uninitializing audio context: %w", err)
	}
	r.ctx.Free()
	r.ctx = nil
	return nil
}

// bytesToFloat32 decodes raw little-endian float32 frames from the device
// callback, ignoring any trailing partial sample.
func bytesToFloat32(data []byte, sampleCount uint32) []float32 {
	samples := make([]float32, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 4
		if offset+4 > uint32(len(data)) {
			break
		}
		bits := binary.LittleEndian.Uint32(data[offset : offset+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples
}
