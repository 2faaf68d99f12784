// Package media decodes arbitrary audio/video files into the 16 kHz mono
// float32 PCM the speech engine requires. ffmpeg does the heavy lifting;
// WAV files already in the target format are decoded natively to avoid the
// subprocess spawn.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
)

// SampleRate is the fixed target rate the engine requires.
const SampleRate = 16000

// ErrFFmpegNotFound is returned when ffmpeg is not installed.
var ErrFFmpegNotFound = errors.New("media: ffmpeg not found in PATH (install with: apt install ffmpeg)")

// NotFoundError means the input file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("media: audio file not found: %s", e.Path)
}

// DecodeError wraps a decode failure (unsupported or corrupt input).
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("media: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode reads any audio file ffmpeg supports and returns 16 kHz mono float32
// samples in [-1, 1]. It always runs, even for already-conformant input: the
// fast path below is still the decode stage, just without the subprocess.
func Decode(ctx context.Context, path string) ([]float32, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &NotFoundError{Path: path}
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		if samples, ok := decodeNativeWAV(path); ok {
			return samples, nil
		}
		// Not 16k mono PCM; fall through to ffmpeg for the resample.
	}

	return decodeFFmpeg(ctx, path)
}

// decodeNativeWAV handles the common case of a WAV file that is already
// 16 kHz mono integer PCM. Returns ok=false for anything else.
func decodeNativeWAV(path string) ([]float32, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() || dec.SampleRate != SampleRate || dec.NumChans != 1 || dec.BitDepth != 16 {
		return nil, false
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, false
	}

	samples := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float32(s) / 32768.0
	}
	return samples, true
}

// decodeFFmpeg shells out to ffmpeg for decode, downmix, and resample in one
// pass. Output is raw s16le on stdout, converted to float32 here.
func decodeFFmpeg(ctx context.Context, path string) ([]float32, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, ErrFFmpegNotFound
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-nostdin",
		"-threads", "0",
		"-i", path,
		"-f", "s16le",
		"-ac", "1",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-",
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("ffmpeg: %w: %s", err, truncate(stderr.String(), 500))}
	}
	if len(out) == 0 {
		return nil, &DecodeError{Path: path, Err: errors.New("ffmpeg produced no output")}
	}

	return s16leToFloat32(out), nil
}

// s16leToFloat32 converts raw little-endian signed 16-bit PCM to float32
// samples normalized to [-1, 1].
func s16leToFloat32(data []byte) []float32 {
	n := len(data) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
		samples[i] = float32(v) / 32768.0
	}
	return samples
}

// truncate limits tool stderr carried in error messages.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
