package capture

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes float32 samples to path as 16-bit mono PCM WAV at the
// given sample rate.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: creating %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           float32ToInt16(samples),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("capture: writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("capture: finalizing %s: %w", path, err)
	}
	return f.Close()
}

// float32ToInt16 converts [-1, 1] samples to signed 16-bit, clipping out of
// range values.
func float32ToInt16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		v := int(s * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = v
	}
	return out
}
