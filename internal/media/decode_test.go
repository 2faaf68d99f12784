package media

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAVFixture writes a mono 16-bit WAV with the given rate and samples.
func writeWAVFixture(t *testing.T, path string, sampleRate int, samples []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if !strings.Contains(err.Error(), "nope.mp3") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestDecodeNativeWAV(t *testing.T) {
	ints := []int{0, 16384, -16384, 32767, -32768}
	path := filepath.Join(t.TempDir(), "in.wav")
	writeWAVFixture(t, path, SampleRate, ints)

	samples, err := Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(samples) != len(ints) {
		t.Fatalf("got %d samples, want %d", len(samples), len(ints))
	}
	for i, want := range ints {
		got := samples[i]
		if math.Abs(float64(got)-float64(want)/32768.0) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got, float64(want)/32768.0)
		}
	}
}

func TestNativeWAVRejectsWrongFormat(t *testing.T) {
	// 44.1 kHz input needs a resample, so the native path must decline.
	path := filepath.Join(t.TempDir(), "hifi.wav")
	writeWAVFixture(t, path, 44100, []int{1, 2, 3})

	if _, ok := decodeNativeWAV(path); ok {
		t.Error("native path accepted a non-16kHz file")
	}
}

func TestNativeWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("not a riff header"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := decodeNativeWAV(path); ok {
		t.Error("native path accepted a non-WAV file")
	}
}

func TestS16leToFloat32(t *testing.T) {
	// 0, 32767 (max), -32768 (min), -1 in little-endian order.
	data := []byte{
		0x00, 0x00,
		0xff, 0x7f,
		0x00, 0x80,
		0xff, 0xff,
	}
	got := s16leToFloat32(data)
	want := []float32{0, 32767.0 / 32768.0, -1.0, -1.0 / 32768.0}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-7 {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	// Odd trailing byte is dropped, not misread.
	if got := s16leToFloat32([]byte{0x01, 0x02, 0x03}); len(got) != 1 {
		t.Errorf("odd-length input produced %d samples, want 1", len(got))
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short  ", 100); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	long := strings.Repeat("x", 600)
	got := truncate(long, 500)
	if len(got) != 503 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate long: len=%d suffix=%q", len(got), got[len(got)-3:])
	}
}
