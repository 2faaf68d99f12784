package capture

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestFloat32ToInt16(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1.0, -1.0, 1.5, -1.5}
	got := float32ToInt16(in)
	want := []int{0, 16383, -16383, 32767, -32767, 32767, -32768}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: %v -> %d, want %d", i, in[i], got[i], want[i])
		}
	}
}

func TestBytesToFloat32(t *testing.T) {
	in := []float32{0.25, -0.75, 1.0}
	data := make([]byte, len(in)*4)
	for i, v := range in {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}

	got := bytesToFloat32(data, uint32(len(in)))
	if len(got) != len(in) {
		t.Fatalf("got %d samples, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], in[i])
		}
	}

	// Short buffer must not be read past its end.
	if got := bytesToFloat32(data[:5], 3); len(got) != 1 {
		t.Errorf("truncated buffer produced %d samples, want 1", len(got))
	}
}

func TestWriteWAV(t *testing.T) {
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(i)/16000))
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	if err := WriteWAV(path, samples, 16000); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		t.Fatal("output is not a valid WAV file")
	}
	if dec.SampleRate != 16000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("format = %d Hz / %d ch / %d bit, want 16000/1/16",
			dec.SampleRate, dec.NumChans, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	for i := 0; i < len(samples); i += 100 {
		back := float32(buf.Data[i]) / 32767.0
		if math.Abs(float64(back-samples[i])) > 1e-3 {
			t.Errorf("sample %d round-tripped to %v, want %v", i, back, samples[i])
		}
	}
}

func TestWriteWAVBadPath(t *testing.T) {
	err := WriteWAV(filepath.Join(t.TempDir(), "missing", "out.wav"), []float32{0}, 16000)
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}
