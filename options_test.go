package voxscribe

import (
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.ModelName() != "large-v3" {
		t.Errorf("default model = %q, want large-v3", opts.ModelName())
	}
	if opts.Language() != "" {
		t.Errorf("default language = %q, want auto (empty)", opts.Language())
	}
	if !opts.vad {
		t.Error("default VAD should be on")
	}
	if opts.beamSize != 0 {
		t.Errorf("default beam size = %d, want 0 (greedy)", opts.beamSize)
	}
}

func TestOptionsLanguage(t *testing.T) {
	tests := []struct {
		in       string
		wantCode string
		wantErr  bool
	}{
		{"en", "en", false},
		{"EN", "en", false},
		{"german", "de", false},
		{"English", "en", false},
		{"auto", "", false},
		{"", "", false},
		{"haw", "haw", false},
		{"klingon", "", true},
		{"zz", "", true},
	}
	for _, tt := range tests {
		opts, err := NewOptions().Model("base.en").Language(tt.in).Build()
		if tt.wantErr {
			if err == nil {
				t.Errorf("Language(%q): expected error", tt.in)
				continue
			}
			if KindOf(err) != KindInvalidOptions {
				t.Errorf("Language(%q): kind = %v, want InvalidOptions", tt.in, KindOf(err))
			}
			continue
		}
		if err != nil {
			t.Errorf("Language(%q): unexpected error %v", tt.in, err)
			continue
		}
		if opts.Language() != tt.wantCode {
			t.Errorf("Language(%q) = %q, want %q", tt.in, opts.Language(), tt.wantCode)
		}
	}
}

func TestOptionsUnknownModel(t *testing.T) {
	_, err := NewOptions().Model("gigantic-v9").Build()
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if KindOf(err) != KindInvalidOptions {
		t.Errorf("kind = %v, want InvalidOptions", KindOf(err))
	}
	if !strings.Contains(err.Error(), "gigantic-v9") {
		t.Errorf("error should name the model: %v", err)
	}
}

func TestOptionsModelFile(t *testing.T) {
	opts, err := NewOptions().ModelFile("/models/custom.bin", "abc123").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if opts.ModelName() != "custom" {
		t.Errorf("ModelName() = %q, want custom", opts.ModelName())
	}
	spec := opts.modelSpec()
	if spec.Path != "/models/custom.bin" || spec.SHA256 != "abc123" {
		t.Errorf("modelSpec() = %+v", spec)
	}

	if _, err := NewOptions().ModelFile("", "").Build(); err == nil {
		t.Error("empty model file path should fail")
	}
}

func TestOptionsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Options, error)
	}{
		{"negative beam", func() (Options, error) { return NewOptions().BeamSize(-1).Build() }},
		{"negative temperature", func() (Options, error) { return NewOptions().Temperature(-0.5).Build() }},
		{"negative threads", func() (Options, error) { return NewOptions().Threads(-2).Build() }},
		{"negative gpu device", func() (Options, error) { return NewOptions().GPUDevice(-1).Build() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != KindInvalidOptions {
				t.Errorf("kind = %v, want InvalidOptions", KindOf(err))
			}
		})
	}
}

func TestOptionsFirstErrorWins(t *testing.T) {
	_, err := NewOptions().Language("klingon").BeamSize(-1).Build()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "klingon") {
		t.Errorf("first error (language) should win, got: %v", err)
	}
}

func TestOptionsBuilderDoesNotMutatePrevious(t *testing.T) {
	base, err := NewOptions().Model("tiny").Build()
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewOptions().Model("base").Language("de").Build()
	if err != nil {
		t.Fatal(err)
	}
	if base.ModelName() != "tiny" || base.Language() != "" {
		t.Errorf("earlier options mutated: %+v", base)
	}
}

func TestSupportedLanguages(t *testing.T) {
	langs := SupportedLanguages()
	if len(langs) < 90 {
		t.Fatalf("supported languages = %d, want the full whisper set", len(langs))
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1].Code >= langs[i].Code {
			t.Fatalf("languages not sorted: %q before %q", langs[i-1].Code, langs[i].Code)
		}
	}
	seen := map[string]bool{}
	for _, l := range langs {
		if seen[l.Code] {
			t.Errorf("duplicate language code %q", l.Code)
		}
		seen[l.Code] = true
	}
	if !seen["en"] || !seen["de"] || !seen["ja"] {
		t.Error("expected common languages in the set")
	}
}
