package voxscribe

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Word is a single recognized word with timing.
type Word struct {
	Text        string  `json:"text"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float32 `json:"probability"`
}

// Segment is a contiguous span of transcript text. Start and End are seconds
// from the beginning of the audio; End >= Start. Words is present only when
// word-level timestamps were requested.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Transcript is the terminal, immutable pipeline output: chronological,
// non-overlapping segments plus the detected or declared language.
type Transcript struct {
	Segments    []Segment `json:"segments"`
	Language    string    `json:"language"`
	Duration    float64   `json:"duration"`
	Model       string    `json:"model"`
	SourceURL   string    `json:"source_url,omitempty"`
	SourceTitle string    `json:"source_title,omitempty"`
}

// Text returns all segment texts joined by single spaces, no timing info.
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if txt := strings.TrimSpace(s.Text); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, " ")
}

// SRT renders the transcript as SubRip subtitles: 1-based cue index,
// comma millisecond separator, blank line between cues.
func (t *Transcript) SRT() string {
	var b strings.Builder
	for i, s := range t.Segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(s.Start, ','), formatTimestamp(s.End, ','))
		b.WriteString(strings.TrimSpace(s.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// VTT renders the transcript as WebVTT: literal WEBVTT header, dot millisecond
// separator, otherwise structurally identical to SRT.
func (t *Transcript) VTT() string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range t.Segments {
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(s.Start, '.'), formatTimestamp(s.End, '.'))
		b.WriteString(strings.TrimSpace(s.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// JSON renders the full transcript as compact JSON.
func (t *Transcript) JSON() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("voxscribe: encoding transcript: %w", err)
	}
	return string(data), nil
}

// JSONPretty renders the full transcript as indented JSON.
func (t *Transcript) JSONPretty() (string, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("voxscribe: encoding transcript: %w", err)
	}
	return string(data), nil
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm, rounded to the nearest
// millisecond and zero-padded.
func formatTimestamp(seconds float64, sep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMS := int64(math.Round(seconds * 1000))
	h := totalMS / 3_600_000
	m := (totalMS % 3_600_000) / 60_000
	s := (totalMS % 60_000) / 1_000
	ms := totalMS % 1_000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}
