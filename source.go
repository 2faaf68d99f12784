package voxscribe

import "strings"

// sourceKind discriminates the two source variants.
type sourceKind int

const (
	sourceFile sourceKind = iota
	sourceURL
)

// Source identifies the media to transcribe: a remote URL or a local file.
// Construct with FromURL or FromFile; the zero value is an empty local path
// and fails during Run.
type Source struct {
	kind sourceKind
	ref  string
}

// FromURL creates a Source that downloads media from url before decoding.
func FromURL(url string) Source {
	return Source{kind: sourceURL, ref: strings.TrimSpace(url)}
}

// FromFile creates a Source that reads media from a local path.
func FromFile(path string) Source {
	return Source{kind: sourceFile, ref: path}
}

// IsURL reports whether the source is remote.
func (s Source) IsURL() bool { return s.kind == sourceURL }

// Ref returns the URL or path the source was built from.
func (s Source) Ref() string { return s.ref }

func (s Source) String() string {
	if s.kind == sourceURL {
		return "url:" + s.ref
	}
	return "file:" + s.ref
}
