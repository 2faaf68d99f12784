package model

import "fmt"

// UnsupportedError means the requested identifier is not in the catalog and
// no custom file path was given.
type UnsupportedError struct {
	ID string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("model: unsupported model %q (run with a catalog id or a custom file path)", e.ID)
}

// DownloadError means the artifact could not be fetched from the model source.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("model: download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ChecksumError means a downloaded or custom artifact failed integrity
// verification. The offending file is discarded, never cached.
type ChecksumError struct {
	ID       string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("model: checksum mismatch for %q: expected %s, got %s", e.ID, e.Expected, e.Actual)
}

// NotFoundError means a custom model file does not exist on disk.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model: model file not found: %s", e.Path)
}
