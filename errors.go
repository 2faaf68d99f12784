package voxscribe

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Callers can switch on it to tell
// configuration mistakes (fixable before retry) from transient external
// failures (retryable as-is) from user-initiated cancellation.
type Kind int

const (
	// KindUnknown is the zero Kind, used when no better classification exists.
	KindUnknown Kind = iota
	// KindInvalidOptions is raised at options construction, before any stage runs.
	KindInvalidOptions
	// KindFetchFailed means the URL fetch tool failed or produced no media file.
	KindFetchFailed
	// KindDecodeFailed means the audio could not be decoded to 16 kHz mono PCM.
	KindDecodeFailed
	// KindUnsupportedModel means the model identifier has no known source.
	KindUnsupportedModel
	// KindDownloadFailed means the model artifact download failed.
	KindDownloadFailed
	// KindChecksumMismatch means the downloaded model failed integrity verification.
	KindChecksumMismatch
	// KindInferFailed means the speech engine rejected or failed on the audio.
	KindInferFailed
	// KindCanceled means the run was canceled via its context. Not an error in
	// the usual sense: the caller asked for it.
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindInvalidOptions:   "invalid options",
	KindFetchFailed:      "fetch failed",
	KindDecodeFailed:     "decode failed",
	KindUnsupportedModel: "unsupported model",
	KindDownloadFailed:   "download failed",
	KindChecksumMismatch: "checksum mismatch",
	KindInferFailed:      "inference failed",
	KindCanceled:         "canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the typed failure returned by the pipeline and options builder.
type Error struct {
	Kind Kind
	Op   string // the stage or operation that failed, e.g. "fetch", "decode"
	Err  error  // underlying cause, nil for pure validation failures
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("voxscribe: %s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("voxscribe: %s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("voxscribe: %s: %s", e.Op, e.Kind)
	default:
		return fmt.Sprintf("voxscribe: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, context.Canceled) hold for canceled runs even when
// the cause chain was severed by an external tool's exit status.
func (e *Error) Is(target error) bool {
	if e.Kind == KindCanceled && target == context.Canceled {
		return true
	}
	return false
}

// KindOf extracts the Kind from err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsCanceled reports whether err represents user-initiated cancellation.
func IsCanceled(err error) bool {
	return KindOf(err) == KindCanceled
}

// errf builds an *Error with a formatted cause.
func errf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// stageErr wraps a stage failure, preferring KindCanceled when the caller's
// own context ended. The cause chain alone is not trusted: a coalesced
// download canceled by a different caller, or an adapter-internal timeout,
// surfaces context.Canceled in the chain yet is a stage failure for a caller
// whose context is still live.
func stageErr(ctx context.Context, kind Kind, op string, err error) *Error {
	if ctx.Err() != nil {
		return &Error{Kind: KindCanceled, Op: op, Err: err}
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
