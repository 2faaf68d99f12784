package voxscribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	fetchErr := errf(KindFetchFailed, "fetch", "exit status 1")
	if KindOf(fetchErr) != KindFetchFailed {
		t.Errorf("KindOf = %v, want FetchFailed", KindOf(fetchErr))
	}

	wrapped := fmt.Errorf("outer: %w", fetchErr)
	if KindOf(wrapped) != KindFetchFailed {
		t.Errorf("KindOf through wrapping = %v, want FetchFailed", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain error should map to KindUnknown")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("nil should map to KindUnknown")
	}
}

func TestErrorMessage(t *testing.T) {
	err := errf(KindDecodeFailed, "decode", "ffmpeg: %s", "bad stream")
	msg := err.Error()
	for _, want := range []string{"voxscribe:", "decode", "decode failed", "bad stream"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Kind: KindDownloadFailed, Op: "resolve", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestCanceledIsContextCanceled(t *testing.T) {
	// A run killed via SIGINT surfaces the tool's exit error, not
	// context.Canceled, yet callers still expect errors.Is to hold.
	err := &Error{Kind: KindCanceled, Op: "fetch", Err: errors.New("signal: killed")}
	if !errors.Is(err, context.Canceled) {
		t.Error("canceled errors should satisfy errors.Is(err, context.Canceled)")
	}
	if !IsCanceled(err) {
		t.Error("IsCanceled should hold")
	}

	other := &Error{Kind: KindFetchFailed, Op: "fetch", Err: errors.New("404")}
	if errors.Is(other, context.Canceled) {
		t.Error("non-canceled errors must not match context.Canceled")
	}
	if IsCanceled(other) {
		t.Error("IsCanceled should not hold for fetch failures")
	}
}

func TestStageErrPrefersCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := stageErr(ctx, KindFetchFailed, "fetch", errors.New("exit status 1"))
	if err.Kind != KindCanceled {
		t.Errorf("kind = %v, want Canceled when context is done", err.Kind)
	}

	err = stageErr(context.Background(), KindFetchFailed, "fetch", errors.New("404"))
	if err.Kind != KindFetchFailed {
		t.Errorf("kind = %v, want FetchFailed for a live context", err.Kind)
	}
}

func TestStageErrTrustsCallerContextOnly(t *testing.T) {
	// context.Canceled in the cause chain can come from someone else: a shared
	// download whose owner canceled, or a tool's internal timeout. A caller
	// whose own context is live must see the stage failure, not Canceled.
	cause := fmt.Errorf("download: %w", context.Canceled)
	err := stageErr(context.Background(), KindDownloadFailed, "resolve", cause)
	if err.Kind != KindDownloadFailed {
		t.Errorf("kind = %v, want DownloadFailed for a live caller", err.Kind)
	}
	if IsCanceled(err) {
		t.Error("IsCanceled must not hold for a caller who never canceled")
	}

	err = stageErr(context.Background(), KindDecodeFailed, "decode", context.DeadlineExceeded)
	if err.Kind != KindDecodeFailed {
		t.Errorf("kind = %v, want DecodeFailed for an adapter-internal timeout", err.Kind)
	}
}

func TestKindString(t *testing.T) {
	if KindChecksumMismatch.String() != "checksum mismatch" {
		t.Errorf("String() = %q", KindChecksumMismatch.String())
	}
	if !strings.Contains(Kind(99).String(), "99") {
		t.Errorf("unknown kind String() = %q", Kind(99).String())
	}
}
