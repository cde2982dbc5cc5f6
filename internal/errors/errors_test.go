package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeCaptureFailed, "grab failed")
	if !strings.Contains(err.Error(), "CAPTURE_FAILED") {
		t.Errorf("expected code name in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "grab failed") {
		t.Errorf("expected message, got %q", err.Error())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, CodeActionFailed, "press failed")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "caused by: boom") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestIsCode(t *testing.T) {
	err := Newf(CodeActionUnknownKey, "key %q", "bogus")
	if !IsCode(err, CodeActionUnknownKey) {
		t.Error("IsCode should match")
	}
	if IsCode(err, CodeCaptureFailed) {
		t.Error("IsCode should not match different code")
	}
	if IsCode(stderrors.New("plain"), CodeCaptureFailed) {
		t.Error("IsCode should not match plain errors")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		code Code
		want bool
	}{
		{CodeCaptureFailed, true},
		{CodeActionFailed, true},
		{CodeInternal, true},
		{CodeRegionInvalid, false},
		{CodeActionUnknownKey, false},
		{CodeConfigInvalid, false},
	}
	for _, c := range cases {
		if got := IsRetryable(New(c.code, "x")); got != c.want {
			t.Errorf("IsRetryable(%s) = %v, want %v", c.code, got, c.want)
		}
	}

	// Non-AppError is assumed transient.
	if !IsRetryable(stderrors.New("plain")) {
		t.Error("plain errors should be retryable")
	}
}

func TestWithMetadata(t *testing.T) {
	err := New(CodeRegionInvalid, "bad region").WithMetadata("width", "0")
	if err.Metadata["width"] != "0" {
		t.Error("metadata not stored")
	}
	if !strings.Contains(err.Error(), "width") {
		t.Errorf("metadata should appear in message, got %q", err.Error())
	}
}
