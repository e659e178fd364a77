package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestProtocolErrorMessage(t *testing.T) {
	err := ErrProtocol(500, "boom")
	if err.Error() != "500 boom" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "500 boom")
	}
	if !err.Retryable {
		t.Error("5xx should be retryable")
	}
	if ErrProtocol(400, "bad").Retryable {
		t.Error("4xx should not be retryable")
	}
}

func TestTransportErrorWrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ErrTransport("", cause)
	if err.Error() != "transport error: connection refused" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestPayloadErrorDetails(t *testing.T) {
	err := ErrPayload("missing data", nil)
	if err.Error() != "invalid payload: missing data" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if IsRetryable(err) {
		t.Error("payload errors are not retryable")
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetch report: %w", ErrProtocol(503, "unavailable"))

	if got := KindOf(wrapped); got != KindProtocol {
		t.Fatalf("KindOf = %v, want %v", got, KindProtocol)
	}
	if got := GetStatusCode(wrapped); got != 503 {
		t.Fatalf("GetStatusCode = %d, want 503", got)
	}
	if !IsRetryable(wrapped) {
		t.Error("expected wrapped 503 to be retryable")
	}
	if KindOf(stderrors.New("plain")) != 0 {
		t.Error("plain errors have no kind")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindTransport: "transport",
		KindProtocol:  "protocol",
		KindPayload:   "payload",
		Kind(99):      "unknown",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
