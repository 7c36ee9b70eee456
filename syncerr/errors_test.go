package syncerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestOpError_Message(t *testing.T) {
	err := Configf("transfer.parse_date", "fromdate", "2020-13-01", "want yyyy-mm-dd")
	msg := err.Error()
	for _, want := range []string{"transfer.parse_date", "config", `fromdate="2020-13-01"`, "want yyyy-mm-dd"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestIsKind_Wrapped(t *testing.T) {
	base := Transport("source.read", errors.New("connection refused"))
	wrapped := fmt.Errorf("layer v:x1: %w", base)

	if !IsKind(wrapped, KindTransport) {
		t.Fatalf("expected wrapped error to be transport")
	}
	if IsKind(wrapped, KindConfig) {
		t.Fatalf("transport error classified as config")
	}
	if IsInput(wrapped) {
		t.Fatalf("transport error classified as input")
	}
	if !IsInput(Protocol("request.validate", "scheme", "ftp://x", errors.New("bad"))) {
		t.Fatalf("protocol error must be input")
	}
}

func TestOpError_Nil(t *testing.T) {
	var e *OpError
	if e.Error() != "<nil>" {
		t.Fatalf("nil Error() = %q", e.Error())
	}
	if e.Unwrap() != nil {
		t.Fatalf("nil Unwrap() must be nil")
	}
}
