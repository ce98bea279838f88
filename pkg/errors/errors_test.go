package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Errorf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal metadata, got status %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := fmt.Errorf("card fetch blew up")
	wrapped := Wrap(CodeDependency, base, "list board cards")

	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if wrapped.Unwrap() != base {
		t.Fatalf("expected cause to be preserved")
	}
	if wrapped.Error() != "list board cards: card fetch blew up" {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}

	fresh := New(CodeValidation, "missing leads").WithDetails(map[string]string{"leads": "is required"})
	if fresh.Details() == nil {
		t.Fatalf("expected details to round-trip")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	typed := New(CodeNotFound, "vehicle missing")
	chained := fmt.Errorf("outer: %w", typed)

	if As(chained) != typed {
		t.Fatalf("expected typed error from chain")
	}
	if As(fmt.Errorf("plain")) != nil {
		t.Fatalf("expected nil for untyped error")
	}
}
