package router

import (
	"errors"
	"testing"
)

type codedError struct{ code string }

func (e *codedError) Error() string { return "boom" }
func (e *codedError) Code() string  { return e.code }

func TestDeriveErrorCode(t *testing.T) {
	if got := deriveErrorCode(nil); got != "" {
		t.Fatalf("nil error code = %q", got)
	}
	if got := deriveErrorCode(&codedError{code: "artifact_missing"}); got != "ARTIFACT_MISSING" {
		t.Fatalf("coded error = %q", got)
	}
	if got := deriveErrorCode(&codedError{code: ""}); got != "CODEDERROR" {
		t.Fatalf("empty code fallback = %q", got)
	}
	if got := deriveErrorCode(errors.New("plain")); got == "" {
		t.Fatal("plain error should yield a type-derived code")
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"/Start":        "start",
		"  ":            "unknown",
		"terug naar":    "terug_naar",
		"vervoerder":    "vervoerder",
		"/start@MyBot ": "start@mybot",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Fatalf("normalizeHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
