package oversea

import (
	"errors"
	"testing"
)

func TestTranslationError(t *testing.T) {
	cause := errors.New("underlying error")
	err := &TranslationError{Message: "translation failed", Cause: cause}

	if err.Error() != "translation failed: underlying error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	// Without cause
	err2 := &TranslationError{Message: "simple error"}
	if err2.Error() != "simple error" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Message: "rate limited", Retryable: true}

	if err.Error() != "provider error: rate limited" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !err.Retryable {
		t.Error("error should be retryable")
	}

	var target *ProviderError
	if !errors.As(error(err), &target) {
		t.Error("errors.As should match ProviderError")
	}
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Message: "connection failed"}

	if err.Error() != "cache error: connection failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestExtractionError(t *testing.T) {
	cause := errors.New("timeout")
	err := &ExtractionError{Message: "fetch failed", Cause: cause, URL: "https://detail.1688.com/offer/1.html"}

	want := "extraction error: fetch failed (https://detail.1688.com/offer/1.html): timeout"
	if err.Error() != want {
		t.Errorf("unexpected error message: %s, want %s", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}

	// Without URL or cause
	err2 := &ExtractionError{Message: "no match"}
	if err2.Error() != "extraction error: no match" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestDocumentError(t *testing.T) {
	err := &DocumentError{Message: "payload is not a JSON object"}

	if err.Error() != "document error: payload is not a JSON object" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}
