package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", NewValidation("bad input"), http.StatusUnprocessableEntity},
		{"unauthorized", NewUnauthorized("no"), http.StatusUnauthorized},
		{"forbidden", NewForbidden("no"), http.StatusForbidden},
		{"not found", NewNotFound("gone"), http.StatusNotFound},
		{"internal", NewInternal("boom", errors.New("cause")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.StatusCode(); got != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFromPassesTaxonomyThrough(t *testing.T) {
	orig := NewForbidden("not yours")
	wrapped := fmt.Errorf("handler: %w", orig)

	got := From(wrapped)
	if got != orig {
		t.Fatalf("From() = %+v, want the original taxonomy error", got)
	}
}

func TestFromWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("disk full")
	got := From(cause)

	if got.Kind != Internal {
		t.Fatalf("Kind = %v, want Internal", got.Kind)
	}
	if got.Message != "Internal server error" {
		t.Fatalf("Message = %q, want generic message", got.Message)
	}
	if !errors.Is(got, cause) {
		t.Fatal("From() should keep the cause in the chain")
	}
}

func TestValidationCarriesFieldData(t *testing.T) {
	err := NewValidation("invalid", FieldError{Message: "Title is required", Param: "title"})
	if len(err.Data) != 1 || err.Data[0].Param != "title" {
		t.Fatalf("Data = %+v, want one title field error", err.Data)
	}
}
