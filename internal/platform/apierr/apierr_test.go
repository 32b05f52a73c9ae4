package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOfWrapped(t *testing.T) {
	base := NotFound("lot %q not found", "L-001")
	wrapped := fmt.Errorf("load lot: %w", base)

	if got := StatusOf(wrapped); got != http.StatusNotFound {
		t.Fatalf("StatusOf: want=%d got=%d", http.StatusNotFound, got)
	}
	if !IsStatus(wrapped, http.StatusNotFound) {
		t.Fatalf("IsStatus: want true")
	}
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("plain error: want=500 got=%d", got)
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{New(400, "invalid_status", errors.New("status must be one of open")), "status must be one of open"},
		{New(409, "invalid_transition", nil), "invalid_transition"},
		{New(418, "", nil), "api error (418)"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error(): want=%q got=%q", tc.want, got)
		}
	}
}
