package apperror

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"Authentication wraps ErrAuthentication", Authentication("bad credentials"), ErrAuthentication, true},
		{"Authorization wraps ErrAuthorization", Authorization("no"), ErrAuthorization, true},
		{"NotFound wraps ErrNotFound", NotFound("account", "41"), ErrNotFound, true},
		{"Malformed wraps ErrMalformed", Malformed("email: is required"), ErrMalformed, true},
		{"Conflict wraps ErrConflict", Conflict("email taken"), ErrConflict, true},
		{"MethodNotAllowed wraps ErrMethodNotAllowed", MethodNotAllowed("no"), ErrMethodNotAllowed, true},
		{"NotFound does not match ErrMalformed", NotFound("account", "41"), ErrMalformed, false},
		{"Conflict does not match ErrNotFound", Conflict("email taken"), ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Authentication("x"), http.StatusUnauthorized},
		{Authorization("x"), http.StatusForbidden},
		{NotFound("account", "1"), http.StatusNotFound},
		{Malformed("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{MethodNotAllowed("x"), http.StatusMethodNotAllowed},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMalformedAttributesAggregates(t *testing.T) {
	err := MalformedAttributes(map[string]string{
		"givenName":    "must be 100 characters or less",
		"emailAddress": "must be a valid email address",
	})

	want := "emailAddress: must be a valid email address; givenName: must be 100 characters or less"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	if !errors.Is(err, ErrMalformed) {
		t.Error("aggregated error should match ErrMalformed")
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("page", "home")
	if !errors.Is(err.Unwrap(), ErrNotFound) {
		t.Error("Unwrap() should expose the sentinel kind")
	}
}
