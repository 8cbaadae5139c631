package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionFromHeader(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	token, err := tokens.Generate(41)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var gotID int64
	var gotOK bool
	handler := SessionFromHeader(tokens)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotID, gotOK = SessionAccountID(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		wantID int64
		wantOK bool
	}{
		{"valid bearer token", "Bearer " + token, 41, true},
		{"no header", "", 0, false},
		{"wrong scheme", "Basic dXNlcjpwYXNz", 0, false},
		{"garbage token", "Bearer not-a-token", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK = 0, false
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), r)

			if gotID != tt.wantID || gotOK != tt.wantOK {
				t.Errorf("SessionAccountID() = (%d, %v), want (%d, %v)", gotID, gotOK, tt.wantID, tt.wantOK)
			}
		})
	}
}
