package serve

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"disabled", nil, http.MethodGet, "http://localhost:5173", http.StatusOK, ""},
		{"wildcard", []string{"*"}, http.MethodGet, "http://localhost:5173", http.StatusOK, "*"},
		{"listed origin", []string{"http://localhost:5173"}, http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173"},
		{"unlisted origin", []string{"http://localhost:5173"}, http.MethodGet, "http://evil.example", http.StatusOK, ""},
		{"no origin header", []string{"*"}, http.MethodGet, "", http.StatusOK, ""},
		{"preflight", []string{"*"}, http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(tt.origins, NewHandler(quietLogger()))
			req := httptest.NewRequest(tt.method, "/render?class=kotlin.String", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	h := CORS([]string{"*"}, NewHandler(quietLogger()))
	req := httptest.NewRequest(http.MethodOptions, "/document", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
}
