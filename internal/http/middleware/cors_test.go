package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const route = "/api/goals/triggers/:trigger"

	cases := []struct {
		name       string
		configured []string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"default vite origin", nil, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173"},
		{"default loopback origin", nil, "http://127.0.0.1:3000", http.StatusNoContent, "http://127.0.0.1:3000"},
		{"unknown origin", nil, "https://evil.example", http.StatusForbidden, ""},
		{"configured origin", []string{" https://app.example.com ", ""}, "https://app.example.com", http.StatusNoContent, "https://app.example.com"},
		{"defaults dropped once configured", []string{"https://app.example.com"}, "http://localhost:5173", http.StatusForbidden, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tc.configured...))
			r.POST(route, func(c *gin.Context) { c.Status(http.StatusAccepted) })

			req := httptest.NewRequest(http.MethodOptions, "/api/goals/triggers/generate_resume", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantAllow {
				t.Fatalf("allow-origin = %q, want %q", got, tc.wantAllow)
			}
		})
	}
}
