package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/platform/apierr"
)

func respond(t *testing.T, err error) (int, ErrorEnvelope, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondAggregateError(c, err)
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env, rec.Body.String()
}

func TestRespondAggregateErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "op", "baseline action not found: a", nil), http.StatusNotFound, "not_found"},
		{"validation", domainagg.NewError(domainagg.CodeValidation, "op", "user id is required", nil), http.StatusBadRequest, "validation"},
		{"retryable", domainagg.NewError(domainagg.CodeRetryable, "op", "database is locked", nil), http.StatusInternalServerError, "storage_unavailable"},
		{"conflict", domainagg.NewError(domainagg.CodeConflict, "op", "dup", nil), http.StatusInternalServerError, "storage_conflict"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal"},
		{"api error", apierr.New(http.StatusTeapot, "teapot", errors.New("short and stout")), http.StatusTeapot, "teapot"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env, _ := respond(t, tc.err)
			if status != tc.status || env.Error.Code != tc.code {
				t.Fatalf("got %d/%q want %d/%q", status, env.Error.Code, tc.status, tc.code)
			}
		})
	}
}

func TestRespondAggregateErrorHidesStorageDetail(t *testing.T) {
	_, env, raw := respond(t, domainagg.NewError(domainagg.CodeInternal, "goals.op", "pq: relation missing", nil))
	if strings.Contains(raw, "relation missing") {
		t.Fatalf("internal cause leaked: %s", raw)
	}
	if env.Error.Message != "storage failure" {
		t.Fatalf("message=%q", env.Error.Message)
	}

	_, env, _ = respond(t, domainagg.NewError(domainagg.CodeNotFound, "goals.op", "weekly goal not found: g", nil))
	if env.Error.Message != "weekly goal not found: g" {
		t.Fatalf("client-facing message should be the aggregate message, got %q", env.Error.Message)
	}
}
