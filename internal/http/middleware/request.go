package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/careercoach-backend/internal/observability"
	"github.com/yungbote/careercoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext stores trace and request ids on the request context and
// echoes them as response headers. Incoming headers win; an active span supplies
// the trace id otherwise; anything still missing is generated.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		td := &ctxutil.TraceData{
			RequestID: headerOr(c, headerRequestID, uuid.NewString),
			TraceID: headerOr(c, headerTraceID, func() string {
				if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
					return sc.TraceID().String()
				}
				return uuid.NewString()
			}),
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, td))
		c.Set("trace_id", td.TraceID)
		c.Set("request_id", td.RequestID)
		c.Header(headerTraceID, td.TraceID)
		c.Header(headerRequestID, td.RequestID)
		c.Next()
	}
}

func headerOr(c *gin.Context, name string, fallback func() string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
		return v
	}
	return fallback()
}

// RequestLogger writes one line per request once the handler chain returns.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := append(requestFields(c), "status", status, "duration_ms", time.Since(start).Milliseconds())
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func requestFields(c *gin.Context) []interface{} {
	ctx := c.Request.Context()
	fields := []interface{}{"method", c.Request.Method, "path", routeOf(c, c.Request.URL.Path)}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		fields = append(fields, "user_id", rd.UserID.String())
		if rd.SessionID != uuid.Nil {
			fields = append(fields, "session_id", rd.SessionID.String())
		}
	}
	return fields
}

// Metrics records request counts and latency by route template.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		m.APIInflightInc()
		defer m.APIInflightDec()
		start := time.Now()
		c.Next()
		m.ObserveAPI(c.Request.Method, routeOf(c, "unknown"), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// routeOf prefers the matched route template so ids in the path do not
// explode label or log cardinality.
func routeOf(c *gin.Context, fallback string) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return fallback
}
