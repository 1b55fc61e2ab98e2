package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Identifier headers end up as span attributes, so they are bounded
// and validated before anything trusts them.
const (
	MaxRequestIDLength  = 128
	MaxTerminalIDLength = 64
)

// terminalIDRegex accepts codes like "TERM-01" or "W_042" as well as UUIDs.
var terminalIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig wraps otelgin and enriches each span with
// request_id, terminal_id and waiter_id attributes. Span names follow
// otelgin's "METHOD route_pattern" convention.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	otel := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		// otelgin creates the span and runs the rest of the chain.
		otel(c)

		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(spanIdentity(c)...)
		}
	}
}

// spanIdentity collects the identifying attributes present on the
// request. Context values set by earlier middleware win over raw
// headers.
func spanIdentity(c *gin.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)

	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
		if len(requestID) > MaxRequestIDLength {
			requestID = requestID[:MaxRequestIDLength]
		}
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String("request_id", requestID))
	}

	terminalID := c.GetString(TerminalIDKey)
	if terminalID == "" {
		// TerminalContext is not in the chain; fall back to the raw
		// header, validated so nothing hostile lands in the trace.
		if h := c.GetHeader(TerminalIDHeader); isValidTerminalID(h) {
			terminalID = h
		}
	}
	if terminalID != "" {
		attrs = append(attrs, attribute.String("terminal_id", terminalID))
	}

	if waiterID := c.GetString(WaiterIDKey); waiterID != "" {
		attrs = append(attrs, attribute.String("waiter_id", waiterID))
	}

	return attrs
}

// isValidTerminalID bounds and pattern-checks terminal and waiter
// identifiers taken from headers.
func isValidTerminalID(id string) bool {
	return id != "" && len(id) <= MaxTerminalIDLength && terminalIDRegex.MatchString(id)
}

// SpanErrorMarker marks spans as errored for 4xx/5xx responses. Place
// it after the tracing middleware in the chain.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		status := c.Writer.Status()
		if !span.IsRecording() || status < http.StatusBadRequest {
			return
		}

		span.SetStatus(codes.Error, errorDescription(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

func errorDescription(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusNotFound:
		return http.StatusText(status)
	default:
		return "Client Error"
	}
}

// TracingAttributeInjector re-enriches the current span after the
// terminal context has been established. Place it after both the
// tracing and TerminalContext middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(spanIdentity(c)...)
		}
		c.Next()
	}
}
