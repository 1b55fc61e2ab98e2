package middleware

import (
	"github.com/gin-gonic/gin"
)

// Context keys set by TerminalContext and consumed by the telemetry middleware.
const (
	// TerminalIDKey is the gin context key holding the POS terminal ID.
	TerminalIDKey = "terminal_id"
	// WaiterIDKey is the gin context key holding the waiter (staff) ID.
	WaiterIDKey = "waiter_id"
)

// Headers carrying terminal identity on each request.
const (
	TerminalIDHeader = "X-Terminal-ID"
	WaiterIDHeader   = "X-Waiter-ID"
)

// TerminalContext extracts the POS terminal and waiter identity from request
// headers and stores them in the gin context for downstream middleware
// (metrics, tracing, profiling) and handlers.
//
// Both headers are optional: walk-in API clients and health checks do not
// send them. Values are validated before being trusted so that malformed
// header data never reaches trace attributes or metric labels.
func TerminalContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if terminalID := c.GetHeader(TerminalIDHeader); terminalID != "" && isValidTerminalID(terminalID) {
			c.Set(TerminalIDKey, terminalID)
		}
		if waiterID := c.GetHeader(WaiterIDHeader); waiterID != "" && isValidTerminalID(waiterID) {
			c.Set(WaiterIDKey, waiterID)
		}
		c.Next()
	}
}
