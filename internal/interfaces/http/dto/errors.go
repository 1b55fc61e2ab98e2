package dto

import (
	"net/http"
	"strings"
)

// Wire-level error codes. Clients switch on these, so the vocabulary
// is append-only.
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidTransition   = "ERR_INVALID_TRANSITION"

	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeSplitMismatch     = "ERR_SPLIT_MISMATCH"

	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// GetHTTPStatus maps a wire error code to its HTTP status. Unknown
// codes are reported as 500 so a missing mapping fails loudly.
func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeInvalidInput, ErrCodeInvalidJSON:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists, ErrCodeConflict, ErrCodeConcurrencyConflict, ErrCodeInvalidTransition:
		return http.StatusConflict
	case ErrCodeInvalidState, ErrCodeBusinessRule, ErrCodeInsufficientStock, ErrCodeSplitMismatch:
		return http.StatusUnprocessableEntity
	case ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// domainCodes maps the short codes domain packages raise
// (STALE_VERSION, INSUFFICIENT_STOCK) to the wire ERR_* vocabulary.
var domainCodes = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"ITEM_NOT_FOUND":   ErrCodeNotFound,
	"PERSON_NOT_FOUND": ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeAlreadyExists,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidState,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"VALIDATION_ERROR": ErrCodeValidation,
	"INTERNAL_ERROR":   ErrCodeInternal,

	// Optimistic concurrency
	"STALE_VERSION": ErrCodeConcurrencyConflict,

	// Order lifecycle
	"INVALID_TRANSITION":      ErrCodeInvalidTransition,
	"INVALID_ITEM_TRANSITION": ErrCodeInvalidTransition,
	"INVALID_KITCHEN_STATE":   ErrCodeInvalidTransition,
	"ITEM_ALREADY_SENT":       ErrCodeInvalidTransition,
	"ITEMS_UNFINISHED":        ErrCodeInvalidState,
	"NO_ITEMS":                ErrCodeBusinessRule,
	"NO_ROUTABLE_ITEMS":       ErrCodeBusinessRule,
	"PRODUCT_RETIRED":         ErrCodeBusinessRule,
	"PRODUCT_NOT_ORDERABLE":   ErrCodeBusinessRule,

	// Stock allocation
	"INSUFFICIENT_STOCK":      ErrCodeInsufficientStock,
	"LEDGER_ALREADY_REVERSED": ErrCodeConflict,
	"ASSIGNMENT_EXISTS":       ErrCodeAlreadyExists,

	// Payments
	"ALREADY_VOIDED":    ErrCodeConflict,
	"MISSING_SPLITS":    ErrCodeSplitMismatch,
	"UNEXPECTED_SPLITS": ErrCodeSplitMismatch,
	"INVALID_SPLIT":     ErrCodeSplitMismatch,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Unlisted INVALID_* codes count as input errors; anything else passes
// through unchanged.
func NormalizeErrorCode(code string) string {
	if wire, ok := domainCodes[code]; ok {
		return wire
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return code
}
