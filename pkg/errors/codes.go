package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeOK                 ErrorCode = "OK"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeDatabaseError      ErrorCode = "COMMON_006"
	ErrCodeCacheError         ErrorCode = "COMMON_007"
	ErrCodeMessagingError     ErrorCode = "COMMON_008"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_009"
)

// Rule catalog error codes.
const (
	// ErrCodeConfiguration: a jurisdiction has no rule templates at all.
	// Fatal for that jurisdiction; no partial result is possible.
	ErrCodeConfiguration    ErrorCode = "CATALOG_001"
	ErrCodeTemplateNotFound ErrorCode = "CATALOG_002"
	ErrCodeTemplateInvalid  ErrorCode = "CATALOG_003"
)

// Recurrence rule error codes.
const (
	// ErrCodeMissingAnchor: rule needs a formation date the entity lacks.
	// Recovered locally by skipping the single template.
	ErrCodeMissingAnchor ErrorCode = "RULE_001"
	// ErrCodeRuleEvaluation: malformed or unsupported recurrence rule.
	// Same local-skip recovery as a missing anchor.
	ErrCodeRuleEvaluation ErrorCode = "RULE_002"
)

// Fee error codes.
const (
	// ErrCodeInvalidFeeRange: fee range with min > max.  The obligation is
	// still created with a nil estimated fee and a flagged note.
	ErrCodeInvalidFeeRange ErrorCode = "FEE_001"
)

// Obligation error codes.
const (
	ErrCodeObligationNotFound ErrorCode = "OBL_001"
	ErrCodeObligationExists   ErrorCode = "OBL_002"
	// ErrCodeAlreadyCompleted: the PENDING→COMPLETED transition was already
	// applied; the compare-and-set matched no row.
	ErrCodeAlreadyCompleted ErrorCode = "OBL_003"
)

// Entity error codes.
const (
	ErrCodeEntityInvalid ErrorCode = "ENT_001"
)

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeConfiguration:    http.StatusUnprocessableEntity,
	ErrCodeTemplateNotFound: http.StatusNotFound,
	ErrCodeTemplateInvalid:  http.StatusUnprocessableEntity,

	ErrCodeMissingAnchor:  http.StatusUnprocessableEntity,
	ErrCodeRuleEvaluation: http.StatusUnprocessableEntity,

	ErrCodeInvalidFeeRange: http.StatusUnprocessableEntity,

	ErrCodeObligationNotFound: http.StatusNotFound,
	ErrCodeObligationExists:   http.StatusConflict,
	ErrCodeAlreadyCompleted:   http.StatusConflict,

	ErrCodeEntityInvalid: http.StatusBadRequest,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode, used as a metric
// label by the monitoring layer.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
