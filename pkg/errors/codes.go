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

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeCancelled          ErrorCode = "COMMON_017"
)

// Aliases
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// Element / property-table Error Codes
const (
	ErrCodeUnknownElement   ErrorCode = "ELM_001"
	ErrCodeMalformedSpecies ErrorCode = "ELM_002"
	ErrCodeDatasetInvalid   ErrorCode = "ELM_003"
)

// Screening Error Codes
const (
	ErrCodeInvalidConstraint ErrorCode = "SCR_001"
	ErrCodeCandidateFailed   ErrorCode = "SCR_002"
	ErrCodeInvalidTemplate   ErrorCode = "SCR_003"
	ErrCodeRunNotFound       ErrorCode = "SCR_004"
)

// Tolerance Error Codes
const (
	ErrCodeInvalidBand ErrorCode = "TOL_001"
)

// Sustainability Error Codes
const (
	ErrCodeInvalidFormula ErrorCode = "SUS_001"
)

// Export Error Codes
const (
	ErrCodeExportFailed ErrorCode = "EXP_001"
	ErrCodeUploadFailed ErrorCode = "EXP_002"
	ErrCodePublish      ErrorCode = "EXP_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusForbidden,
	ErrCodeCancelled:          http.StatusRequestTimeout,

	ErrCodeUnknownElement:   http.StatusNotFound,
	ErrCodeMalformedSpecies: http.StatusBadRequest,
	ErrCodeDatasetInvalid:   http.StatusInternalServerError,

	ErrCodeInvalidConstraint: http.StatusBadRequest,
	ErrCodeCandidateFailed:   http.StatusUnprocessableEntity,
	ErrCodeInvalidTemplate:   http.StatusBadRequest,
	ErrCodeRunNotFound:       http.StatusNotFound,

	ErrCodeInvalidBand: http.StatusBadRequest,

	ErrCodeInvalidFormula: http.StatusBadRequest,

	ErrCodeExportFailed: http.StatusInternalServerError,
	ErrCodeUploadFailed: http.StatusBadGateway,
	ErrCodePublish:      http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodeCancelled:          "operation cancelled",

	ErrCodeUnknownElement:   "unknown element",
	ErrCodeMalformedSpecies: "malformed species label",
	ErrCodeDatasetInvalid:   "invalid element dataset",

	ErrCodeInvalidConstraint: "invalid stoichiometry constraint",
	ErrCodeCandidateFailed:   "candidate evaluation failed",
	ErrCodeInvalidTemplate:   "invalid site template",
	ErrCodeRunNotFound:       "screening run not found",

	ErrCodeInvalidBand: "invalid tolerance band",

	ErrCodeInvalidFormula: "invalid chemical formula",

	ErrCodeExportFailed: "export failed",
	ErrCodeUploadFailed: "export upload failed",
	ErrCodePublish:      "candidate publish failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
