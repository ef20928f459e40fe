package utils

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrNetwork           = errors.New("network failure")           // Connection-level failure (DNS, TCP, TLS)
	ErrTimeout           = errors.New("request timed out")         // Fetch exceeded the bounded timeout
	ErrHTTPStatus        = errors.New("non-2xx HTTP status")       // Wraps the status line
	ErrMalformed         = errors.New("no parseable content")      // Extractor found nothing usable
	ErrRobotsUnreachable = errors.New("robots policy unreachable") // Fail-open condition
	ErrScopeViolation    = errors.New("URL out of scope")          // Domain/prefix filter rejection
	ErrParsing           = errors.New("parsing error")             // Wraps URL/HTML parse errors
	ErrFilesystem        = errors.New("filesystem error")          // Wraps os errors
	ErrDatabase          = errors.New("database error")            // Wraps badger errors
	ErrSinkOpen          = errors.New("cannot open output sink")   // The only fatal error class
	ErrConfigValidation  = errors.New("configuration validation error")
)

// CategorizeError maps an error to a predefined category string for logging.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	case errors.Is(err, ErrHTTPStatus):
		errMsg := err.Error()
		if strings.Contains(errMsg, " 404 ") {
			return "HTTPStatus_404"
		}
		if strings.Contains(errMsg, " 403 ") {
			return "HTTPStatus_403"
		}
		if strings.Contains(errMsg, " 429 ") {
			return "HTTPStatus_429"
		}
		if strings.Contains(errMsg, "status 5") {
			return "HTTPStatus_5xx"
		}
		return "HTTPStatus"
	case errors.Is(err, ErrNetwork):
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "connection refused") {
			return "Network_ConnectionRefused"
		}
		if strings.Contains(errMsg, "no such host") {
			return "Network_DNSLookup"
		}
		if strings.Contains(errMsg, "tls") || strings.Contains(errMsg, "certificate") {
			return "Network_TLS"
		}
		return "Network"
	case errors.Is(err, ErrMalformed):
		return "Malformed"
	case errors.Is(err, ErrRobotsUnreachable):
		return "RobotsUnreachable"
	case errors.Is(err, ErrScopeViolation):
		return "Policy_Scope"
	case errors.Is(err, ErrParsing):
		errMsg := err.Error()
		if strings.Contains(errMsg, "URL") {
			return "Parsing_URL"
		}
		if strings.Contains(errMsg, "HTML") {
			return "Parsing_HTML"
		}
		return "Parsing"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		return "Filesystem"
	case errors.Is(err, ErrDatabase):
		return "Database"
	case errors.Is(err, ErrSinkOpen):
		return "SinkOpen"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	}

	// --- Fallback checks for common underlying error types ---

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "Timeout"
		}
		return "Network"
	}
	lowerErrMsg := strings.ToLower(err.Error())
	if strings.Contains(lowerErrMsg, "timeout") || strings.Contains(lowerErrMsg, "deadline exceeded") {
		return "Timeout"
	}
	if strings.Contains(lowerErrMsg, "connection refused") ||
		strings.Contains(lowerErrMsg, "no such host") ||
		strings.Contains(lowerErrMsg, "reset by peer") ||
		strings.Contains(lowerErrMsg, "broken pipe") {
		return "Network"
	}

	return "Unknown"
}
