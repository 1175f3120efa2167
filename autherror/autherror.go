// Package autherror defines the errors returned by the auth layer and the
// fixed JSON body used to report them over HTTP.
package autherror

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/errors/v5"
)

// Kind identifies which class of the taxonomy an Error belongs to.
type Kind int

const (
	// KindAuthentication means no valid session was found.
	KindAuthentication Kind = iota + 1

	// KindAuthorization means the session is valid but the role or permission is insufficient.
	KindAuthorization

	// KindHIPAACompliance means a regulated-data request failed an additional compliance check.
	KindHIPAACompliance

	// KindValidation means the request preconditions were malformed.
	KindValidation

	// KindRateLimit means the caller exceeded its request budget.
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindHIPAACompliance:
		return "HIPAAComplianceError"
	case KindValidation:
		return "ValidationError"
	case KindRateLimit:
		return "RateLimitError"
	default:
		return "UnknownError"
	}
}

// Code is the machine readable code reported in the error body.
type Code string

const (
	CodeUnauthorized            Code = "UNAUTHORIZED"
	CodeInvalidToken            Code = "INVALID_TOKEN"
	CodeUserInactive            Code = "USER_INACTIVE"
	CodeInsufficientPermissions Code = "INSUFFICIENT_PERMISSIONS"
	CodeHIPAAComplianceRequired Code = "HIPAA_COMPLIANCE_REQUIRED"
	CodeValidation              Code = "VALIDATION_ERROR"
	CodeRateLimitExceeded       Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal                Code = "INTERNAL_SERVER_ERROR"
)

// Error is a taxonomy error. The zero value is not usable; use the constructors.
type Error struct {
	kind       Kind
	code       Code
	message    string
	retryAfter time.Duration
	cause      error
}

// Unauthenticated returns an AuthenticationError with code UNAUTHORIZED.
func Unauthenticated(message string) *Error {
	return &Error{kind: KindAuthentication, code: CodeUnauthorized, message: message}
}

// InvalidToken returns an AuthenticationError with code INVALID_TOKEN wrapping the verification failure.
func InvalidToken(cause error) *Error {
	return &Error{kind: KindAuthentication, code: CodeInvalidToken, message: "Invalid or expired token", cause: cause}
}

// Inactive returns an AuthenticationError for a deactivated user.
func Inactive() *Error {
	return &Error{kind: KindAuthentication, code: CodeUserInactive, message: "User account is inactive"}
}

// Forbidden returns an AuthorizationError with code INSUFFICIENT_PERMISSIONS.
func Forbidden(message string) *Error {
	return &Error{kind: KindAuthorization, code: CodeInsufficientPermissions, message: message}
}

// Forbiddenf returns an AuthorizationError with a formatted message.
func Forbiddenf(format string, a ...any) *Error {
	return Forbidden(fmt.Sprintf(format, a...))
}

// HIPAACompliance returns a HIPAAComplianceError.
func HIPAACompliance(message string) *Error {
	return &Error{kind: KindHIPAACompliance, code: CodeHIPAAComplianceRequired, message: message}
}

// Validation returns a ValidationError.
func Validation(message string) *Error {
	return &Error{kind: KindValidation, code: CodeValidation, message: message}
}

// RateLimited returns a RateLimitError advising the caller to retry after the given delay.
func RateLimited(retryAfter time.Duration) *Error {
	return &Error{kind: KindRateLimit, code: CodeRateLimitExceeded, message: "Too many requests", retryAfter: retryAfter}
}

// WithCause attaches the underlying error. The cause is never written to the client.
func (e *Error) WithCause(err error) *Error {
	e.cause = err

	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s(%s): %s: %v", e.kind, e.code, e.message, e.cause)
	}

	return fmt.Sprintf("%s(%s): %s", e.kind, e.code, e.message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the taxonomy class.
func (e *Error) Kind() Kind {
	return e.kind
}

// Code returns the body code.
func (e *Error) Code() Code {
	return e.code
}

// Message returns the client facing message.
func (e *Error) Message() string {
	return e.message
}

// RetryAfter is set on RateLimitErrors.
func (e *Error) RetryAfter() time.Duration {
	return e.retryAfter
}

// Status maps the taxonomy class onto an HTTP status code.
func (e *Error) Status() int {
	switch e.kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization, KindHIPAACompliance:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// As returns the first taxonomy error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}

// IsKind reports whether err carries a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)

	return ok && e.kind == kind
}
