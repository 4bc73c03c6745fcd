package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// Forbidden returns a 403 error with the given message.
func Forbidden(msg string) error {
	return &Error{
		http.StatusForbidden,
		msg,
		"forbidden",
	}
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found",
		"not_found",
	}
}

// MissingAuthorizationHeader is returned when a privileged request carries no
// Authorization header at all. No identity lookup happens in that case.
func MissingAuthorizationHeader() error {
	return &Error{
		http.StatusBadRequest,
		"Missing Authorization header",
		"missing_authorization_header",
	}
}

func InvalidToken() error {
	return &Error{
		http.StatusForbidden,
		"Invalid token or user not found",
		"invalid_token",
	}
}

func ProfileNotFound() error {
	return &Error{
		http.StatusForbidden,
		"Profile not found",
		"profile_not_found",
	}
}

func InvalidCredentials() error {
	return &Error{
		http.StatusUnauthorized,
		"Invalid email or password",
		"invalid_credentials",
	}
}

func MissingRequiredFields() error {
	return &Error{
		http.StatusBadRequest,
		"Missing required fields",
		"missing_required_fields",
	}
}

// Upstream wraps a failure reported by one of the hosted backend services
// (identity or object storage).
func Upstream(msg string) error {
	return &Error{
		http.StatusBadGateway,
		msg,
		"upstream_error",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusBadRequest,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusBadRequest,
		msg,
		"validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusBadRequest,
		msg,
		"validation_error",
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}
