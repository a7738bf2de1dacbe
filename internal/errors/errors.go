package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotConfigured is returned when the remote service client could not be constructed.
	ErrNotConfigured = errors.New("Supabase not configured")
	// ErrUnauthenticated is returned when an operation requires an active session.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrEmailRequired is returned when a sign-in link is requested without an address.
	ErrEmailRequired = errors.New("email is required")
	// ErrMealNotFound is returned when a meal update matched no visible row.
	ErrMealNotFound = errors.New("meal not found")
	// ErrPhotoExists is returned when an object already exists at the upload path.
	ErrPhotoExists = errors.New("photo already exists at path")
	// ErrUnsupportedMedia is returned when uploaded content is not an image.
	ErrUnsupportedMedia = errors.New("file is not an image")
	// ErrInvalidDefaults is returned when user defaults fail validation.
	ErrInvalidDefaults = errors.New("invalid user defaults")
	// ErrVerifierMissing is returned when a sign-in link is opened in a browser
	// that did not request it, or after the request expired.
	ErrVerifierMissing = errors.New("open the sign-in link in the browser that requested it")
)

// RemoteError is implemented by errors carrying a status from the remote service.
type RemoteError interface {
	error
	HTTPStatus() int
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Remote service failures keep
// their literal message; 4xx statuses pass through, anything else becomes 502.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return NewHTTPError(http.StatusServiceUnavailable, ErrNotConfigured.Error(), "NOT_CONFIGURED")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrEmailRequired):
		return NewHTTPError(http.StatusBadRequest, ErrEmailRequired.Error(), "EMAIL_REQUIRED")
	case errors.Is(err, ErrMealNotFound):
		return NewHTTPError(http.StatusNotFound, ErrMealNotFound.Error(), "MEAL_NOT_FOUND")
	case errors.Is(err, ErrPhotoExists):
		return NewHTTPError(http.StatusConflict, ErrPhotoExists.Error(), "PHOTO_EXISTS")
	case errors.Is(err, ErrUnsupportedMedia):
		return NewHTTPError(http.StatusUnsupportedMediaType, ErrUnsupportedMedia.Error(), "UNSUPPORTED_MEDIA")
	case errors.Is(err, ErrInvalidDefaults):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_DEFAULTS")
	case errors.Is(err, ErrVerifierMissing):
		return NewHTTPError(http.StatusBadRequest, ErrVerifierMissing.Error(), "VERIFIER_MISSING")
	}

	var remote RemoteError
	if errors.As(err, &remote) {
		status := remote.HTTPStatus()
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		return NewHTTPError(status, remote.Error(), "REMOTE_ERROR")
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
