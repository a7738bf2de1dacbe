package supabase

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Error is a failure reported by the remote service. Message is the service's
// own text and is meant to be shown to the user verbatim.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus returns the response status of the failed call.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// errorBody covers the shapes used by Auth, PostgREST and Storage.
type errorBody struct {
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	ErrorDescription string          `json:"error_description"`
	Error            string          `json:"error"`
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	StatusCode       string          `json:"statusCode"`
}

func parseError(status int, raw []byte) *Error {
	e := &Error{Status: status}
	var b errorBody
	if err := json.Unmarshal(raw, &b); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	for _, m := range []string{b.Msg, b.Message, b.ErrorDescription, b.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	switch {
	case b.ErrorCode != "":
		e.Code = b.ErrorCode
	case b.StatusCode != "":
		e.Code = b.StatusCode
	case len(b.Code) > 0:
		e.Code = strings.Trim(string(b.Code), `"`)
	}
	// Storage reports duplicates as 400 with statusCode "409".
	if b.Error == "Duplicate" || b.StatusCode == "409" {
		e.Code = "409"
	}
	return e
}

// IsConflict reports whether err is a "resource already exists" failure.
func IsConflict(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Status == http.StatusConflict || e.Code == "409"
}
