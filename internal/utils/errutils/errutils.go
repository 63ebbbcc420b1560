package errutils

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError implements the error interface and provides an HTTP status code for the error.
// It is the standard error type for the whole application.
type HTTPError struct {
	// Status is the HTTP status code of the error.
	Status int `json:"status"`
	// Code is a short, machine-readable identifier of the error.
	Code string `json:"code"`
	// Reason is a human-readable explanation of the error. It may be absent.
	Reason string `json:"reason,omitempty"`
}

// Error makes HTTPError implement the error interface.
func (h HTTPError) Error() string {
	marshalled, err := json.Marshal(h)
	if err != nil {
		return h.Code
	}
	return string(marshalled)
}

// WithReasonStr returns a copy of the HTTPError with the given string as the reason.
func (h HTTPError) WithReasonStr(reason string) HTTPError {
	h.Reason = reason
	return h
}

// WithReasonErr returns a copy of the HTTPError with the given error's message as the reason.
func (h HTTPError) WithReasonErr(reason error) HTTPError {
	return h.WithReasonStr(reason.Error())
}

// ToHTTPError converts the given err to an HTTPError.
// If the err's chain contains an HTTPError, it is returned as is.
// Otherwise, a generic InternalServerError is returned.
func ToHTTPError(err error) HTTPError {
	var httpError HTTPError
	if errors.As(err, &httpError) {
		return httpError
	}
	return InternalServerError()
}

// BadRequest is the HTTPError for the 400 status code.
func BadRequest() HTTPError {
	return HTTPError{Status: http.StatusBadRequest, Code: http.StatusText(http.StatusBadRequest)}
}

// Unauthorized is the HTTPError for the 401 status code.
func Unauthorized() HTTPError {
	return HTTPError{Status: http.StatusUnauthorized, Code: http.StatusText(http.StatusUnauthorized)}
}

// NotFound is the HTTPError for the 404 status code.
func NotFound() HTTPError {
	return HTTPError{Status: http.StatusNotFound, Code: http.StatusText(http.StatusNotFound)}
}

// RequestTimeout is the HTTPError for the 408 status code.
func RequestTimeout() HTTPError {
	return HTTPError{Status: http.StatusRequestTimeout, Code: http.StatusText(http.StatusRequestTimeout)}
}

// InternalServerError is the HTTPError for the 500 status code.
func InternalServerError() HTTPError {
	return HTTPError{Status: http.StatusInternalServerError, Code: http.StatusText(http.StatusInternalServerError)}
}

// BadGateway is the HTTPError for the 502 status code.
func BadGateway() HTTPError {
	return HTTPError{Status: http.StatusBadGateway, Code: http.StatusText(http.StatusBadGateway)}
}
