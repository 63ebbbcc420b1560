package httputils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/errutils"
)

// Write writes the given status code, headers and body to the given response writer.
func Write(w http.ResponseWriter, status int, headers map[string]string, body any) {
	// Attach headers.
	for key, value := range headers {
		w.Header().Set(key, value)
	}

	// If there's no body, writing the status code completes the response.
	if body == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Write body.
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("error in json Encode call while writing response body", "err", err)
	}
}

// WriteErr writes the given error to the given response writer.
// It uses errutils.ToHTTPError to decide the response status code.
func WriteErr(w http.ResponseWriter, err error) {
	httpError := errutils.ToHTTPError(err)
	Write(w, httpError.Status, nil, httpError)
}

// Is2xx returns true if the given status code belongs to the 2xx class.
func Is2xx(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
