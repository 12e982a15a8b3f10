// internal/app/features/errors/errors.go
//
// Package errors renders failures as the JSON error body shared by every
// endpoint:
//
//	{"error":{"code":"not-found","message":"Team not found."}}
//
// The status comes from apperr.HTTPStatus. Untyped errors are logged and
// reported as internal without leaking their text.
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"go.uber.org/zap"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// ErrorLogger writes failures and logs the unexpected ones.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Write renders err. Typed failures keep their code and message.
func (l *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		l.Log.Error("unhandled error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		e = apperr.New(apperr.Internal, "An unexpected error occurred.")
	} else if e.Code == apperr.Internal && e.Err != nil {
		l.Log.Error("internal error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("message", e.Message),
			zap.Error(e.Err))
	}
	WriteJSON(w, apperr.HTTPStatus(e.Code), errorBody{Error: errorDetail{Code: e.Code, Message: e.Message}})
}

// NotFound is the router's fallback for unknown paths.
func (l *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request) {
	l.Write(w, r, apperr.New(apperr.NotFound, "No such endpoint."))
}

// MethodNotAllowed is the router's fallback for a known path with the wrong
// method.
func (l *ErrorLogger) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
		Code:    apperr.InvalidArgument,
		Message: "Method not allowed.",
	}})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
