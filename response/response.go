// Package response owns the wire format of every API reply.
//
// Success:  {"statusCode": 200, "data": ..., "message": "...", "success": true}
// Failure:  {"statusCode": 404, "message": "...", "success": false, "errors": []}
//
// Handlers are written as `func(w, r) error` and adapted with Handle, so a handler can
// simply `return apperror.NewNotFoundError(...)` and the envelope is produced here.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/user/vidtube-go/apperror"
)

// Envelope is the success response shape.
type Envelope struct {
	StatusCode int    `json:"statusCode" example:"200"`
	Data       any    `json:"data"`
	Message    string `json:"message" example:"Success"`
	Success    bool   `json:"success" example:"true"`
}

// HandlerFunc is an http.HandlerFunc that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts a HandlerFunc to http.HandlerFunc. Any returned error is written as the
// failure envelope; no further steps of the handler run after it returns.
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			Error(w, r, err)
		}
	}
}

// JSON writes the success envelope with the given status code.
func JSON(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// OK is shorthand for JSON(w, 200, ...).
func OK(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusOK, data, message)
}

// Created is shorthand for JSON(w, 201, ...).
func Created(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusCreated, data, message)
}

// Error converts any error into the failure envelope.
// Errors that are not *apperror.AppError are unanticipated: they are logged and
// reported as a 500 without leaking their text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("Something went wrong", err)
	}

	log := zerolog.Ctx(r.Context())
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Int("status", appErr.StatusCode()).Msg("request rejected")
	}

	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// Recoverer turns panics into the same 500 failure envelope every other error gets.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				zerolog.Ctx(r.Context()).Error().Interface("panic", rvr).Msg("recovered from panic")
				writeJSON(w, http.StatusInternalServerError, apperror.NewInternalError("internal server error", nil).ToResponse())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, r, apperror.NewNotFoundError("route not found", nil))
}

// MethodNotAllowed is the router's fallback for known paths with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, r, apperror.New(apperror.KindMethodNotAllowed, "method not allowed", nil))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing useful can be sent to the client any more.
		zerolog.DefaultContextLogger.Error().Err(err).Msg("failed to encode response")
	}
}
