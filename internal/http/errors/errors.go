package errors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Boundary helpers: log full error detail server-side, return generic (or
// caller-chosen) messages to the client.

func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	slog.Error(message, args(r, err)...)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	slog.Warn("bad request", args(r, err)...)
	http.Error(w, clientMessage, http.StatusBadRequest)
}

func LogError(r *http.Request, message string, err error) {
	slog.Error(message, args(r, err)...)
}

func LogInfo(r *http.Request, message string) {
	slog.Info(message, args(r, nil)...)
}

func args(r *http.Request, err error) []any {
	out := make([]any, 0, 4)
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		out = append(out, "request_id", requestID)
	}
	if err != nil {
		out = append(out, "err", err)
	}
	return out
}
