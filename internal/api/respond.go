package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"sjavs/internal/app"
)

// errorBody is the uniform JSON error shape.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON encodes a success payload.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps a classified command error onto the HTTP surface. Raw
// store errors never reach the caller.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := app.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		log.Error("command failed", zap.Error(err))
	}
	writeJSON(w, status, errorBody{
		Error:   string(kind),
		Message: app.MessageOf(err),
	})
}

func statusFor(kind app.ErrorKind) int {
	switch kind {
	case app.KindNotAuthenticated:
		return http.StatusUnauthorized
	case app.KindNotFound:
		return http.StatusNotFound
	case app.KindConflict:
		return http.StatusConflict
	case app.KindNotYourTurn:
		return http.StatusForbidden
	case app.KindIllegalMove:
		return http.StatusBadRequest
	case app.KindTransientStore, app.KindFatal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
