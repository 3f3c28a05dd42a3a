package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mwalczyk/chirp/internal/service"
	"github.com/mwalczyk/chirp/pkg/validator"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

// writeServiceError maps service sentinels onto HTTP statuses. A partial
// fan-out write is reported as 502: the primary record may exist even though
// the request failed.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var partial *service.PartialWriteError
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrTweetNotFound):
		writeError(w, http.StatusNotFound, "TWEET_NOT_FOUND", "Tweet not found")
	case errors.Is(err, service.ErrSelfFollow):
		writeError(w, http.StatusBadRequest, "SELF_FOLLOW", "Cannot follow yourself")
	case errors.Is(err, service.ErrNotTweetAuthor):
		writeError(w, http.StatusForbidden, "NOT_AUTHOR", "Only the author can delete a tweet")
	case errors.As(err, &partial):
		slog.Error("partial write", "op", op, "error", err)
		writeError(w, http.StatusBadGateway, "PARTIAL_WRITE", "The write completed only partially")
	default:
		slog.Error("request failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
