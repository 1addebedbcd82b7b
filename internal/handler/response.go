package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dukerupert/pillbox/internal/backup"
	"github.com/dukerupert/pillbox/internal/cabinet"
	"github.com/dukerupert/pillbox/internal/middleware"
)

type successResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successResponse{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Status: "error", Code: code, Error: msg})
}

// respondError maps a service error onto a status code. Unexpected errors are
// logged and reported generically.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, cabinet.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, cabinet.ErrNotFound), errors.Is(err, backup.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, cabinet.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, cabinet.ErrEmptyQueue):
		writeError(w, http.StatusConflict, "empty_queue", err.Error())
	case errors.Is(err, cabinet.ErrEmptyHistory):
		writeError(w, http.StatusConflict, "empty_history", err.Error())
	case errors.Is(err, backup.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "backup_disabled", err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

const maxBodyBytes = 1 << 20

// readParams merges query and body parameters. Bodies may be form encoded or
// a flat JSON object.
func readParams(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}

	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		if err := r.ParseForm(); err != nil {
			return nil, &cabinet.ValidationError{Field: "body", Message: "malformed form body"}
		}
		return r.Form, nil
	}

	values := r.URL.Query()
	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, &cabinet.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	for k, v := range body {
		switch v := v.(type) {
		case string:
			values.Set(k, v)
		case json.Number:
			values.Set(k, v.String())
		case bool:
			values.Set(k, strconv.FormatBool(v))
		case nil:
		default:
			return nil, &cabinet.ValidationError{Field: k, Message: "must be a string or number"}
		}
	}
	return values, nil
}

// intParam parses a required integer field.
func intParam(values url.Values, field string) (int, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return 0, &cabinet.ValidationError{Field: field, Message: "is required"}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &cabinet.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a whole number", raw)}
	}
	return n, nil
}

// firstParam returns the first non-empty value among the given aliases.
func firstParam(values url.Values, fields ...string) string {
	for _, f := range fields {
		if v := values.Get(f); v != "" {
			return v
		}
	}
	return ""
}
