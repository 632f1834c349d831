package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/evcraddock/fsbo/internal/apperr"
)

const maxBodyBytes = 1 << 20

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg, code string, status int) {
	apiJSON(w, map[string]string{"error": msg, "code": code}, status)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// apiFail reports err to the caller. Classified errors keep their status and
// message; anything else is logged and reported as a generic 500.
func apiFail(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		}
		apiError(w, appErr.Message, appErr.Code, appErr.Status)
		return
	}
	slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	apiError(w, "internal server error", apperr.CodeInternal, http.StatusInternalServerError)
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is required")
		case errors.As(err, &maxErr):
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid JSON body: %v", err)
	}
	if dec.More() {
		return apperr.Validation("request body must contain a single JSON object")
	}
	return nil
}

// pathID parses a numeric route variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return id, nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	apiError(w, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path), apperr.CodeNotFound, http.StatusNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apiError(w, "method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
