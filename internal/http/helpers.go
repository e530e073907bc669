package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/scorekeeper/internal/schema"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps a service error to a status code. Validation
// failures are the caller's fault, everything else is ours.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schema.ErrMissingDeltas), errors.Is(err, schema.ErrDuplicateDelta):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, schema.ErrTooManyPlayers):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("missing request body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// idParam parses a positive int64 route parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// nameFromBody reads a {"name": ...} body. Names are trimmed and must not be empty.
func nameFromBody(r *http.Request) (string, error) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", errors.New("name must not be empty")
	}
	return name, nil
}
