package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/apperr"
	"github.com/mauv0809/courtside/internal/identity"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
	ActorKey  ContextKey = "actor"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// ActorFromContext returns the caller set by the actor middleware, or an
// anonymous actor.
func ActorFromContext(r *http.Request) identity.Actor {
	actor, ok := r.Context().Value(ActorKey).(identity.Actor)
	if !ok {
		return identity.Anonymous()
	}
	return actor
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// writeError maps domain errors to their status code. Anything else is
// logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	var e *apperr.Error
	if status == http.StatusInternalServerError || !errors.As(err, &e) {
		log.Error("Request failed", "error", err, "method", r.Method, "url", r.URL.String())
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	log.Debug("Request rejected", "error", err, "code", e.Code)
	writeJSON(w, status, ErrorResponse{Error: e.Error(), Code: string(e.Code)})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation(apperr.CodeInvalidArgument, "invalid request body: %v", err)
	}
	return nil
}

// splitList parses a comma separated query parameter.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
