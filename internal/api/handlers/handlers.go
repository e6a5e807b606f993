// Package handlers implements the HTTP endpoints for the finance, health,
// insight and receipt surfaces. Handlers hold their collaborators behind
// small interfaces so tests can swap in fakes.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/lifelens/lifelens/internal/api/middleware"
)

// queryInt parses an integer query parameter, returning def when absent
// or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryFloat parses a float query parameter, returning def when absent
// or malformed.
func queryFloat(r *http.Request, name string, def float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// requireQuery extracts a mandatory query parameter, writing a 400 response
// when missing.
func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		middleware.WriteError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return v, true
}
