package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const msgDataNotAvailable = "Data not available"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInfo(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"info": msg})
}

// respond applies the standard envelope: a failed query is a 500, an empty
// collection is a 404, anything else is a 200 with the raw payload.
func (h *Handler) respond(w http.ResponseWriter, result any, count int, err error) {
	if err != nil {
		h.Logger.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, msgDataNotAvailable)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// intQuery parses an integer query parameter, falling back when absent or
// malformed.
func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// requiredIntQuery parses a required integer query parameter. ok is false
// when it is missing or malformed.
func requiredIntQuery(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
