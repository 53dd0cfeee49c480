package apitest

import (
	"encoding/json"
	"net/http"
)

// naiveLayout is how the service renders timestamps: ISO-8601 without an offset.
const naiveLayout = "2006-01-02T15:04:05.000000"

type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDetail writes the {"detail": "..."} error envelope.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeFieldErrors writes a 422 with a list of field errors.
func writeFieldErrors(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string][]fieldError{"detail": errs})
}

// decodeJSON decodes the request body into dest. On failure it writes a 422 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeFieldErrors(w, []fieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error.jsondecode"}})
		return false
	}
	return true
}
