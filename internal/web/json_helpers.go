package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

var marshalJSON = json.Marshal

// writeJSON writes data as a compact JSON document with no trailing newline.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := marshalJSON(data)
	if err != nil {
		slog.Error("encode json response", "error", err)
		writeEmpty(w, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("write json response", "error", err)
	}
}

func writeEmpty(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}
