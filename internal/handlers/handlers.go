package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"photo-cull/internal/library"
	"photo-cull/internal/logging"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers serves the JSON/HTTP surface over a Library.
type Handlers struct {
	lib      *library.Library
	photoDir string
}

// New creates the handler set. photoDir bounds every path accepted
// from a request.
func New(lib *library.Library, photoDir string) *Handlers {
	return &Handlers{
		lib:      lib,
		photoDir: photoDir,
	}
}

// Router builds the HTTP route table.
func (h *Handlers) Router(metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.HealthCheck).Methods("GET")

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/images", h.ListImages).Methods("GET")
	api.HandleFunc("/thumbnail", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/image", h.GetFullImage).Methods("GET")

	api.HandleFunc("/rating", h.GetRating).Methods("GET")
	api.HandleFunc("/rating", h.SetRating).Methods("POST")
	api.HandleFunc("/rating", h.ClearRating).Methods("DELETE")

	api.HandleFunc("/categories", h.GetCategories).Methods("GET")
	api.HandleFunc("/categories", h.SetCategories).Methods("POST")
	api.HandleFunc("/categories/toggle", h.ToggleCategory).Methods("POST")

	api.HandleFunc("/attributes", h.ClearAllAttributes).Methods("DELETE")

	api.HandleFunc("/rescan", h.TriggerRescan).Methods("POST")
	api.HandleFunc("/scan/progress", h.GetScanProgress).Methods("GET")

	api.HandleFunc("/cache/clear", h.ClearThumbnailCache).Methods("POST")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/events", h.StreamEvents).Methods("GET")

	return r
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response: %v", err)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// resolvePath validates a client-supplied path: it must be inside the
// photo directory. Returns the absolute path.
func (h *Handlers) resolvePath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if abs != h.photoDir && !strings.HasPrefix(abs, h.photoDir+string(os.PathSeparator)) {
		return "", false
	}
	return abs, true
}

// requirePath pulls the path query parameter and validates it,
// answering the request itself when invalid.
func (h *Handlers) requirePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path, ok := h.resolvePath(r.URL.Query().Get("path"))
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid path")
		return "", false
	}
	return path, true
}
