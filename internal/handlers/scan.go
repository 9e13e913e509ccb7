package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"photo-cull/internal/logging"
	"photo-cull/internal/startup"
)

// TriggerRescan starts an asynchronous rescan.
func (h *Handlers) TriggerRescan(w http.ResponseWriter, r *http.Request) {
	h.lib.Rescan()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scan started"})
}

// GetScanProgress reports the state of the current scan.
func (h *Handlers) GetScanProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lib.ScanProgress())
}

// GetStats returns the library summary.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lib.Stats())
}

// HealthCheck answers readiness and general health probes.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": startup.Version,
		"images":  len(h.lib.Images()),
	})
}

// LivenessCheck answers liveness probes.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// StreamEvents streams library change notifications as server-sent
// events until the client disconnects.
func (h *Handlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events := h.lib.Subscribe()
	defer h.lib.Unsubscribe(events)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				logging.Error("failed to encode event: %v", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
