package handlers

import (
	"image/jpeg"
	"net/http"

	"photo-cull/internal/logging"
)

const jpegQuality = 85

// GetThumbnail serves a cached-or-decoded thumbnail as JPEG. A failed
// decode answers 404; the client shows a placeholder.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	path, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	img, ok := h.lib.Loader().Thumbnail(path)
	if !ok {
		writeError(w, http.StatusNotFound, "thumbnail unavailable")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "max-age=3600")
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		logging.Error("failed to encode thumbnail for %s: %v", path, err)
	}
}

// GetFullImage serves a native-resolution decode as JPEG. Never
// cached server-side; every request re-decodes.
func (h *Handlers) GetFullImage(w http.ResponseWriter, r *http.Request) {
	path, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	img, ok := h.lib.Loader().FullImage(path)
	if !ok {
		writeError(w, http.StatusNotFound, "image unavailable")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		logging.Error("failed to encode image for %s: %v", path, err)
	}
}

// ClearThumbnailCache empties the thumbnail cache.
func (h *Handlers) ClearThumbnailCache(w http.ResponseWriter, r *http.Request) {
	h.lib.Loader().ClearCache()
	w.WriteHeader(http.StatusNoContent)
}
