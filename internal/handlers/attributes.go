package handlers

import (
	"encoding/json"
	"net/http"

	"photo-cull/internal/store"
)

type ratingRequest struct {
	Path   string `json:"path"`
	Rating int    `json:"rating"`
}

type categoriesRequest struct {
	Path string `json:"path"`
	IDs  []int  `json:"ids"`
}

type toggleRequest struct {
	Path string `json:"path"`
	ID   int    `json:"id"`
}

// GetRating returns the rating for one path.
func (h *Handlers) GetRating(w http.ResponseWriter, r *http.Request) {
	path, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":   path,
		"rating": h.lib.Rating(path),
	})
}

// SetRating assigns a rating. Rating 0 clears.
func (h *Handlers) SetRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path, ok := h.resolvePath(req.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid path")
		return
	}
	if req.Rating < 0 || req.Rating > store.MaxRating {
		writeError(w, http.StatusBadRequest, "rating out of range")
		return
	}

	h.lib.SetRating(path, req.Rating)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":   path,
		"rating": h.lib.Rating(path),
	})
}

// ClearRating removes the rating for one path.
func (h *Handlers) ClearRating(w http.ResponseWriter, r *http.Request) {
	path, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	h.lib.ClearRating(path)
	w.WriteHeader(http.StatusNoContent)
}

// GetCategories returns the category ids for one path.
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	path, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":       path,
		"categories": h.lib.Categories(path).IDs(),
	})
}

// SetCategories replaces the category set for one path. An empty or
// absent ids list clears it.
func (h *Handlers) SetCategories(w http.ResponseWriter, r *http.Request) {
	var req categoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path, ok := h.resolvePath(req.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid path")
		return
	}
	for _, id := range req.IDs {
		if id < 0 || id >= store.NumCategories {
			writeError(w, http.StatusBadRequest, "category id out of range")
			return
		}
	}

	h.lib.SetCategories(path, store.NewCategorySet(req.IDs...))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":       path,
		"categories": h.lib.Categories(path).IDs(),
	})
}

// ToggleCategory flips one category id for one path.
func (h *Handlers) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path, ok := h.resolvePath(req.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid path")
		return
	}
	if req.ID < 0 || req.ID >= store.NumCategories {
		writeError(w, http.StatusBadRequest, "category id out of range")
		return
	}

	set := h.lib.ToggleCategory(path, req.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":       path,
		"categories": set.IDs(),
	})
}

// ClearAllAttributes removes every rating and category.
func (h *Handlers) ClearAllAttributes(w http.ResponseWriter, r *http.Request) {
	h.lib.ClearAllAttributes()
	w.WriteHeader(http.StatusNoContent)
}
