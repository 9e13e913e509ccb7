package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"photo-cull/internal/catalog"
	"photo-cull/internal/imagekind"
	"photo-cull/internal/library"
	"photo-cull/internal/store"
)

// imageResponse is an ImageRecord annotated with its attributes.
type imageResponse struct {
	catalog.ImageRecord
	Rating     int   `json:"rating"`
	Categories []int `json:"categories"`
}

// ListImages returns the collection, optionally filtered.
//
// Query parameters: minRating (int), unrated (bool), categories
// (comma-separated ids, all required), kind (raw|jpeg|png|heic|tiff).
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	opts, err := parseFilterOptions(r)
	if err != "" {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records := h.lib.Filter(opts)
	response := make([]imageResponse, 0, len(records))
	for _, rec := range records {
		response = append(response, imageResponse{
			ImageRecord: rec,
			Rating:      h.lib.Rating(rec.Path),
			Categories:  h.lib.Categories(rec.Path).IDs(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"images": response,
		"total":  len(response),
	})
}

func parseFilterOptions(r *http.Request) (library.FilterOptions, string) {
	var opts library.FilterOptions
	query := r.URL.Query()

	if v := query.Get("minRating"); v != "" {
		minRating, err := strconv.Atoi(v)
		if err != nil || minRating < 0 || minRating > store.MaxRating {
			return opts, "invalid minRating"
		}
		opts.MinRating = minRating
	}

	if v := query.Get("unrated"); v != "" {
		unrated, err := strconv.ParseBool(v)
		if err != nil {
			return opts, "invalid unrated"
		}
		opts.Unrated = unrated
	}

	if v := query.Get("categories"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || id < 0 || id >= store.NumCategories {
				return opts, "invalid categories"
			}
			opts.Categories = opts.Categories.With(id)
		}
	}

	if v := query.Get("kind"); v != "" {
		kind := imagekind.Kind(v)
		switch kind {
		case imagekind.KindRAW, imagekind.KindJPEG, imagekind.KindPNG,
			imagekind.KindHEIC, imagekind.KindTIFF, imagekind.KindOther:
			opts.Kind = kind
		default:
			return opts, "invalid kind"
		}
	}

	return opts, ""
}
