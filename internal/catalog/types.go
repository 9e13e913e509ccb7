package catalog

import (
	"time"

	"photo-cull/internal/imagekind"
)

// ImageRecord describes one image surviving a scan. Identity is the
// absolute source path; two records are equal iff their paths are equal.
// Records are immutable after creation and replaced wholesale by the
// next scan.
type ImageRecord struct {
	Path    string         `json:"path"`
	Name    string         `json:"name"`
	Kind    imagekind.Kind `json:"kind"`
	Size    int64          `json:"size"`
	ModTime time.Time      `json:"modTime"`
}

// ScanProgress tracks the state of an in-flight scan.
type ScanProgress struct {
	Scanning  bool      `json:"scanning"`
	Fraction  float64   `json:"fraction"`
	FilesSeen int64     `json:"filesSeen"`
	StartedAt time.Time `json:"startedAt,omitempty"`
}
