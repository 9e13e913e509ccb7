package imagekind

import (
	"path/filepath"
	"strings"
)

// Kind classifies an image file by its extension.
type Kind string

const (
	// KindRAW is a camera raw file (CR2, NEF, ARW, ...).
	KindRAW Kind = "raw"
	// KindJPEG is a JPEG file.
	KindJPEG Kind = "jpeg"
	// KindPNG is a PNG file.
	KindPNG Kind = "png"
	// KindHEIC is a HEIC/HEIF file.
	KindHEIC Kind = "heic"
	// KindTIFF is a TIFF file.
	KindTIFF Kind = "tiff"
	// KindOther is any file that is not a recognized image format.
	KindOther Kind = "other"
)

// RawExtensions maps camera raw file extensions to whether they are supported.
var RawExtensions = map[string]bool{
	".cr2": true, ".cr3": true, ".nef": true, ".arw": true,
	".dng": true, ".raf": true, ".orf": true, ".rw2": true,
	".pef": true, ".srw": true, ".nrw": true, ".raw": true,
	".rwl": true, ".iiq": true, ".3fr": true, ".fff": true,
	".dcr": true, ".kdc": true, ".erf": true, ".mef": true,
	".mos": true, ".mrw": true, ".ptx": true, ".r3d": true,
}

// StandardExtensions maps standard image file extensions to whether they are supported.
var StandardExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".heic": true, ".heif": true, ".tif": true, ".tiff": true,
}

// Detect returns the Kind for a file name by case-insensitive extension
// lookup. Unknown extensions classify as KindOther; Detect never fails.
func Detect(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))

	if RawExtensions[ext] {
		return KindRAW
	}

	switch ext {
	case ".jpg", ".jpeg":
		return KindJPEG
	case ".png":
		return KindPNG
	case ".heic", ".heif":
		return KindHEIC
	case ".tif", ".tiff":
		return KindTIFF
	}
	return KindOther
}

// IsSupported reports whether a file name has a recognized image extension.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return RawExtensions[ext] || StandardExtensions[ext]
}
