//go:build !cgo

package thumbs

import (
	"fmt"
	"image"
)

// InitVips reports libvips as unavailable when built without cgo;
// callers fall back to the pure-Go decode chain.
func InitVips() error {
	return fmt.Errorf("libvips not available: built without cgo")
}

// ShutdownVips is a no-op when built without cgo.
func ShutdownVips() {}

// IsVipsAvailable returns whether libvips is initialized and available.
func IsVipsAvailable() bool {
	return false
}

func loadImageWithVips(path string, targetWidth, targetHeight int) (image.Image, error) {
	return nil, fmt.Errorf("libvips not available")
}
