package graphics

import (
	"fmt"
	"image"
	"sync"
)

type imageKey struct {
	path string
	size int
}

var (
	imageCache = make(map[imageKey]*image.RGBA)
	cacheMutex sync.RWMutex
)

// GetImage returns a cached decoded image for the given path and size.
// Meshes sharing a texture file decode it once; each still owns its own
// GPU texture.
func GetImage(path string, size int) (*image.RGBA, error) {
	key := imageKey{path: path, size: size}

	cacheMutex.RLock()
	if img, ok := imageCache[key]; ok {
		cacheMutex.RUnlock()
		return img, nil
	}
	cacheMutex.RUnlock()

	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	// Double check locking
	if img, ok := imageCache[key]; ok {
		return img, nil
	}

	img, err := LoadImage(path, size)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}

	imageCache[key] = img
	return img, nil
}

// ClearImageCache drops every cached image
func ClearImageCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	clear(imageCache)
}
