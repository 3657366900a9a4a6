package mesh

import (
	"image"
	"image/color"

	"shadowmap/internal/graphics"
)

// DefaultTextureSize is the edge length of generated and rescaled textures
const DefaultTextureSize = 128

// Asset describes what a mesh loads at init: its geometry and its texture.
// Triangle and Cube differ only here.
type Asset struct {
	Name     string
	Geometry func() (Geometry, error)
	Texture  func() (*image.RGBA, error)
}

// TriangleAsset is the unit triangle with a warm top-to-bottom gradient
func TriangleAsset(textureSize int) Asset {
	return Asset{
		Name:     "triangle",
		Geometry: func() (Geometry, error) { return TriangleGeometry(), nil },
		Texture: func() (*image.RGBA, error) {
			return graphics.Gradient(textureSize,
				color.RGBA{250, 220, 160, 255},
				color.RGBA{230, 120, 40, 255}), nil
		},
	}
}

// CubeAsset is the unit cube with a cool checkerboard
func CubeAsset(textureSize int) Asset {
	return Asset{
		Name:     "cube",
		Geometry: func() (Geometry, error) { return CubeGeometry(), nil },
		Texture: func() (*image.RGBA, error) {
			return graphics.Checker(textureSize, 8,
				color.RGBA{40, 90, 200, 255},
				color.RGBA{200, 220, 250, 255}), nil
		},
	}
}

// WithTexturePath replaces the generated texture with an image file
func (a Asset) WithTexturePath(path string, size int) Asset {
	a.Texture = func() (*image.RGBA, error) {
		return graphics.GetImage(path, size)
	}
	return a
}
