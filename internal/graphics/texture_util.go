package graphics

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes an image file into RGBA. When size > 0 the image is
// rescaled to size x size so every texture uploads with the same dimensions.
func LoadImage(path string, size int) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return ToRGBA(img, size), nil
}

// ToRGBA converts img to RGBA, rescaling to size x size when size > 0
func ToRGBA(img image.Image, size int) *image.RGBA {
	if size <= 0 {
		rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
		stddraw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, stddraw.Src)
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	return rgba
}

// Checker builds a size x size checkerboard with cells squares per side
func Checker(size, cells int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if cells <= 0 {
		cells = 1
	}
	cell := size / cells
	if cell == 0 {
		cell = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, a)
			} else {
				img.SetRGBA(x, y, b)
			}
		}
	}
	return img
}

// Gradient builds a size x size vertical ramp, from on the top row to to on
// the bottom row
func Gradient(size int, from, to color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	span := size - 1
	if span < 1 {
		span = 1
	}
	lerp := func(a, b uint8, y int) uint8 {
		return uint8((int(a)*(span-y) + int(b)*y) / span)
	}
	for y := 0; y < size; y++ {
		c := color.RGBA{
			R: lerp(from.R, to.R, y),
			G: lerp(from.G, to.G, y),
			B: lerp(from.B, to.B, y),
			A: lerp(from.A, to.A, y),
		}
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
