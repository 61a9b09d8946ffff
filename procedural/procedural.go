// Package procedural generates RGBA images for textures that are computed
// rather than loaded: placeholders, solid fills, noise and rendered text.
package procedural

import (
	"image"
	"image/color"
	"image/draw"
	m "math"
	"math/rand"
)

// Checkerboard alternates a and b in cells of cell pixels, a in the top left.
func Checkerboard(width, height, cell int, a, b color.Color) *image.RGBA {
	if cell < 1 {
		cell = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	ca, cb := color.RGBAModel.Convert(a), color.RGBAModel.Convert(b)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, ca)
			} else {
				img.Set(x, y, cb)
			}
		}
	}
	return img
}

func Solid(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// Noise is smooth value noise with one lattice point every scale pixels,
// greyscale and opaque. The same seed yields the same image.
func Noise(width, height int, scale float64, seed int64) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	r := rand.New(rand.NewSource(seed))

	lw := int(m.Ceil(float64(width)/scale)) + 2
	lh := int(m.Ceil(float64(height)/scale)) + 2
	lattice := make([]float64, lw*lh)
	for i := range lattice {
		lattice[i] = r.Float64()
	}
	at := func(x, y int) float64 { return lattice[y*lw+x] }

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		fy := float64(y) / scale
		y0 := int(fy)
		ty := smooth(fy - float64(y0))
		for x := 0; x < width; x++ {
			fx := float64(x) / scale
			x0 := int(fx)
			tx := smooth(fx - float64(x0))

			top := lerp(at(x0, y0), at(x0+1, y0), tx)
			bottom := lerp(at(x0, y0+1), at(x0+1, y0+1), tx)
			v := uint8(lerp(top, bottom, ty) * 0xff)

			i := img.PixOffset(x, y)
			img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 0xff
		}
	}
	return img
}

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}
