package procedural

import (
	"image"
	"image/color"
	m "math"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var regular struct {
	once sync.Once
	font *truetype.Font
	err  error
}

func defaultFont() (*truetype.Font, error) {
	regular.once.Do(func() {
		regular.font, regular.err = freetype.ParseFont(goregular.TTF)
	})
	return regular.font, regular.err
}

// Text renders s in the Go regular face at size points on a transparent
// width x height canvas, starting at the left edge of the first line.
// Newlines start a new line.
func Text(width, height int, s string, size float64, fg color.Color) (*image.RGBA, error) {
	font, err := defaultFont()
	if err != nil {
		return nil, err
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(font)
	c.SetFontSize(size)
	c.SetClip(rgba.Bounds())
	c.SetDst(rgba)
	c.SetSrc(image.NewUniform(fg))

	line := int(c.PointToFixed(size) >> 6)
	y := line
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '\n' {
			continue
		}
		if _, err := c.DrawString(s[start:i], freetype.Pt(0, y)); err != nil {
			return nil, err
		}
		y += line + line/4
		start = i + 1
	}
	return rgba, nil
}

// DistanceField converts the alpha coverage of in into a signed distance
// field of radius spread, encoded as premultiplied white: 0.5 on the edge,
// 1 inside and 0 outside.
// http://www.valvesoftware.com/publications/2007/SIGGRAPH2007_AlphaTestedMagnification.pdf
func DistanceField(in *image.RGBA, spread int) *image.RGBA {
	b := in.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if spread < 1 {
		spread = 1
	}

	// create mask
	mask := make([][]bool, h)
	for y := 0; y < h; y++ {
		mask[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			_, _, _, a := in.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mask[y][x] = a >= 0x7fff
		}
	}

	// find signed distance
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, distanceToColor(signedDistance(x, y, spread, mask), spread))
		}
	}
	return out
}

func signedDistance(cx, cy, delta int, mask [][]bool) float64 {
	width, height := len(mask[0]), len(mask)
	base := mask[cy][cx]

	startX, endX := max(0, cx-delta), min(cx+delta, width-1)
	startY, endY := max(0, cy-delta), min(cy+delta, height-1)

	closest := delta * delta
	for y := startY; y <= endY; y++ {
		for x := startX; x <= endX; x++ {
			if base != mask[y][x] {
				if d := (cx-x)*(cx-x) + (cy-y)*(cy-y); d < closest {
					closest = d
				}
			}
		}
	}

	dist := m.Min(m.Sqrt(float64(closest)), float64(delta))
	if base {
		return dist
	}
	return -dist
}

func distanceToColor(distance float64, spread int) color.RGBA {
	c := uint8(m.Min(1, m.Max(0, 0.5+0.5*(distance/float64(spread)))) * 0xff)
	return color.RGBA{c, c, c, c}
}
