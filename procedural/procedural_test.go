package procedural

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGBA{0xff, 0, 0, 0xff}
	blue = color.RGBA{0, 0, 0xff, 0xff}
)

func TestCheckerboard(t *testing.T) {
	img := Checkerboard(4, 4, 2, red, blue)

	tests := []struct {
		x, y     int
		expected color.RGBA
	}{
		{0, 0, red},
		{1, 1, red},
		{2, 0, blue},
		{0, 2, blue},
		{3, 3, red},
	}
	for _, c := range tests {
		if r := img.RGBAAt(c.x, c.y); r != c.expected {
			t.Errorf("(%d,%d): %v instead of %v", c.x, c.y, r, c.expected)
		}
	}
}

func TestSolid(t *testing.T) {
	img := Solid(3, 2, blue)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		assert.Equal(t, []byte{0, 0, 0xff, 0xff}, img.Pix[i:i+4])
	}
}

func TestNoise(t *testing.T) {
	a := Noise(16, 16, 4, 7)
	b := Noise(16, 16, 4, 7)
	c := Noise(16, 16, 4, 8)

	assert.Equal(t, a.Pix, b.Pix)
	assert.NotEqual(t, a.Pix, c.Pix)
	for i := 3; i < len(a.Pix); i += 4 {
		require.Equal(t, uint8(0xff), a.Pix[i])
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, expected int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {17, 32}, {1024, 1024},
	}
	for _, c := range tests {
		if r := NextPowerOfTwo(c.in); r != c.expected {
			t.Errorf("NextPowerOfTwo(%d) = %d instead of %d", c.in, r, c.expected)
		}
	}
}

func TestText(t *testing.T) {
	img, err := Text(64, 32, "Hi", 20, color.White)
	require.NoError(t, err)

	var covered int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			covered++
		}
	}
	assert.NotZero(t, covered)
}

func TestDistanceField(t *testing.T) {
	in := image.NewRGBA(image.Rect(0, 0, 9, 9))
	for y := 3; y < 6; y++ {
		for x := 3; x < 6; x++ {
			in.SetRGBA(x, y, color.RGBA{0xff, 0xff, 0xff, 0xff})
		}
	}

	out := DistanceField(in, 3)
	inside := out.RGBAAt(4, 4).A
	edge := out.RGBAAt(3, 3).A
	outside := out.RGBAAt(0, 0).A

	assert.Greater(t, inside, edge)
	assert.Greater(t, edge, outside)
	assert.Equal(t, uint8(0), outside)
}
