package engine

import (
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microwerx/libxor/gl"
	"github.com/microwerx/libxor/gl/headless"
)

func TestTexturePendingUsesPlaceholder(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	fx.fetch.put("bricks.png", encodePNG(t, filled(4, 4, color.RGBA{0, 0, 255, 255})))

	ts := fx.ctx.Textures
	ts.Load("bricks", "bricks.png")

	// nothing applied before Update
	got := ts.Get("bricks")
	require.NotNil(t, got)
	assert.Equal(t, ts.Placeholder(), got)
	assert.True(t, ts.Placeholder().Handle.Valid())

	bound := ts.Bind("bricks", 3)
	assert.Equal(t, ts.Placeholder().Handle, fx.gl.BoundTexture(3, gl.TEXTURE_2D))
	assert.Equal(t, ts.Placeholder(), bound)
	assert.False(t, ts.Loaded())

	fx.flush(t)

	got = ts.Get("bricks")
	require.NotNil(t, got)
	assert.NotEqual(t, ts.Placeholder().Handle, got.Handle)
	assert.False(t, got.Placeholder())
	assert.Equal(t, LoadReady, got.State)
	assert.Equal(t, 4, got.Width)
	assert.True(t, ts.Loaded())
	assert.Equal(t, 100.0, ts.PercentLoaded())

	info, ok := fx.gl.Texture(got.Handle)
	require.True(t, ok)
	assert.Equal(t, gl.Enum(gl.TEXTURE_2D), info.Target)
	assert.True(t, info.Mipmaps)
	assert.Equal(t, []byte{0, 0, 255, 255}, info.Images[gl.TEXTURE_2D].Data[:4])
}

func TestTextureLoadIdempotent(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	fx.fetch.put("a.png", encodePNG(t, filled(2, 2, color.RGBA{255, 0, 0, 255})))

	before, _, _, _ := fx.gl.Live()
	fx.ctx.Textures.Load("a", "a.png")
	fx.ctx.Textures.Load("a", "a.png")
	fx.ctx.Textures.Load("a", "other.png")
	fx.flush(t)
	after, _, _, _ := fx.gl.Live()

	assert.Equal(t, 1, fx.fetch.count("a.png"))
	assert.Equal(t, 0, fx.fetch.count("other.png"))
	assert.Equal(t, 1, after-before)
	assert.Equal(t, []string{"a"}, fx.ctx.Textures.Names())
}

func TestTextureFetch404(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	fx := newFixture(t, headless.DefaultConfig(), WithFetcher(&HTTPFetcher{Base: srv.URL + "/"}))
	msgs := make(chan interface{}, 4)
	fx.ctx.OnLoad().Subscribe(msgs, PriorityNormal)

	ts := fx.ctx.Textures
	ts.Load("tex1", "missing.png")
	fx.flush(t)

	tex := ts.Get("tex1")
	require.NotNil(t, tex)
	assert.Equal(t, LoadFailed, tex.State)
	assert.True(t, tex.Placeholder())
	assert.Equal(t, ts.Placeholder().Handle, tex.Handle)
	assert.True(t, ts.Failed())
	assert.True(t, ts.Loaded())
	assert.Contains(t, ts.Err("tex1").Error(), "404")

	ts.Bind("tex1", 0)
	assert.Equal(t, ts.Placeholder().Handle, fx.gl.BoundTexture(0, gl.TEXTURE_2D))

	m := (<-msgs).(MessageLoaded)
	assert.Equal(t, KindTexture, m.Kind)
	assert.Equal(t, "tex1", m.Name)
	assert.Error(t, m.Err)
}

func TestTextureUndecodable(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	fx.fetch.put("junk.png", []byte("not an image"))

	fx.ctx.Textures.Load("junk", "junk.png")
	fx.flush(t)

	assert.True(t, fx.ctx.Textures.Get("junk").Placeholder())
	assert.Contains(t, fx.ctx.Textures.Err("junk").Error(), "decode")
}

func TestTextureCubeStrip(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())

	// six 2x2 faces, the red channel numbers them
	strip := image.NewRGBA(image.Rect(0, 0, 12, 2))
	for x := 0; x < 12; x++ {
		for y := 0; y < 2; y++ {
			strip.Set(x, y, color.RGBA{uint8(x / 2), 0, 0, 255})
		}
	}
	fx.fetch.put("sky.png", encodePNG(t, strip))

	fx.ctx.Textures.Load("sky", "sky.png")
	fx.flush(t)

	tex := fx.ctx.Textures.Get("sky")
	require.NotNil(t, tex)
	assert.Equal(t, TextureCube, tex.Kind)
	assert.Equal(t, 2, tex.Width)
	assert.Equal(t, 2, tex.Height)
	assert.Equal(t, WrapClamp, tex.Wrap)

	info, ok := fx.gl.Texture(tex.Handle)
	require.True(t, ok)
	assert.Equal(t, gl.Enum(gl.TEXTURE_CUBE_MAP), info.Target)
	require.Len(t, info.Images, 6)
	for i, face := range gl.CubeFaces {
		img := info.Images[face]
		assert.Equal(t, 2, img.Width)
		assert.Equal(t, uint8(i), img.Data[0], "face %d", i)
	}
	assert.Equal(t, float32(gl.CLAMP_TO_EDGE), info.Params[gl.TEXTURE_WRAP_R])

	fx.ctx.Textures.Bind("sky", 1)
	assert.Equal(t, tex.Handle, fx.gl.BoundTexture(1, gl.TEXTURE_CUBE_MAP))
}

func TestTextureNotAStrip(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	tex := fx.ctx.Textures.FromImage(filled(10, 2, color.RGBA{A: 255}))
	assert.Equal(t, Texture2D, tex.Kind)
	assert.Equal(t, 10, tex.Width)
}

func TestTextureAnisotropy(t *testing.T) {
	tests := []struct {
		name   string
		cfg    func() headless.Config
		level  float32
		want   float32
		hasAni bool
	}{
		{"clamped", func() headless.Config {
			cfg := headless.DefaultConfig()
			cfg.MaxAnisotropy = 8
			return cfg
		}, 32, 8, true},
		{"requested", headless.DefaultConfig, 4, 4, true},
		{"disabled", headless.DefaultConfig, 1, 0, false},
		{"unsupported", func() headless.Config {
			cfg := headless.DefaultConfig()
			cfg.Extensions = nil
			return cfg
		}, 4, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, tt.cfg(), WithAnisotropy(tt.level))
			tex := fx.ctx.Textures.FromImage(filled(2, 2, color.RGBA{A: 255}))

			info, _ := fx.gl.Texture(tex.Handle)
			got, ok := info.Params[gl.TEXTURE_MAX_ANISOTROPY_EXT]
			assert.Equal(t, tt.hasAni, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextureUploadRestoresBinding(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	ts := fx.ctx.Textures

	ts.Set("red", ts.FromImage(filled(2, 2, color.RGBA{R: 255, A: 255})))
	bound := ts.Bind("red", 0)
	ts.FromImage(filled(2, 2, color.RGBA{A: 255}))

	assert.Equal(t, bound.Handle, fx.gl.BoundTexture(0, gl.TEXTURE_2D))
}

func TestCreateFromImageData(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	ts := fx.ctx.Textures

	err := ts.CreateFromImageData("bad", make([]byte, 15), 2, 2)
	assert.ErrorIs(t, err, ErrBadPixels)
	err = ts.CreateFromImageData("bad", nil, 0, 2)
	assert.ErrorIs(t, err, ErrBadPixels)
	assert.Nil(t, ts.Get("bad"))

	pix := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	require.NoError(t, ts.CreateFromImageData("generated", pix, 2, 2))
	pix[0] = 99 // the caller may reuse its buffer

	assert.Equal(t, ts.Placeholder(), ts.Get("generated"))
	fx.flush(t)

	tex := ts.Get("generated")
	require.NotNil(t, tex)
	assert.Equal(t, LoadReady, tex.State)
	info, _ := fx.gl.Texture(tex.Handle)
	assert.Equal(t, byte(1), info.Images[gl.TEXTURE_2D].Data[0])

	// replacing ready data keeps drawing the old image until the upload lands
	old := tex.Handle
	require.NoError(t, ts.CreateFromImageData("generated", make([]byte, 16), 2, 2))
	assert.Equal(t, old, ts.Get("generated").Handle)
	fx.flush(t)
	assert.NotEqual(t, old, ts.Get("generated").Handle)
	_, live := fx.gl.Texture(old)
	assert.False(t, live)
}

// Uploads queued back to back for one name land in call order, whichever
// goroutine finishes first. Run with -cpu 4 to shake the scheduling.
func TestCreateFromImageDataLastWins(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	ts := fx.ctx.Textures
	ts.Set("gen", ts.FromImage(filled(2, 2, color.RGBA{G: 255, A: 255})))

	small := filled(1, 1, color.RGBA{R: 255, A: 255})
	large := filled(256, 256, color.RGBA{B: 255, A: 255})
	for i := 0; i < 20; i++ {
		before := ts.Get("gen").Handle
		require.NoError(t, ts.CreateFromImageData("gen", small.Pix, 1, 1))
		require.NoError(t, ts.CreateFromImageData("gen", large.Pix, 256, 256))
		assert.Equal(t, before, ts.Get("gen").Handle, "ready texture stays until the upload lands")

		fx.flush(t)
		tex := ts.Get("gen")
		require.Equal(t, 256, tex.Width, "round %d", i)
		info, _ := fx.gl.Texture(tex.Handle)
		assert.Equal(t, byte(255), info.Images[gl.TEXTURE_2D].Data[2])
		assert.Equal(t, LoadReady, tex.State)
	}
	assert.True(t, ts.Loaded())

	// superseded uploads leave no gpu objects behind
	textures, _, _, _ := fx.gl.Live()
	assert.Equal(t, 3, textures) // placeholder, white, gen
}

func TestTextureSetReplaces(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	ts := fx.ctx.Textures

	first := ts.FromImage(filled(2, 2, color.RGBA{R: 255, A: 255}))
	ts.Set("t", first)
	second := ts.FromImage(filled(2, 2, color.RGBA{G: 255, A: 255}))
	ts.Set("t", second)

	_, live := fx.gl.Texture(first.Handle)
	assert.False(t, live)
	assert.Equal(t, second, ts.Get("t"))

	ts.Delete("t")
	assert.Nil(t, ts.Get("t"))
	_, live = fx.gl.Texture(second.Handle)
	assert.False(t, live)
}

func TestTextureFilterWrap(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	ts := fx.ctx.Textures
	ts.Set("t", ts.FromImage(filled(2, 2, color.RGBA{A: 255})))

	assert.True(t, ts.SetFilter("t", FilterNearest))
	assert.True(t, ts.SetWrap("t", WrapMirror))
	assert.False(t, ts.SetFilter("missing", FilterLinear))

	info, _ := fx.gl.Texture(ts.Get("t").Handle)
	assert.Equal(t, float32(gl.NEAREST), info.Params[gl.TEXTURE_MIN_FILTER])
	assert.Equal(t, float32(gl.NEAREST), info.Params[gl.TEXTURE_MAG_FILTER])
	assert.Equal(t, float32(gl.MIRRORED_REPEAT), info.Params[gl.TEXTURE_WRAP_S])
}

func TestTextureUnbindAll(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	ts := fx.ctx.Textures

	ts.Bind("a", 0)
	ts.Bind("b", 2)
	ts.UnbindAll()

	assert.Equal(t, gl.NoTexture, fx.gl.BoundTexture(0, gl.TEXTURE_2D))
	assert.Equal(t, gl.NoTexture, fx.gl.BoundTexture(2, gl.TEXTURE_2D))
	assert.Equal(t, 0, fx.gl.ActiveUnit())
	assert.Equal(t, -1, ts.Placeholder().Unit)
}

func TestTextureDeleteWhilePending(t *testing.T) {
	fx := newFixture(t, headless.DefaultConfig())
	fx.fetch.put("a.png", encodePNG(t, filled(2, 2, color.RGBA{A: 255})))

	before, _, _, _ := fx.gl.Live()
	fx.ctx.Textures.Load("a", "a.png")
	fx.ctx.Textures.Delete("a")
	fx.flush(t)
	after, _, _, _ := fx.gl.Live()

	assert.Nil(t, fx.ctx.Textures.Get("a"))
	assert.Equal(t, before, after)
}
