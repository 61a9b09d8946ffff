package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/microwerx/libxor/gl"
	"github.com/microwerx/libxor/procedural"
)

type TextureKind int

const (
	Texture2D TextureKind = iota
	TextureCube
)

func (k TextureKind) target() gl.Enum {
	if k == TextureCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func (k TextureKind) binding() gl.Enum {
	if k == TextureCube {
		return gl.TEXTURE_BINDING_CUBE_MAP
	}
	return gl.TEXTURE_BINDING_2D
}

type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterNearestMipmap
	FilterLinearMipmap
)

type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClamp
	WrapMirror
)

type Texture struct {
	Name   string
	URL    string // empty for generated textures
	Kind   TextureKind
	Handle gl.Texture
	Filter Filter
	Wrap   Wrap

	Width, Height int
	Unit          int // last bound unit, -1 when unbound
	State         LoadState

	shared bool // Handle belongs to the placeholder
}

// Placeholder reports whether t draws with the placeholder image.
func (t *Texture) Placeholder() bool { return t.shared }

// image data prepared off the render thread
type pixels struct {
	kind          TextureKind
	width, height int
	faces         [][]byte
}

// TextureSystem maps names to textures. Pending and failed names resolve to
// the placeholder so that draws never see an invalid handle.
type TextureSystem struct {
	ctx *Context
	log *log.Entry

	textures map[string]*Texture
	loads    *LoadSet
	bound    map[int]*Texture
	gens     map[string]uint64 // newest request per name, only it may land

	placeholder *Texture
	white       *Texture
}

func newTextureSystem(c *Context) *TextureSystem {
	s := &TextureSystem{
		ctx:      c,
		log:      c.log.WithField("system", "texture"),
		textures: map[string]*Texture{},
		loads:    NewLoadSet(),
		bound:    map[int]*Texture{},
		gens:     map[string]uint64{},
	}

	s.placeholder = s.FromImage(procedural.Checkerboard(2, 2, 1,
		color.RGBA{0xff, 0x00, 0xff, 0xff}, color.RGBA{0x20, 0x20, 0x20, 0xff}))
	s.placeholder.Name = "placeholder"
	s.placeholder.Filter = FilterNearest
	s.apply(s.placeholder)

	s.white = s.FromImage(procedural.Solid(1, 1, color.White))
	s.white.Name = "white"
	return s
}

// Placeholder is the 2x2 checkerboard standing in for unavailable textures.
func (s *TextureSystem) Placeholder() *Texture { return s.placeholder }

func (s *TextureSystem) White() *Texture { return s.white }

// Load registers an asynchronous load of url under name. Known names are
// left alone.
func (s *TextureSystem) Load(name, url string) {
	if _, found := s.textures[name]; found {
		return
	}
	if !s.loads.Add(name) {
		return
	}
	entry := s.pending(name, url)
	gen := s.request(name)

	s.ctx.spawn(func(ctx context.Context) func() {
		data, err := s.ctx.fetcher.Fetch(ctx, url)
		var px *pixels
		if err == nil {
			px, err = decode(data)
			err = errors.Wrapf(err, "decode %q", url)
		}
		return func() { s.finish(entry, gen, px, err) }
	})
}

// CreateFromImageData registers width*height RGBA pixels under name. The
// upload goes through the same path as Load and lands on the next Update.
// A ready texture keeps drawing until then; when several calls are in
// flight for one name, the last one wins.
func (s *TextureSystem) CreateFromImageData(name string, pix []byte, width, height int) error {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return errors.Wrapf(ErrBadPixels, "%s: %d bytes for %dx%d", name, len(pix), width, height)
	}

	img := &image.RGBA{
		Pix:    append([]byte(nil), pix...),
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	s.loads.Reset(name)
	entry, found := s.textures[name]
	if !found || entry.State != LoadReady {
		entry = s.pending(name, "")
	}
	gen := s.request(name)

	s.ctx.spawn(func(ctx context.Context) func() {
		px := prepare(img)
		return func() { s.finish(entry, gen, px, nil) }
	})
	return nil
}

// request starts a new generation for name, outdating earlier requests.
func (s *TextureSystem) request(name string) uint64 {
	s.gens[name]++
	return s.gens[name]
}

func (s *TextureSystem) pending(name, url string) *Texture {
	t := &Texture{
		Name:   name,
		URL:    url,
		Handle: s.placeholder.Handle,
		Filter: FilterLinearMipmap,
		Wrap:   WrapRepeat,
		Width:  s.placeholder.Width,
		Height: s.placeholder.Height,
		Unit:   -1,
		State:  LoadPending,
		shared: true,
	}
	s.replace(name, t)
	return t
}

// finish runs on the render thread once the data of request gen is
// available.
func (s *TextureSystem) finish(entry *Texture, gen uint64, px *pixels, err error) {
	if s.gens[entry.Name] != gen {
		// deleted, set or requested again meanwhile
		return
	}
	name := entry.Name

	if err != nil {
		entry.State = LoadFailed
		s.loads.Done(name, err)
		s.log.WithError(err).WithField("texture", name).Warn("load failed, using placeholder")
		s.ctx.onLoad.Publish(MessageLoaded{Kind: KindTexture, Name: name, Err: err})
		return
	}

	t := s.upload(px)
	t.Name, t.URL = name, entry.URL
	t.Filter, t.Wrap = entry.Filter, entry.Wrap
	if t.Kind == TextureCube {
		t.Wrap = WrapClamp
	}
	s.apply(t)
	s.replace(name, t)

	s.loads.Done(name, nil)
	s.log.WithFields(log.Fields{
		"texture": name,
		"width":   t.Width,
		"height":  t.Height,
		"cube":    t.Kind == TextureCube,
	}).Info("texture loaded")
	s.ctx.onLoad.Publish(MessageLoaded{Kind: KindTexture, Name: name})
}

// replace registers t under name and deletes the gpu object it supersedes.
func (s *TextureSystem) replace(name string, t *Texture) {
	if old, found := s.textures[name]; found && old != t {
		s.release(old)
	}
	s.textures[name] = t
}

func (s *TextureSystem) release(t *Texture) {
	for unit, b := range s.bound {
		if b == t {
			delete(s.bound, unit)
		}
	}
	if !t.shared && t.Handle.Valid() && !t.Handle.Equal(s.placeholder.Handle) {
		s.ctx.gl.DeleteTexture(t.Handle)
	}
}

// Get returns the texture registered under name, the placeholder while it is
// pending, or nil for unknown names.
func (s *TextureSystem) Get(name string) *Texture {
	t, found := s.textures[name]
	if !found {
		return nil
	}
	if t.State == LoadPending {
		return s.placeholder
	}
	return t
}

// Set registers a texture created elsewhere, typically by FromImage.
func (s *TextureSystem) Set(name string, t *Texture) {
	s.request(name)
	t.Name = name
	t.State = LoadReady
	s.replace(name, t)
	if _, found := s.loads.State(name); found {
		s.loads.Done(name, nil)
	}
}

// FromImage uploads img synchronously as an unregistered texture. Images six
// times wider than high become cube maps.
func (s *TextureSystem) FromImage(img image.Image) *Texture {
	t := s.upload(prepare(img))
	t.Filter = FilterLinearMipmap
	if t.Kind == TextureCube {
		t.Wrap = WrapClamp
	}
	s.apply(t)
	return t
}

func decode(data []byte) (*pixels, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return prepare(img), nil
}

// prepare converts img to tightly packed RGBA. A horizontal strip whose
// width is exactly six times its height is cut into the cube faces
// +X -X +Y -Y +Z -Z, left to right. The layout is assumed, not verified.
func prepare(img image.Image) *pixels {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if h > 0 && w == 6*h {
		px := &pixels{kind: TextureCube, width: h, height: h}
		for i := 0; i < 6; i++ {
			face := image.NewRGBA(image.Rect(0, 0, h, h))
			draw.Draw(face, face.Bounds(), img, image.Pt(b.Min.X+i*h, b.Min.Y), draw.Src)
			px.faces = append(px.faces, face.Pix)
		}
		return px
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*w || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return &pixels{kind: Texture2D, width: w, height: h, faces: [][]byte{rgba.Pix}}
}

// upload creates a new gpu texture from px, restoring the binding of the
// active unit afterwards.
func (s *TextureSystem) upload(px *pixels) *Texture {
	f := s.ctx.gl
	target := px.kind.target()

	t := &Texture{
		Kind:   px.kind,
		Handle: f.CreateTexture(),
		Width:  px.width,
		Height: px.height,
		Unit:   -1,
		State:  LoadReady,
	}

	prev := gl.Texture(f.GetBinding(px.kind.binding()))
	f.BindTexture(target, t.Handle)
	for i, face := range px.faces {
		img := gl.Enum(gl.TEXTURE_2D)
		if px.kind == TextureCube {
			img = gl.CubeFaces[i]
		}
		f.TexImage2D(img, 0, gl.RGBA, px.width, px.height, gl.RGBA, gl.UNSIGNED_BYTE, face)
	}
	f.GenerateMipmap(target)
	f.BindTexture(target, prev)
	return t
}

func (filter Filter) params() (minify, magnify int) {
	switch filter {
	case FilterNearest:
		return gl.NEAREST, gl.NEAREST
	case FilterLinear:
		return gl.LINEAR, gl.LINEAR
	case FilterNearestMipmap:
		return gl.NEAREST_MIPMAP_NEAREST, gl.NEAREST
	default:
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	}
}

func (wrap Wrap) param() int {
	switch wrap {
	case WrapClamp:
		return gl.CLAMP_TO_EDGE
	case WrapMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

// apply pushes filter, wrap and anisotropy of t to its gpu object.
func (s *TextureSystem) apply(t *Texture) {
	if t.shared {
		return
	}
	f := s.ctx.gl
	target := t.Kind.target()

	prev := gl.Texture(f.GetBinding(t.Kind.binding()))
	f.BindTexture(target, t.Handle)

	minify, magnify := t.Filter.params()
	f.TexParameteri(target, gl.TEXTURE_MIN_FILTER, minify)
	f.TexParameteri(target, gl.TEXTURE_MAG_FILTER, magnify)

	wrap := t.Wrap.param()
	f.TexParameteri(target, gl.TEXTURE_WRAP_S, wrap)
	f.TexParameteri(target, gl.TEXTURE_WRAP_T, wrap)
	if t.Kind == TextureCube {
		f.TexParameteri(target, gl.TEXTURE_WRAP_R, wrap)
	}

	if caps := s.ctx.caps; caps.Anisotropic && s.ctx.anisotropy > 1 {
		level := s.ctx.anisotropy
		if level > caps.MaxAnisotropy {
			level = caps.MaxAnisotropy
		}
		f.TexParameterf(target, gl.TEXTURE_MAX_ANISOTROPY_EXT, level)
	}

	f.BindTexture(target, prev)
}

func (s *TextureSystem) SetFilter(name string, filter Filter) bool {
	t, found := s.textures[name]
	if !found {
		return false
	}
	t.Filter = filter
	s.apply(t)
	return true
}

func (s *TextureSystem) SetWrap(name string, wrap Wrap) bool {
	t, found := s.textures[name]
	if !found {
		return false
	}
	t.Wrap = wrap
	s.apply(t)
	return true
}

// Bind makes the texture under name, or the placeholder, current on unit.
func (s *TextureSystem) Bind(name string, unit int) *Texture {
	t := s.Get(name)
	if t == nil {
		s.log.WithField("texture", name).Debug("unknown texture, binding placeholder")
		t = s.placeholder
	}
	f := s.ctx.gl
	if prev, found := s.bound[unit]; found && prev.Kind != t.Kind {
		f.ActiveTexture(gl.TEXTURE0 + gl.Enum(unit))
		f.BindTexture(prev.Kind.target(), gl.NoTexture)
	}
	f.ActiveTexture(gl.TEXTURE0 + gl.Enum(unit))
	f.BindTexture(t.Kind.target(), t.Handle)
	t.Unit = unit
	s.bound[unit] = t
	return t
}

func (s *TextureSystem) Unbind(unit int) {
	t, found := s.bound[unit]
	if !found {
		return
	}
	f := s.ctx.gl
	f.ActiveTexture(gl.TEXTURE0 + gl.Enum(unit))
	f.BindTexture(t.Kind.target(), gl.NoTexture)
	if t.Unit == unit {
		t.Unit = -1
	}
	delete(s.bound, unit)
}

// UnbindAll releases every unit bound through Bind.
func (s *TextureSystem) UnbindAll() {
	if len(s.bound) == 0 {
		return
	}
	units := make([]int, 0, len(s.bound))
	for unit := range s.bound {
		units = append(units, unit)
	}
	sort.Ints(units)
	for _, unit := range units {
		s.Unbind(unit)
	}
	s.ctx.gl.ActiveTexture(gl.TEXTURE0)
}

func (s *TextureSystem) Delete(name string) {
	t, found := s.textures[name]
	if !found {
		return
	}
	s.request(name)
	s.release(t)
	delete(s.textures, name)
	s.loads.Remove(name)
}

func (s *TextureSystem) Names() []string {
	return sortedKeys(s.textures)
}

func (s *TextureSystem) Loaded() bool           { return s.loads.Loaded() }
func (s *TextureSystem) Failed() bool           { return s.loads.Failed() }
func (s *TextureSystem) PercentLoaded() float64 { return s.loads.PercentLoaded() }

// Err returns the load failure recorded for name.
func (s *TextureSystem) Err(name string) error { return s.loads.Err(name) }

func (s *TextureSystem) Close() {
	for name, t := range s.textures {
		s.release(t)
		delete(s.textures, name)
	}
	f := s.ctx.gl
	f.DeleteTexture(s.placeholder.Handle)
	f.DeleteTexture(s.white.Handle)
	s.bound = map[int]*Texture{}
}
