package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/microwerx/libxor/gl"
)

type PipelineState int

const (
	PipelineUninitialized PipelineState = iota
	PipelineCompiling
	PipelineUsable
	PipelineFailed
)

func (s PipelineState) String() string {
	switch s {
	case PipelineUninitialized:
		return "uninitialized"
	case PipelineCompiling:
		return "compiling"
	case PipelineUsable:
		return "usable"
	case PipelineFailed:
		return "failed"
	}
	return "unknown"
}

// TextureBinding feeds the texture Texture to the sampler uniform Sampler.
type TextureBinding struct {
	Texture string
	Sampler string
}

// Pipeline is a shader program plus the fixed state it draws with.
type Pipeline struct {
	Name           string
	VertexURL      string
	FragmentURL    string
	VertexSource   string
	FragmentSource string

	DepthTest          bool
	WriteTo            string // render target name, "" for the screen
	ClearOnWrite       bool
	ClearColor         mgl32.Vec4
	DisableColorWrites bool
	ReadFrom           []string
	Textures           []TextureBinding // bound to units 0..n-1 in order

	state    PipelineState
	program  gl.Program
	uniforms map[string]gl.Uniform
	err      error
	gen      uint64 // newest fetch, older ones are dropped

	gl  gl.Functions
	log *log.Entry
}

func (p *Pipeline) State() PipelineState { return p.state }
func (p *Pipeline) Usable() bool         { return p.state == PipelineUsable }
func (p *Pipeline) Program() gl.Program  { return p.program }

// Err is the last fetch or compile error.
func (p *Pipeline) Err() error { return p.err }

func (p *Pipeline) SetSources(vertex, fragment string) {
	p.VertexSource, p.FragmentSource = vertex, fragment
}

func (p *Pipeline) AddTexture(texture, sampler string) {
	p.Textures = append(p.Textures, TextureBinding{Texture: texture, Sampler: sampler})
}

// Compile builds the program from the current sources. On success the old
// program is deleted and the uniform cache reset; on failure the pipeline
// becomes unusable.
func (p *Pipeline) Compile() error {
	prog, err := p.build()
	if err != nil {
		p.state, p.err = PipelineFailed, err
		p.log.WithError(err).Error("compile failed")
		return err
	}

	if p.program.Valid() {
		p.gl.DeleteProgram(p.program)
	}
	p.program = prog
	p.uniforms = map[string]gl.Uniform{}
	p.state, p.err = PipelineUsable, nil
	p.log.Debug("compiled")
	return nil
}

func (p *Pipeline) build() (gl.Program, error) {
	f := p.gl

	// vertex shader
	vshader, err := compileShader(f, gl.VERTEX_SHADER, p.VertexSource)
	if err != nil {
		return gl.NoProgram, fmt.Errorf("vertex shader error: %v", err)
	}
	defer f.DeleteShader(vshader)

	// fragment shader
	fshader, err := compileShader(f, gl.FRAGMENT_SHADER, p.FragmentSource)
	if err != nil {
		return gl.NoProgram, fmt.Errorf("fragment shader error: %v", err)
	}
	defer f.DeleteShader(fshader)

	// program
	prog := f.CreateProgram()
	f.AttachShader(prog, vshader)
	f.AttachShader(prog, fshader)
	f.LinkProgram(prog)
	if f.GetProgrami(prog, gl.LINK_STATUS) != gl.TRUE {
		msg := f.GetProgramInfoLog(prog)
		f.DeleteProgram(prog)
		return gl.NoProgram, fmt.Errorf("linker error: %v", msg)
	}
	return prog, nil
}

func compileShader(f gl.Functions, ty gl.Enum, src string) (gl.Shader, error) {
	s := f.CreateShader(ty)
	f.ShaderSource(s, src)
	f.CompileShader(s)
	if f.GetShaderi(s, gl.COMPILE_STATUS) != gl.TRUE {
		msg := strings.TrimSpace(f.GetShaderInfoLog(s))
		f.DeleteShader(s)
		if msg == "" {
			msg = "compile failed"
		}
		return s, errors.New(msg)
	}
	return s, nil
}

type PipelineSystem struct {
	ctx *Context
	log *log.Entry

	pipelines map[string]*Pipeline
	loads     *LoadSet
	current   *Pipeline
}

func newPipelineSystem(c *Context) *PipelineSystem {
	return &PipelineSystem{
		ctx:       c,
		log:       c.log.WithField("system", "pipeline"),
		pipelines: map[string]*Pipeline{},
		loads:     NewLoadSet(),
	}
}

func (s *PipelineSystem) newPipeline(name string) *Pipeline {
	return &Pipeline{
		Name:     name,
		uniforms: map[string]gl.Uniform{},
		gl:       s.ctx.gl,
		log:      s.log.WithField("pipeline", name),
	}
}

// Create registers an empty pipeline; set its sources and Compile it before
// use. An existing pipeline of that name is returned unchanged.
func (s *PipelineSystem) Create(name string) *Pipeline {
	if p, found := s.pipelines[name]; found {
		return p
	}
	p := s.newPipeline(name)
	s.pipelines[name] = p
	return p
}

// Load registers a pipeline whose sources are fetched in the background and
// compiled on the next Update after both arrived. A failed fetch leaves it
// failed for good. An existing pipeline of that name is returned unchanged.
func (s *PipelineSystem) Load(name, vertexURL, fragmentURL string) *Pipeline {
	if p, found := s.pipelines[name]; found {
		return p
	}
	p := s.newPipeline(name)
	p.VertexURL, p.FragmentURL = vertexURL, fragmentURL
	s.pipelines[name] = p
	s.loads.Add(name)
	p.state = PipelineCompiling
	s.fetch(p)
	return p
}

func (s *PipelineSystem) fetch(p *Pipeline) {
	vertexURL, fragmentURL := p.VertexURL, p.FragmentURL
	p.gen++
	gen := p.gen

	s.ctx.spawn(func(ctx context.Context) func() {
		var vertex, fragment []byte
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			vertex, err = s.ctx.fetcher.Fetch(gctx, vertexURL)
			return err
		})
		g.Go(func() (err error) {
			fragment, err = s.ctx.fetcher.Fetch(gctx, fragmentURL)
			return err
		})
		err := g.Wait()
		return func() { s.finish(p, gen, string(vertex), string(fragment), err) }
	})
}

func (s *PipelineSystem) finish(p *Pipeline, gen uint64, vertex, fragment string, err error) {
	if s.pipelines[p.Name] != p || p.gen != gen {
		return
	}
	if err != nil {
		p.state, p.err = PipelineFailed, err
		p.log.WithError(err).Warn("shader fetch failed")
	} else {
		p.SetSources(vertex, fragment)
		err = p.Compile()
	}
	s.loads.Done(p.Name, err)
	s.ctx.onLoad.Publish(MessageLoaded{Kind: KindPipeline, Name: p.Name, Err: err})
}

// Use activates pipeline name: its program, depth test and material
// textures. Unusable or unknown pipelines return nil without touching the
// gl state. The empty name deactivates the current program.
func (s *PipelineSystem) Use(name string) *Pipeline {
	f := s.ctx.gl
	if name == "" {
		f.UseProgram(gl.NoProgram)
		s.current = nil
		return nil
	}

	p := s.pipelines[name]
	if p == nil || !p.Usable() {
		return nil
	}

	f.UseProgram(p.program)
	if p.DepthTest {
		f.Enable(gl.DEPTH_TEST)
	} else {
		f.Disable(gl.DEPTH_TEST)
	}
	for unit, b := range p.Textures {
		s.ctx.Textures.Bind(b.Texture, unit)
		p.SetSampler(b.Sampler, unit)
	}
	s.current = p
	return p
}

// Find returns pipeline name if it is usable, without activating it.
func (s *PipelineSystem) Find(name string) *Pipeline {
	if p := s.pipelines[name]; p != nil && p.Usable() {
		return p
	}
	return nil
}

// Get returns pipeline name in any state.
func (s *PipelineSystem) Get(name string) *Pipeline {
	return s.pipelines[name]
}

// Current is the pipeline last activated by Use.
func (s *PipelineSystem) Current() *Pipeline {
	return s.current
}

// Reload recompiles pipeline name: loaded pipelines fetch their sources
// again, created ones compile their current sources right away. The old
// program keeps drawing until a fetched reload compiles.
func (s *PipelineSystem) Reload(name string) error {
	p := s.pipelines[name]
	if p == nil {
		return errors.Wrapf(ErrNotFound, "pipeline %q", name)
	}
	if p.VertexURL == "" && p.FragmentURL == "" {
		return p.Compile()
	}
	s.loads.Reset(name)
	if p.state != PipelineUsable {
		p.state = PipelineCompiling
	}
	s.fetch(p)
	return nil
}

// reloadURL reloads every pipeline reading one of its sources from a url
// for which match is true.
func (s *PipelineSystem) reloadURL(match func(url string) bool) []string {
	var names []string
	for _, name := range sortedKeys(s.pipelines) {
		p := s.pipelines[name]
		if (p.VertexURL != "" && match(p.VertexURL)) || (p.FragmentURL != "" && match(p.FragmentURL)) {
			if err := s.Reload(name); err == nil {
				names = append(names, name)
			}
		}
	}
	return names
}

func (s *PipelineSystem) Delete(name string) {
	p, found := s.pipelines[name]
	if !found {
		return
	}
	if p.program.Valid() {
		s.ctx.gl.DeleteProgram(p.program)
	}
	if s.current == p {
		s.current = nil
	}
	delete(s.pipelines, name)
	s.loads.Remove(name)
}

func (s *PipelineSystem) Names() []string {
	return sortedKeys(s.pipelines)
}

func (s *PipelineSystem) Loaded() bool           { return s.loads.Loaded() }
func (s *PipelineSystem) Failed() bool           { return s.loads.Failed() }
func (s *PipelineSystem) PercentLoaded() float64 { return s.loads.PercentLoaded() }

func (s *PipelineSystem) Close() {
	for _, name := range sortedKeys(s.pipelines) {
		s.Delete(name)
	}
}
