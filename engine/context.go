package engine

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/microwerx/libxor/config"
	"github.com/microwerx/libxor/gl"
)

// Surface is whatever the context draws into: a window, a canvas.
type Surface interface {
	Size() (width, height int)
}

type options struct {
	fetcher    Fetcher
	logger     *log.Entry
	extensions []string
	anisotropy float32
	maxLoads   int64
	readOffset int
	cfg        *config.Config
}

type Option func(*options)

func WithFetcher(f Fetcher) Option { return func(o *options) { o.fetcher = f } }

// WithLogger logs through l. Without it every context gets a logger of its
// own at the configured level.
func WithLogger(l *log.Entry) Option { return func(o *options) { o.logger = l } }

// WithExtensions replaces DefaultExtensions.
func WithExtensions(names ...string) Option {
	return func(o *options) { o.extensions = names }
}

// WithAnisotropy sets the requested anisotropic filtering level, clamped to
// the device maximum. Levels <= 1 disable it.
func WithAnisotropy(level float32) Option { return func(o *options) { o.anisotropy = level } }

func WithMaxConcurrentLoads(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLoads = int64(n)
		}
	}
}

// WithConfig takes extensions, anisotropy, load concurrency, log level and
// asset root from cfg. Options given after it win.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
		if len(cfg.Extensions) > 0 {
			o.extensions = cfg.Extensions
		}
		o.anisotropy = cfg.Anisotropy
		if cfg.MaxConcurrentLoads > 0 {
			o.maxLoads = int64(cfg.MaxConcurrentLoads)
		}
		o.readOffset = cfg.ReadUnitOffset
		if cfg.AssetRoot != "" {
			o.fetcher = fetcherFor(cfg.AssetRoot)
		}
	}
}

func fetcherFor(root string) Fetcher {
	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		if !strings.HasSuffix(root, "/") {
			root += "/"
		}
		return &HTTPFetcher{Base: root}
	}
	return DirFetcher(root)
}

var contextIDs int64

// Context owns one graphics api context and every resource created on it.
// Apart from loads running in the background, it must only be used from the
// goroutine that owns the gl context.
type Context struct {
	gl      gl.Functions
	surface Surface
	log     *log.Entry
	fetcher Fetcher

	caps       Capabilities
	extensions map[string]bool
	anisotropy float32
	readOffset int

	queue  *queue
	sem    *semaphore.Weighted
	bg     context.Context
	cancel context.CancelFunc

	onLoad   *Observer
	onResize *Observer
	watcher  *shaderWatcher

	Textures  *TextureSystem
	Targets   *TargetSystem
	Pipelines *PipelineSystem
}

// NewContext probes capabilities and builds the texture, render target and
// pipeline systems, in that order. Nil arguments are programming errors.
func NewContext(f gl.Functions, s Surface, opts ...Option) (*Context, error) {
	if f == nil {
		return nil, ErrNoContext
	}
	if s == nil {
		return nil, ErrNoSurface
	}

	o := options{
		extensions: DefaultExtensions,
		anisotropy: 4,
		maxLoads:   8,
		readOffset: 8,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fetcher == nil {
		o.fetcher = DirFetcher(".")
	}
	// the configured level only applies to a logger the context owns,
	// loggers passed in keep the caller's settings
	if o.logger == nil {
		o.logger = log.NewEntry(log.New())
		if o.cfg != nil && o.cfg.LogLevel != "" {
			lvl, err := log.ParseLevel(o.cfg.LogLevel)
			if err != nil {
				return nil, errors.Wrap(err, "log level")
			}
			o.logger.Logger.SetLevel(lvl)
		}
	} else if o.cfg != nil && o.cfg.LogLevel != "" {
		if _, err := log.ParseLevel(o.cfg.LogLevel); err != nil {
			return nil, errors.Wrap(err, "log level")
		}
	}

	bg, cancel := context.WithCancel(context.Background())
	c := &Context{
		gl:         f,
		surface:    s,
		log:        o.logger.WithField("context", atomic.AddInt64(&contextIDs, 1)),
		fetcher:    o.fetcher,
		extensions: map[string]bool{},
		anisotropy: o.anisotropy,
		readOffset: o.readOffset,
		queue:      newQueue(),
		sem:        semaphore.NewWeighted(o.maxLoads),
		bg:         bg,
		cancel:     cancel,
		onLoad:     NewObserver(),
		onResize:   NewObserver(),
	}

	c.probe(o.extensions)
	c.Textures = newTextureSystem(c)
	c.Targets = newTargetSystem(c)
	c.Pipelines = newPipelineSystem(c)

	return c, nil
}

// GL exposes the function table for draw calls.
func (c *Context) GL() gl.Functions { return c.gl }

func (c *Context) Logger() *log.Entry { return c.log }

// ReadUnitOffset is the configured first texture unit for render target reads.
func (c *Context) ReadUnitOffset() int { return c.readOffset }

// OnLoad publishes a MessageLoaded for every texture or pipeline load that
// settles.
func (c *Context) OnLoad() *Observer { return c.onLoad }

// OnResize publishes a MessageTargetResized for every rebuilt target.
func (c *Context) OnResize() *Observer { return c.onResize }

// spawn runs work in the background, bounded by the load semaphore. The
// returned closure runs on the render thread during Update or Flush.
func (c *Context) spawn(work func(ctx context.Context) func()) {
	c.queue.start()
	go func() {
		if err := c.sem.Acquire(c.bg, 1); err != nil {
			c.queue.post(func() {})
			return
		}
		done := work(c.bg)
		c.sem.Release(1)
		c.queue.post(done)
	}()
}

// Update applies finished loads. It never blocks and returns the number of
// completions applied.
func (c *Context) Update() int {
	return c.queue.drain()
}

// Flush applies completions until no load is in flight or ctx is done.
func (c *Context) Flush(ctx context.Context) error {
	return c.queue.wait(ctx)
}

// Begin activates pipeline name and configures its render targets. It
// returns nil, without touching the gl state, when the pipeline is not
// usable or writes to a target that is missing or incomplete; the pass is
// then skipped rather than drawn to the screen.
func (c *Context) Begin(name string, startUnit int) *Pipeline {
	if p := c.Pipelines.Find(name); p != nil && p.WriteTo != "" && !c.Targets.Writable(p.WriteTo) {
		c.log.WithFields(log.Fields{"pipeline": name, "target": p.WriteTo}).Debug("write target unavailable, pass skipped")
		return nil
	}
	p := c.Pipelines.Use(name)
	if p == nil {
		return nil
	}
	if err := c.Targets.Configure(p, startUnit); err != nil {
		c.log.WithError(err).WithField("pipeline", name).Error("render target units rejected")
	}
	return p
}

// End undoes Begin: restores the render target state and releases the
// material texture units. The program stays bound.
func (c *Context) End() {
	c.Targets.Restore()
	c.Textures.UnbindAll()
}

// Apply registers the textures, render targets and pipelines of cfg.
func (c *Context) Apply(cfg *config.Config) error {
	for _, name := range sortedKeys(cfg.Textures) {
		c.Textures.Load(name, cfg.Textures[name])
	}

	for _, name := range sortedKeys(cfg.Targets) {
		t := cfg.Targets[name]
		w, h, auto := t.Width, t.Height, t.AutoResize
		if w <= 0 || h <= 0 {
			w, h, auto = c.Width(), c.Height(), true
		}
		enc := EncodingUint8
		if t.Float {
			enc = EncodingFloat
		}
		rt := c.Targets.Add(name, t.Color, t.Depth, w, h, enc)
		rt.AutoResize = auto
	}

	for _, name := range sortedKeys(cfg.Pipelines) {
		pc := cfg.Pipelines[name]
		p := c.Pipelines.Load(name, pc.Vertex, pc.Fragment)
		p.WriteTo = pc.WriteTo
		p.ReadFrom = append([]string(nil), pc.ReadFrom...)
		p.DepthTest = pc.DepthTest
		p.ClearOnWrite = pc.Clear
		p.ClearColor = pc.ClearColor
		p.DisableColorWrites = pc.DisableColorWrites
		p.Textures = p.Textures[:0]
		for _, sampler := range sortedKeys(pc.Textures) {
			p.AddTexture(pc.Textures[sampler], sampler)
		}
	}

	if cfg.WatchShaders {
		for _, dir := range shaderDirs(cfg) {
			if err := c.WatchShaders(dir); err != nil {
				return errors.Wrap(err, "watch shaders")
			}
		}
	}
	return nil
}

// shaderDirs lists the local directories the pipelines of cfg read their
// sources from. fsnotify does not recurse, so each one is watched.
func shaderDirs(cfg *config.Config) []string {
	if strings.Contains(cfg.AssetRoot, "://") {
		return nil
	}
	root := DirFetcher(cfg.AssetRoot)
	seen := map[string]bool{}
	var dirs []string
	for _, name := range sortedKeys(cfg.Pipelines) {
		pc := cfg.Pipelines[name]
		for _, url := range []string{pc.Vertex, pc.Fragment} {
			if url == "" || strings.Contains(url, "://") {
				continue
			}
			dir := filepath.Dir(root.Path(url))
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close stops the background loads and observers and deletes every gpu
// object the context created. Pending completions are dropped.
func (c *Context) Close() {
	c.cancel()
	c.queue.close()
	if c.watcher != nil {
		c.watcher.close()
		c.watcher = nil
	}

	c.Pipelines.Close()
	c.Targets.Close()
	c.Textures.Close()

	c.onLoad.Close()
	c.onResize.Close()
}
