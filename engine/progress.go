package engine

import (
	log "github.com/sirupsen/logrus"
)

// Progress follows the load and resize messages of a context from the
// render loop. Poll it once per frame.
type Progress struct {
	ctx    *Context
	log    *log.Entry
	events chan interface{}

	loaded  int
	resized int
	failed  []string
}

func NewProgress(c *Context) *Progress {
	p := &Progress{
		ctx:    c,
		log:    c.log.WithField("system", "progress"),
		events: make(chan interface{}, 64),
	}
	c.onLoad.Subscribe(p.events, PriorityLast)
	c.onResize.Subscribe(p.events, PriorityLast)
	return p
}

// Poll logs every message delivered so far and returns how many there were.
// It never blocks.
func (p *Progress) Poll() int {
	var n int
	for {
		select {
		case m := <-p.events:
			p.handle(m)
			n++
		default:
			return n
		}
	}
}

func (p *Progress) handle(m interface{}) {
	switch m := m.(type) {
	case MessageLoaded:
		l := p.log.WithFields(log.Fields{
			"kind":    m.Kind,
			"name":    m.Name,
			"percent": int(p.Percent()),
		})
		if m.Err != nil {
			p.failed = append(p.failed, m.Kind.String()+" "+m.Name)
			l.WithError(m.Err).Warn("load failed")
			return
		}
		p.loaded++
		l.Info("loaded")
	case MessageTargetResized:
		p.resized++
		p.log.WithFields(log.Fields{
			"target": m.Name,
			"width":  m.Width,
			"height": m.Height,
		}).Debug("target resized")
	}
}

// Percent is the share of settled texture and pipeline loads, 100 when
// nothing was requested.
func (p *Progress) Percent() float64 {
	tn, pn := p.ctx.Textures.loads.Len(), p.ctx.Pipelines.loads.Len()
	if tn+pn == 0 {
		return 100
	}
	t := p.ctx.Textures.PercentLoaded() * float64(tn)
	q := p.ctx.Pipelines.PercentLoaded() * float64(pn)
	return (t + q) / float64(tn+pn)
}

// Loaded counts successful loads seen by Poll.
func (p *Progress) Loaded() int { return p.loaded }

// Resized counts render target rebuilds seen by Poll.
func (p *Progress) Resized() int { return p.resized }

// Failed lists the failed loads seen by Poll as "kind name".
func (p *Progress) Failed() []string { return p.failed }

func (p *Progress) Close() {
	p.ctx.onLoad.Unsubscribe(p.events)
	p.ctx.onResize.Unsubscribe(p.events)
}
