//go:build js && wasm

// Command xorweb renders the passes of a libxor config into the page's
// canvas. The config is fetched from libxor.toml next to the page; assets
// are fetched relative to its asset_root.
package main

import (
	"context"
	"image/color"
	"net/url"
	"strings"
	"syscall/js"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/microwerx/libxor/config"
	"github.com/microwerx/libxor/engine"
	"github.com/microwerx/libxor/gl/webgl"
	"github.com/microwerx/libxor/procedural"
)

// canvas tracks the css size of the element and keeps its drawing buffer
// in step, scaled by the device pixel ratio.
type canvas struct {
	el js.Value
}

func (c canvas) Size() (int, int) {
	ratio := js.Global().Get("devicePixelRatio").Float()
	if ratio <= 0 {
		ratio = 1
	}
	w := int(c.el.Get("clientWidth").Float() * ratio)
	h := int(c.el.Get("clientHeight").Float() * ratio)
	if c.el.Get("width").Int() != w {
		c.el.Set("width", w)
	}
	if c.el.Get("height").Int() != h {
		c.el.Set("height", h)
	}
	return w, h
}

func main() {
	doc := js.Global().Get("document")
	el := doc.Call("getElementById", "canvas")
	if el.IsNull() {
		el = doc.Call("createElement", "canvas")
		el.Get("style").Set("width", "100%")
		el.Get("style").Set("height", "100%")
		doc.Get("body").Call("appendChild", el)
	}

	page := js.Global().Get("location").Get("href").String()
	pageFetcher := &engine.HTTPFetcher{Base: page}

	cfg := config.Default()
	data, err := pageFetcher.Fetch(context.Background(), "libxor.toml")
	switch {
	case err != nil:
		log.WithError(err).Warn("no config, using defaults")
	default:
		if err := cfg.Decode(data); err != nil {
			log.Fatal(err)
		}
	}
	// no file system to watch in the browser
	cfg.WatchShaders = false
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	f, err := webgl.New(el)
	if err != nil {
		log.Fatal(err)
	}

	ctx, err := engine.NewContext(f, canvas{el},
		engine.WithConfig(cfg),
		engine.WithLogger(log.WithField("app", "xorweb")),
		engine.WithFetcher(&engine.HTTPFetcher{Base: assetBase(page, cfg.AssetRoot)}))
	if err != nil {
		log.Fatal(err)
	}

	ts := ctx.Textures
	ts.Set("noise", ts.FromImage(procedural.Noise(256, 256, 16, 1)))
	if label, err := procedural.Text(256, 64, "libxor", 40, color.White); err == nil {
		ts.Set("label", ts.FromImage(procedural.DistanceField(label, 4)))
	}
	if err := ctx.Apply(cfg); err != nil {
		log.Fatal(err)
	}

	r := engine.NewRenderer(ctx, cfg.PassOrder()...)
	progress := engine.NewProgress(ctx)
	start := time.Now()

	var frame js.Func
	frame = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		r.Render(time.Since(start))
		progress.Poll()
		js.Global().Call("requestAnimationFrame", frame)
		return nil
	})
	js.Global().Call("requestAnimationFrame", frame)

	select {}
}

// assetBase resolves the asset root against the page url, as a directory.
func assetBase(page, root string) string {
	base, err := url.Parse(page)
	if err != nil {
		return root
	}
	ref, err := url.Parse(strings.TrimSuffix(root, "/") + "/")
	if err != nil {
		return page
	}
	return base.ResolveReference(ref).String()
}
