package engine

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

type shaderWatcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

func (w *shaderWatcher) close() {
	w.w.Close()
	<-w.done
}

// WatchShaders reloads loaded pipelines whenever a file below dir that one
// of them reads its sources from is written. Reloads are applied by Update
// like any other load.
func (c *Context) WatchShaders(dir string) error {
	if c.watcher != nil {
		return c.watcher.w.Add(dir)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	sw := &shaderWatcher{w: w, done: make(chan struct{})}
	c.watcher = sw

	l := c.log.WithField("system", "watch")
	go func() {
		defer close(sw.done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				changed := filepath.ToSlash(ev.Name)
				c.queue.push(func() {
					names := c.Pipelines.reloadURL(func(url string) bool {
						return sameFile(changed, url)
					})
					if len(names) > 0 {
						l.WithField("pipelines", names).Info("shader changed, reloading")
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.WithError(err).Warn("watch error")
			}
		}
	}()
	return nil
}

// sameFile matches a watched path against a relative or absolute url.
func sameFile(path, url string) bool {
	url = strings.TrimPrefix(filepath.ToSlash(url), "./")
	if url == "" {
		return false
	}
	return path == url || strings.HasSuffix(path, "/"+strings.TrimPrefix(url, "/"))
}
