package engine

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
)

// Fetcher retrieves the raw bytes behind a resource url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher issues GET requests, relative urls are resolved against Base.
type HTTPFetcher struct {
	Client *http.Client
	Base   string
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawurl string) ([]byte, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %q", rawurl)
	}
	if f.Base != "" && !u.IsAbs() {
		base, err := url.Parse(f.Base)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch base %q", f.Base)
		}
		u = base.ResolveReference(u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %q", u)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %q", u)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("fetch %q: %s", u, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", u)
	}
	return data, nil
}

// DirFetcher reads urls as slash separated paths below a directory.
type DirFetcher string

func (d DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := filepath.Join(string(d), filepath.FromSlash(strings.TrimPrefix(name, "/")))
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %q", name)
	}
	return data, nil
}

// Path maps a url back to the file it is read from.
func (d DirFetcher) Path(name string) string {
	return filepath.Join(string(d), filepath.FromSlash(strings.TrimPrefix(name, "/")))
}

// BoxFetcher serves urls out of a packr box, for assets built into the binary.
type BoxFetcher struct {
	Box packr.Box
}

func (b BoxFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := b.Box.Find(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %q", name)
	}
	return data, nil
}
