package probe

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/logger"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultCacheSize = 512
	defaultMaxBytes  = 8 << 20
)

// Meta describes a fetched media resource.
type Meta struct {
	Width       int
	Height      int
	ContentType string
	// Size is the reported content length, -1 when the server did not say.
	Size int64
}

// Options configures a Prober.
type Options struct {
	Client *http.Client
	// Timeout bounds each fetch on top of the caller's context.
	Timeout time.Duration
	// CacheSize is the number of probe results kept.
	CacheSize int
	// MaxBytes bounds how much of a response body is read for decoding.
	MaxBytes int64
	Log      *logger.Logger
}

// Prober fetches media resources and reports their metadata. Concurrent
// probes of the same URL collapse into one request, and results are cached.
// Failed probes are not retried.
type Prober struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	log      *logger.Logger
	group    singleflight.Group
	cache    *lru.Cache[string, Meta]
}

// NewProber creates a Prober with the provided options.
func NewProber(opts Options) (*Prober, error) {
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}

	cache, err := lru.New[string, Meta](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Prober{
		client:   opts.Client,
		timeout:  opts.Timeout,
		maxBytes: opts.MaxBytes,
		log:      opts.Log,
		cache:    cache,
	}, nil
}

// Probe fetches url and returns its metadata. Image responses are decoded
// for intrinsic dimensions; other media types report dimensions of zero.
func (p *Prober) Probe(ctx context.Context, url string) (Meta, error) {
	if meta, ok := p.cache.Get(url); ok {
		return meta, nil
	}

	v, err, _ := p.group.Do(url, func() (interface{}, error) {
		meta, err := p.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		p.cache.Add(url, meta)
		return meta, nil
	})
	if err != nil {
		p.log.WithFields(map[string]any{"url": url, "error": err.Error()}).Debug("probe failed")
		return Meta{}, err
	}
	return v.(Meta), nil
}

// Loader adapts the prober to the element load interface.
func (p *Prober) Loader() element.Loader {
	return element.LoaderFunc(func(ctx context.Context, url string) (element.Load, error) {
		meta, err := p.Probe(ctx, url)
		if err != nil {
			return element.Load{}, err
		}
		return element.Load{Width: meta.Width, Height: meta.Height}, nil
	})
}

func (p *Prober) fetch(ctx context.Context, url string) (Meta, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Meta{}, glimmererrors.NewProbeError(url, 0, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Meta{}, glimmererrors.NewProbeError(url, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Meta{}, glimmererrors.NewProbeError(url, resp.StatusCode, nil)
	}

	meta := Meta{
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if strings.HasPrefix(meta.ContentType, "image/") {
		cfg, _, err := image.DecodeConfig(io.LimitReader(resp.Body, p.maxBytes))
		if err != nil {
			return Meta{}, glimmererrors.NewProbeError(url, 0, fmt.Errorf("decoding image: %w", err))
		}
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}

	return meta, nil
}
