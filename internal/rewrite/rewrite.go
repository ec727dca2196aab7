package rewrite

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/engine"
	"github.com/glimmerlabs/glimmer/internal/logger"
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/plugin"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

const (
	defaultParallel      = 4
	defaultSettleTimeout = 10 * time.Second
)

// Options configures a Rewriter.
type Options struct {
	Config *config.Config

	// Profile restricts enhancement to one named profile. Empty makes every
	// configured profile eligible.
	Profile string

	// Loader drives load events on rewritten elements. Nil disables them;
	// load-waiting plugins then settle only through cancellation.
	Loader element.Loader

	Log *logger.Logger

	// Registry tracks the live generation per element so a repeated pass
	// over the same target supersedes the previous one.
	Registry *engine.Registry

	SDK media.SDKInfo
}

// Rewriter runs enhancement pipelines over whole HTML documents.
type Rewriter struct {
	profiles []config.Profile
	cloud    media.Cloud
	loader   element.Loader
	log      *logger.Logger
	registry *engine.Registry
	sdk      media.SDKInfo
	parallel int
	settle   time.Duration
}

// New creates a Rewriter from validated configuration.
func New(opts Options) (*Rewriter, error) {
	if opts.Config == nil {
		return nil, glimmererrors.NewValidationError("config", "configuration is required", nil)
	}

	profiles := opts.Config.Profiles
	if opts.Profile != "" {
		selected, ok := config.ProfileMap(profiles)[opts.Profile]
		if !ok {
			return nil, glimmererrors.NewValidationError("profile", fmt.Sprintf("profile %q is not defined", opts.Profile), nil)
		}
		profiles = []config.Profile{selected}
	}

	if opts.Registry == nil {
		opts.Registry = engine.NewRegistry()
	}
	if opts.SDK == (media.SDKInfo{}) {
		opts.SDK = media.DefaultSDK
	}

	parallel := opts.Config.Settings.Parallel
	if parallel <= 0 {
		parallel = defaultParallel
	}
	settle := defaultSettleTimeout
	if opts.Config.Settings.SettleTimeout > 0 {
		settle = time.Duration(opts.Config.Settings.SettleTimeout) * time.Millisecond
	}

	return &Rewriter{
		profiles: profiles,
		cloud:    media.Cloud{BaseURL: opts.Config.Cloud.BaseURL, Space: opts.Config.Cloud.Space},
		loader:   opts.Loader,
		log:      opts.Log,
		registry: opts.Registry,
		sdk:      opts.SDK,
		parallel: parallel,
		settle:   settle,
	}, nil
}

// Enhance parses the document from in, runs every matching element's
// pipeline to settlement and writes the enhanced document to out.
func (r *Rewriter) Enhance(ctx context.Context, in io.Reader, out io.Writer) (*model.DocumentReport, error) {
	begin := time.Now()

	doc, err := html.Parse(in)
	if err != nil {
		return nil, glimmererrors.NewParseError("document", 0, err)
	}

	targets := collectTargets(doc, r.profiles)
	r.log.WithFields(map[string]any{"targets": len(targets)}).Debug("document parsed")

	reports := make([]model.PipelineReport, len(targets))
	pool := make(chan struct{}, r.parallel)
	var wg sync.WaitGroup

	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target) {
			defer wg.Done()

			select {
			case pool <- struct{}{}:
				defer func() { <-pool }()
			case <-ctx.Done():
				reports[i] = failedReport(tgt, "document pass canceled", ctx.Err())
				return
			}

			reports[i] = r.enhanceTarget(ctx, tgt)
		}(i, tgt)
	}
	wg.Wait()

	report := &model.DocumentReport{}
	for _, rep := range reports {
		report.Add(rep)
	}
	report.Duration = time.Since(begin)

	if err := html.Render(out, doc); err != nil {
		return report, glimmererrors.NewParseError("document", 0, err)
	}
	return report, nil
}

// enhanceTarget runs one element's pipeline to settlement. Failures are
// confined to the returned report; one broken element never aborts the pass.
func (r *Rewriter) enhanceTarget(ctx context.Context, tgt target) model.PipelineReport {
	el, err := element.NewNode(tgt.node, element.NodeOptions{Context: ctx, Loader: r.loader})
	if err != nil {
		return failedReport(tgt, "element not usable", err)
	}

	desc, err := media.FromSource(r.cloud, el.Source())
	if err != nil {
		return failedReport(tgt, "no resolvable asset behind element", err)
	}

	plugins, err := plugin.Build(tgt.profile.Plugins)
	if err != nil {
		return failedReport(tgt, "building pipeline", err)
	}

	elCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	opts := engine.Options{Log: r.log, Registry: r.registry, SDK: r.sdk, Context: elCtx}

	var layer pipeline
	if el.Tag() == "video" {
		layer, err = engine.NewVideoLayer(el, desc, r.videoSources(desc, tgt.profile), plugins, opts)
	} else {
		layer, err = engine.NewImageLayer(el, desc, plugins, opts)
	}
	if err != nil {
		return failedReport(tgt, "starting pipeline", err)
	}

	select {
	case <-layer.Done():
	case <-time.After(r.settle):
		r.log.WithFields(map[string]any{"target": tgt.describe()}).Warn("pipeline settle timeout, canceling")
		layer.Unmount()
		cancel()
		<-layer.Done()
	case <-ctx.Done():
		layer.Unmount()
		cancel()
		<-layer.Done()
	}

	report := layer.Report()
	layer.Unmount()
	return report
}

// pipeline is the layer surface the rewriter drives; image and video layers
// both satisfy it.
type pipeline interface {
	Done() <-chan struct{}
	Report() model.PipelineReport
	Unmount()
}

// videoSources derives the playback candidates for a video target, stamped
// with the same analytics identity the layer will use.
func (r *Rewriter) videoSources(desc *media.Descriptor, profile config.Profile) []media.VideoSource {
	tracked := desc.WithAnalytics(r.sdk, featuresFor(profile.Plugins))
	return []media.VideoSource{
		{URL: tracked.URL(media.Hints{Format: "webm"}), MIMEType: "video/webm"},
		{URL: tracked.URL(media.Hints{Format: "mp4"}), MIMEType: "video/mp4"},
	}
}

func featuresFor(specs []config.PluginSpec) media.Feature {
	var features media.Feature
	for _, spec := range specs {
		if bit, ok := media.FeatureForPlugin(spec.Type); ok {
			features |= bit
		}
	}
	return features
}

func failedReport(tgt target, message string, err error) model.PipelineReport {
	now := time.Now()
	return model.PipelineReport{
		Target: tgt.describe(),
		Tag:    tgt.tag(),
		Source: tgt.source(),
		Outcomes: []model.PluginOutcome{{
			Status:    model.OutcomeFailed,
			Message:   message,
			Error:     err,
			Timestamp: now,
		}},
		Timestamp: now,
	}
}
