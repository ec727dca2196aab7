package engine

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/logger"
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/plugin"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

// Options configures a layer.
type Options struct {
	// Log receives pipeline progress; safe to leave nil.
	Log *logger.Logger

	// Registry tracks the current generation per element. Layers sharing an
	// element must share a registry; a private one is created when nil.
	Registry *Registry

	// SDK identifies the analytics origin. Zero value means media.DefaultSDK.
	SDK media.SDKInfo

	// Context bounds every plugin run of the layer. Background when nil.
	Context context.Context
}

// generation is one construction or update pass over the target. Each
// generation owns a fresh plugin state; lists are never merged across
// generations.
type generation struct {
	id       string
	desc     *media.Descriptor
	token    string
	st       *plugin.State
	signals  *plugin.Signals
	decision Decision
	outcomes []model.PluginOutcome
	pending  int
	done     chan struct{}
	begin    time.Time
}

// layer is the orchestrator core shared by ImageLayer and VideoLayer. It
// owns the two element write primitives: the baseline source assignment that
// opens every generation, and the per-settlement attribute commits.
type layer struct {
	mu        sync.Mutex
	target    element.Element
	video     element.VideoElement
	registry  *Registry
	run       runner
	log       *logger.Logger
	sdk       media.SDKInfo
	ctx       context.Context
	gen       *generation
	unmounted bool
}

func newLayer(target element.Element, video element.VideoElement, opts Options) (*layer, error) {
	if target == nil {
		return nil, glimmererrors.NewTargetError("enhancement target is nil", nil)
	}

	sdk := opts.SDK
	if sdk == (media.SDKInfo{}) {
		sdk = media.DefaultSDK
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return &layer{
		target:   target,
		video:    video,
		registry: registry,
		run:      runner{log: opts.Log},
		log:      opts.Log,
		sdk:      sdk,
		ctx:      ctx,
	}, nil
}

// start opens a new generation: fresh state, new baseline commit, new plugin
// runs. It never cancels the previous generation; that is the caller's call.
func (l *layer) start(desc *media.Descriptor, sources []media.VideoSource, plugins []plugin.Plugin, attrs map[string]string) error {
	if desc == nil {
		return glimmererrors.NewTargetError("media descriptor is nil", nil)
	}

	l.mu.Lock()
	if l.unmounted {
		l.mu.Unlock()
		return glimmererrors.NewTargetError("layer is unmounted", nil)
	}

	features := activeFeatures(plugins)
	tracked := desc.WithAnalytics(l.sdk, features)
	gen := &generation{
		id:      uuid.NewString(),
		desc:    tracked,
		token:   media.Token(l.sdk, features),
		st:      plugin.NewState(),
		signals: plugin.NewSignals(),
		pending: len(plugins),
		done:    make(chan struct{}),
		begin:   time.Now(),
	}
	l.gen = gen
	log := l.log.WithPipeline(gen.id, describeTarget(l.target))
	l.mu.Unlock()

	l.registry.Bind(l.target, gen.st)

	for _, name := range sortedKeys(attrs) {
		l.target.SetAttr(name, attrs[name])
	}
	if l.video != nil && sources != nil {
		l.video.ReplaceSources(sources)
	}

	// Baseline source assignment: unconditional, exactly once, before any
	// plugin starts.
	l.target.SetSource(tracked.URL(media.Hints{}))
	pipelinesStarted.WithLabelValues(l.target.Tag()).Inc()
	log.Debug("generation started")

	if len(plugins) == 0 {
		close(gen.done)
		pipelineDuration.WithLabelValues(l.target.Tag()).Observe(time.Since(gen.begin).Seconds())
		return nil
	}

	active := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		active[p.Name()] = true
	}

	rc := &plugin.RunContext{
		Context:    l.ctx,
		Target:     l.target,
		Descriptor: tracked,
		State:      gen.st,
		Signals:    gen.signals,
		Active:     active,
		Log:        log,
	}

	for _, p := range plugins {
		name := p.Name()
		l.run.start(rc, p, func(res plugin.Result, dur time.Duration) {
			l.settle(gen, name, res, dur, log)
		})
	}

	return nil
}

// settle folds one plugin settlement into its generation. Settlements of a
// superseded generation still commit; only unmounting gates the commit path.
func (l *layer) settle(gen *generation, name string, res plugin.Result, dur time.Duration, log *logger.Logger) {
	l.mu.Lock()

	outcome := model.PluginOutcome{
		Plugin:    name,
		Duration:  dur,
		Timestamp: time.Now(),
	}

	switch res.Kind() {
	case plugin.KindCanceled:
		outcome.Status = model.OutcomeCanceled
		outcome.Message = "canceled before settling"

	case plugin.KindFault:
		outcome.Status = model.OutcomeFailed
		outcome.Error = res.Err()
		outcome.Message = "plugin failed"

	default:
		commit, ok := gen.decision.Fold(res, gen.desc, l.target.Tag())
		switch {
		case ok && !l.unmounted:
			l.target.SetAttr(commit.Attribute, commit.Value)
			attributeCommits.WithLabelValues(commit.Attribute).Inc()
			outcome.Status = model.OutcomeApplied
			outcome.Attribute = commit.Attribute
			outcome.Value = commit.Value
		case ok:
			outcome.Status = model.OutcomeSkipped
			outcome.Message = "settled after unmount"
		default:
			outcome.Status = model.OutcomeSkipped
			outcome.Message = "result carried no commit"
		}
	}

	gen.outcomes = append(gen.outcomes, outcome)
	pluginSettlements.WithLabelValues(name, outcome.Status).Inc()

	gen.pending--
	finished := gen.pending == 0
	if finished {
		close(gen.done)
	}
	l.mu.Unlock()

	if outcome.Status == model.OutcomeFailed {
		log.Error(outcome.Error, "plugin settled with a fault")
	} else {
		log.Debug("plugin settled: " + name + " (" + outcome.Status + ")")
	}
	if finished {
		pipelineDuration.WithLabelValues(l.target.Tag()).Observe(time.Since(gen.begin).Seconds())
		log.Debug("generation settled")
	}
}

// unmount cancels the layer's own state and closes the commit path for good.
func (l *layer) unmount() {
	l.mu.Lock()
	if l.unmounted {
		l.mu.Unlock()
		return
	}
	l.unmounted = true
	gen := l.gen
	l.mu.Unlock()

	if gen != nil {
		plugin.CancelRunning(gen.st)
		l.registry.Release(l.target, gen.st)
	}
}

func (l *layer) pluginState() *plugin.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen == nil {
		return nil
	}
	return l.gen.st
}

func (l *layer) doneChan() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen.done
}

func (l *layer) report() model.PipelineReport {
	l.mu.Lock()
	defer l.mu.Unlock()

	gen := l.gen
	if gen == nil {
		return model.PipelineReport{}
	}

	return model.PipelineReport{
		PipelineID: gen.id,
		Target:     describeTarget(l.target),
		Tag:        l.target.Tag(),
		Source:     l.target.Source(),
		Token:      gen.token,
		Outcomes:   append([]model.PluginOutcome(nil), gen.outcomes...),
		Duration:   time.Since(gen.begin),
		Timestamp:  gen.begin,
	}
}

func activeFeatures(plugins []plugin.Plugin) media.Feature {
	var features media.Feature
	for _, p := range plugins {
		if f, ok := media.FeatureForPlugin(p.Name()); ok {
			features |= f
		}
	}
	return features
}

func describeTarget(el element.Element) string {
	tag := el.Tag()
	if class, ok := el.Attr("class"); ok {
		if fields := strings.Fields(class); len(fields) > 0 {
			return tag + "." + fields[0]
		}
	}
	return tag
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
