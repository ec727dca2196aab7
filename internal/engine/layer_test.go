package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/glimmerlabs/glimmer/internal/element"
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/plugin"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

var engineTestCloud = media.Cloud{BaseURL: "https://media.example.com", Space: "demo"}

func testDescriptor(t *testing.T) *media.Descriptor {
	t.Helper()

	desc, err := media.NewDescriptor(engineTestCloud, "assets/hero.jpg")
	require.NoError(t, err)
	return desc
}

func waitSettled(t *testing.T, done <-chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for generation to settle")
	}
}

// stubPlugin settles synchronously inside Run.
type stubPlugin struct {
	name   string
	result plugin.Result
}

func (p *stubPlugin) Name() string { return p.name }

func (p *stubPlugin) Run(_ *plugin.RunContext) <-chan plugin.Result {
	r := plugin.NewResolver()
	r.Resolve(p.result)
	return r.Out()
}

// gatedPlugin holds its settlement until released and honors cancellation.
type gatedPlugin struct {
	name    string
	result  plugin.Result
	release chan struct{}
}

func newGatedPlugin(name string, result plugin.Result) *gatedPlugin {
	return &gatedPlugin{name: name, result: result, release: make(chan struct{})}
}

func (p *gatedPlugin) Name() string { return p.name }

func (p *gatedPlugin) Run(rc *plugin.RunContext) <-chan plugin.Result {
	r := plugin.NewResolver()
	rc.State.OnCancel(func() { r.Resolve(plugin.Canceled()) })

	go func() {
		select {
		case <-p.release:
			r.Resolve(p.result)
		case <-rc.Context.Done():
			r.Resolve(plugin.Canceled())
		}
	}()

	return r.Out()
}

// panicPlugin blows up during its synchronous stage.
type panicPlugin struct{}

func (p *panicPlugin) Name() string { return "unstable" }

func (p *panicPlugin) Run(_ *plugin.RunContext) <-chan plugin.Result {
	panic("exploded during construction")
}

func attrValues(calls []element.AttrCall, name string) []string {
	var vals []string
	for _, c := range calls {
		if c.Name == name {
			vals = append(vals, c.Value)
		}
	}
	return vals
}

func TestImageLayerEmptyPluginListCommitsBaselineOnce(t *testing.T) {
	t.Parallel()

	sim := element.NewSim("img")
	layer, err := NewImageLayer(sim, testDescriptor(t), nil, Options{})
	require.NoError(t, err)

	waitSettled(t, layer.Done())

	require.Len(t, sim.SourceCalls(), 1, "baseline must be the only source assignment")
	require.Empty(t, sim.AttrCalls(), "no plugins means no attribute commits")
	require.Contains(t, sim.Source(), "/demo/assets/hero.jpg?_a=")
}

func TestImageLayerCommitsOneAttributePerSettledPlugin(t *testing.T) {
	t.Parallel()

	sim := element.NewSim("img")
	plugins := []plugin.Plugin{
		&stubPlugin{name: "lazyload", result: plugin.Lazyload()},
		&stubPlugin{name: "accessibility", result: plugin.Accessibility("A hero image")},
		&stubPlugin{name: "responsive", result: plugin.Responsive(800)},
	}

	layer, err := NewImageLayer(sim, testDescriptor(t), plugins, Options{})
	require.NoError(t, err)
	waitSettled(t, layer.Done())

	require.Len(t, sim.SourceCalls(), 1)
	require.Len(t, sim.AttrCalls(), 3, "one attribute commit per settled plugin")

	calls := sim.AttrCalls()
	require.Equal(t, []string{"lazy"}, attrValues(calls, "loading"))
	require.Equal(t, []string{"A hero image"}, attrValues(calls, "alt"))

	srcs := attrValues(calls, "src")
	require.Len(t, srcs, 1)
	require.Contains(t, srcs[0], "/demo/w_800/assets/hero.jpg?_a=")

	report := layer.Report()
	require.Equal(t, 3, report.Applied())
	require.Zero(t, report.Failed())
	require.Len(t, report.Token, 5)
}

func TestLayerCancellationStopsPendingCommits(t *testing.T) {
	t.Parallel()

	sim := element.NewSim("img")
	gated := newGatedPlugin("lazyload", plugin.Lazyload())

	layer, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{gated}, Options{})
	require.NoError(t, err)

	plugin.CancelRunning(layer.PluginState())
	waitSettled(t, layer.Done())

	close(gated.release) // too late: the run already settled with the sentinel

	require.Len(t, sim.SourceCalls(), 1)
	require.Empty(t, sim.AttrCalls())

	report := layer.Report()
	require.Len(t, report.Outcomes, 1)
	require.Equal(t, model.OutcomeCanceled, report.Outcomes[0].Status)
}

func TestTwoLayersOnOneElement(t *testing.T) {
	t.Parallel()

	t.Run("cancelling the first generation keeps only the second's commits", func(t *testing.T) {
		t.Parallel()

		sim := element.NewSim("img")
		registry := NewRegistry()
		opts := Options{Registry: registry}

		first := newGatedPlugin("lazyload", plugin.Lazyload())
		layer1, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{first}, opts)
		require.NoError(t, err)

		second := newGatedPlugin("accessibility", plugin.Accessibility("second layer"))
		layer2, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{second}, opts)
		require.NoError(t, err)

		// The second construction superseded the first binding; the caller
		// decides the first generation must not land.
		plugin.CancelRunning(layer1.PluginState())
		waitSettled(t, layer1.Done())

		close(first.release)
		close(second.release)
		waitSettled(t, layer2.Done())

		calls := sim.AttrCalls()
		require.Empty(t, attrValues(calls, "loading"), "canceled generation must not commit")
		require.Equal(t, []string{"second layer"}, attrValues(calls, "alt"))
		require.Same(t, layer2.PluginState(), registry.Current(sim))
	})

	t.Run("without cancellation both generations land", func(t *testing.T) {
		t.Parallel()

		sim := element.NewSim("img")
		registry := NewRegistry()
		opts := Options{Registry: registry}

		first := newGatedPlugin("lazyload", plugin.Lazyload())
		layer1, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{first}, opts)
		require.NoError(t, err)

		second := newGatedPlugin("accessibility", plugin.Accessibility("second layer"))
		layer2, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{second}, opts)
		require.NoError(t, err)

		close(first.release)
		close(second.release)
		waitSettled(t, layer1.Done())
		waitSettled(t, layer2.Done())

		calls := sim.AttrCalls()
		require.Equal(t, []string{"lazy"}, attrValues(calls, "loading"))
		require.Equal(t, []string{"second layer"}, attrValues(calls, "alt"))
	})
}

func TestUpdateStartsNewGenerationWithoutCancellingPrevious(t *testing.T) {
	t.Parallel()

	sim := element.NewSim("img")
	gated := newGatedPlugin("lazyload", plugin.Lazyload())

	layer, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{gated}, Options{})
	require.NoError(t, err)
	firstState := layer.PluginState()

	require.NoError(t, layer.Update(testDescriptor(t), []plugin.Plugin{
		&stubPlugin{name: "accessibility", result: plugin.Accessibility("updated")},
	}, map[string]string{"data-generation": "2"}))

	require.NotSame(t, firstState, layer.PluginState(), "update must mint a fresh state")
	waitSettled(t, layer.Done())

	// The first generation was never canceled, so its late settle still
	// commits.
	close(gated.release)
	require.Eventually(t, func() bool {
		return len(attrValues(sim.AttrCalls(), "loading")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	calls := sim.AttrCalls()
	require.Equal(t, []string{"updated"}, attrValues(calls, "alt"))
	require.Equal(t, []string{"2"}, attrValues(calls, "data-generation"))
	require.Len(t, sim.SourceCalls(), 2, "each generation commits its own baseline")
}

func TestUpdateAfterCancelDropsPreviousCommits(t *testing.T) {
	t.Parallel()

	sim := element.NewSim("img")
	gated := newGatedPlugin("lazyload", plugin.Lazyload())

	layer, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{gated}, Options{})
	require.NoError(t, err)

	plugin.CancelRunning(layer.PluginState())
	require.NoError(t, layer.Update(testDescriptor(t), []plugin.Plugin{
		&stubPlugin{name: "accessibility", result: plugin.Accessibility("only survivor")},
	}, nil))

	close(gated.release)
	waitSettled(t, layer.Done())

	calls := sim.AttrCalls()
	require.Empty(t, attrValues(calls, "loading"))
	require.Equal(t, []string{"only survivor"}, attrValues(calls, "alt"))
}

func TestUnmountCancelsOwnStateAndGatesCommits(t *testing.T) {
	t.Parallel()

	sim := element.NewSim("img")
	registry := NewRegistry()
	gated := newGatedPlugin("lazyload", plugin.Lazyload())

	layer, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{gated}, Options{Registry: registry})
	require.NoError(t, err)

	layer.Unmount()
	waitSettled(t, layer.Done())

	require.Empty(t, sim.AttrCalls())
	require.Nil(t, registry.Current(sim), "unmount releases the binding")

	report := layer.Report()
	require.Len(t, report.Outcomes, 1)
	require.Equal(t, model.OutcomeCanceled, report.Outcomes[0].Status)

	err = layer.Update(testDescriptor(t), nil, nil)
	require.Error(t, err, "unmount is terminal")

	var targetErr *glimmererrors.TargetError
	require.ErrorAs(t, err, &targetErr)
}

func TestFaultingPluginDoesNotBlockSiblings(t *testing.T) {
	t.Parallel()

	t.Run("panic during synchronous stage", func(t *testing.T) {
		t.Parallel()

		sim := element.NewSim("img")
		layer, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{
			&panicPlugin{},
			&stubPlugin{name: "lazyload", result: plugin.Lazyload()},
		}, Options{})
		require.NoError(t, err)
		waitSettled(t, layer.Done())

		require.Len(t, sim.SourceCalls(), 1, "baseline survives a faulting plugin")
		require.Equal(t, []string{"lazy"}, attrValues(sim.AttrCalls(), "loading"))

		report := layer.Report()
		require.Equal(t, 1, report.Failed())
		require.Equal(t, 1, report.Applied())
	})

	t.Run("settled fault", func(t *testing.T) {
		t.Parallel()

		sim := element.NewSim("img")
		boom := fmt.Errorf("upstream returned 503")
		layer, err := NewImageLayer(sim, testDescriptor(t), []plugin.Plugin{
			&stubPlugin{name: "placeholder", result: plugin.Fault(boom)},
			&stubPlugin{name: "accessibility", result: plugin.Accessibility("still here")},
		}, Options{})
		require.NoError(t, err)
		waitSettled(t, layer.Done())

		require.Equal(t, []string{"still here"}, attrValues(sim.AttrCalls(), "alt"))

		report := layer.Report()
		require.Equal(t, 1, report.Failed())
		for _, o := range report.Outcomes {
			if o.Status == model.OutcomeFailed {
				require.ErrorIs(t, o.Error, boom)
			}
		}
	})
}

func TestLayerConstructionValidation(t *testing.T) {
	t.Parallel()

	var targetErr *glimmererrors.TargetError

	_, err := NewImageLayer(nil, nil, nil, Options{})
	require.Error(t, err)
	require.ErrorAs(t, err, &targetErr)

	_, err = NewImageLayer(element.NewSim("img"), nil, nil, Options{})
	require.Error(t, err)
	require.ErrorAs(t, err, &targetErr)
}

func TestVideoLayerManagesSourcesAndPoster(t *testing.T) {
	t.Parallel()

	sim := element.NewSim("video")
	sources := []media.VideoSource{
		{URL: "https://media.example.com/demo/assets/clip.webm", MIMEType: "video/webm"},
		{URL: "https://media.example.com/demo/assets/clip.mp4", MIMEType: "video/mp4"},
	}
	plugins := []plugin.Plugin{
		&stubPlugin{name: "placeholder", result: plugin.Placeholder()},
		&stubPlugin{name: "lazyload", result: plugin.Lazyload()},
	}

	desc, err := media.NewDescriptor(engineTestCloud, "assets/clip.mp4")
	require.NoError(t, err)

	layer, err := NewVideoLayer(sim, desc, sources, plugins, Options{})
	require.NoError(t, err)
	waitSettled(t, layer.Done())

	require.Equal(t, sources, sim.Sources())
	require.Len(t, sim.SourceCalls(), 1)

	calls := sim.AttrCalls()
	posters := attrValues(calls, "poster")
	require.Len(t, posters, 1, "placeholder lands on the poster for videos")
	require.Contains(t, posters[0], "/demo/assets/clip.mp4?_a=")
	require.Equal(t, []string{"none"}, attrValues(calls, "preload"))
}

func TestLayerReportDescribesTarget(t *testing.T) {
	t.Parallel()

	sim := element.NewSim("img")
	sim.SetAttr("class", "hero wide")

	layer, err := NewImageLayer(sim, testDescriptor(t), nil, Options{})
	require.NoError(t, err)
	waitSettled(t, layer.Done())

	report := layer.Report()
	require.Equal(t, "img.hero", report.Target)
	require.Equal(t, "img", report.Tag)
	require.NotEmpty(t, report.PipelineID)
	require.True(t, strings.HasSuffix(report.Source, "?_a="+report.Token))
}
