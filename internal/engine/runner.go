package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/glimmerlabs/glimmer/internal/logger"
	"github.com/glimmerlabs/glimmer/internal/plugin"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

// runner starts plugins and feeds their settlements back to the layer.
type runner struct {
	log *logger.Logger
}

// start invokes p.Run on the calling goroutine, so the plugin's synchronous
// stage work happens before start returns, then consumes the settlement on a
// goroutine of its own. onSettle fires exactly once per plugin: with the
// delivered result, with a fault if Run panicked, or with the cancellation
// sentinel if the run context ends before the plugin settles.
func (r runner) start(rc *plugin.RunContext, p plugin.Plugin, onSettle func(plugin.Result, time.Duration)) {
	name := p.Name()
	begin := time.Now()

	var once sync.Once
	settle := func(res plugin.Result) {
		once.Do(func() {
			onSettle(res, time.Since(begin))
		})
	}

	out, err := runRecovering(p, rc)
	if err != nil {
		r.log.Error(err, "plugin run panicked")
		settle(plugin.Fault(err))
		return
	}
	if out == nil {
		settle(plugin.Fault(glimmererrors.NewPluginError(name, fmt.Errorf("run returned a nil channel"))))
		return
	}

	go func() {
		select {
		case res := <-out:
			settle(res)
		case <-rc.Context.Done():
			// A stuck plugin must not hold the generation open forever.
			settle(plugin.Canceled())
		}
	}()
}

// runRecovering shields the pipeline from a panicking Run implementation.
func runRecovering(p plugin.Plugin, rc *plugin.RunContext) (out <-chan plugin.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = glimmererrors.NewPluginError(p.Name(), fmt.Errorf("panic: %v", rec))
		}
	}()

	return p.Run(rc), nil
}
