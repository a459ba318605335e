package ingestion

import (
	"context"

	"github.com/poiesic/pcrank/core"
)

// submitWarm hands a stored batch to the warmer on the worker pool.
// The task outlives the import call, so it runs detached from ctx
// cancellation.
func (p *Pipeline) submitWarm(ctx context.Context, batch []*core.Candidate) {
	if p.warmer == nil || len(batch) == 0 {
		return
	}

	warmCtx := context.WithoutCancel(ctx)
	logger := p.logger.With("processor", "warm-up")

	p.warming.Add(1)
	err := p.warmPool.Submit(func() {
		defer p.warming.Done()
		logger.Debug("warming candidates", "candidates", len(batch))
		if err := p.warmer.Warm(warmCtx, batch...); err != nil {
			logger.Error("error warming candidates", "candidates", len(batch), "err", err)
		}
	})
	if err != nil {
		p.warming.Done()
		logger.Warn("warm-up task rejected", "candidates", len(batch), "err", err)
	}
}
