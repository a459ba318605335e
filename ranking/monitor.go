package ranking

import "github.com/poiesic/pcrank/core"

// Monitor provides hooks to observe a ranking run.
// Hooks run on the calling goroutine except CandidateScored, which is called
// from pool workers and must be safe for concurrent use.
type Monitor interface {
	Start(q core.Query, baseYear int)
	CandidatesLoaded(count int)
	CentralityResolved(scores map[core.ID]float64)
	CandidateScored(rec *core.Recommendation)
	Finish(results []*core.Recommendation)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.Query, _ int)                {}
func (n *noopMonitor) CandidatesLoaded(_ int)                   {}
func (n *noopMonitor) CentralityResolved(_ map[core.ID]float64) {}
func (n *noopMonitor) CandidateScored(_ *core.Recommendation)   {}
func (n *noopMonitor) Finish(_ []*core.Recommendation)          {}
