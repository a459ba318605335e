package signals

import (
	"math"
	"strings"

	"github.com/poiesic/pcrank/core"
)

const (
	citationCap = 150000.0
	hIndexCap   = 90.0
	worksCap    = 800.0

	citationWeight = 0.50
	hIndexWeight   = 0.35
	worksWeight    = 0.15

	experienceCap  = 10.0
	newcomerCutoff = 8.0
)

// Impact combines citations, h-index and work count into a score in [0,1].
// Missing counters count as zero, so a candidate without any data scores 0.
func Impact(c *core.Candidate) float64 {
	cited := float64(valueOf(c.CitedByCount))
	h := float64(valueOf(c.HIndex))
	works := float64(valueOf(c.WorksCount))

	citedScore := clamp01(math.Log1p(cited) / math.Log1p(citationCap))
	hScore := clamp01(h / hIndexCap)
	worksScore := clamp01(math.Log1p(works) / math.Log1p(worksCap))

	return clamp01(citationWeight*citedScore + hIndexWeight*hScore + worksWeight*worksScore)
}

// Experience counts prior committee services, restricted to series when it is
// not empty, and maps ten or more onto 1.
func Experience(c *core.Candidate, series string) float64 {
	n := 0
	for _, s := range c.Services {
		if series == "" || strings.EqualFold(strings.TrimSpace(s.Series), strings.TrimSpace(series)) {
			n++
		}
	}
	return clamp01(float64(n) / experienceCap)
}

// Newcomer rewards relevant candidates with little committee history.
// serviceCount is the candidate's total number of services.
func Newcomer(serviceCount int, topic, semantic float64) float64 {
	novelty := 1 - math.Min(1, float64(serviceCount)/newcomerCutoff)
	return clamp01(novelty * math.Max(topic, semantic))
}

func valueOf(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
