package signals

import (
	"math"
	"time"

	"github.com/poiesic/pcrank/core"
)

const (
	// PublicationDecay is the per-year exponential decay rate for publications.
	PublicationDecay = 0.45
	// ServiceDecay is the per-year exponential decay rate for committee service.
	ServiceDecay = 0.55
	// publicationSaturation is the decayed work count that maps to a score of 1.
	publicationSaturation = 50.0
	// repeatServiceBonus is the multiplier increment per extra in-window service.
	repeatServiceBonus = 0.12
)

// BaseYear resolves the reference year for recency computations: the query
// year when set, otherwise the latest known edition year, otherwise the
// current calendar year.
func BaseYear(queryYear int, stats core.DatasetStats, now time.Time) int {
	if queryYear > 0 {
		return queryYear
	}
	if stats.HasEditions {
		return stats.MaxEditionYear
	}
	return now.Year()
}

// windowStart returns the first year inside the lookback window.
func windowStart(base, lookback int) int {
	return base - max(0, lookback)
}

// PublicationRecency scores recent publishing activity in [0,1].
//
// Per-year work counts are preferred. Without them every publication with a
// known year inside the window counts as one unit of work. Each unit decays
// by exp(-0.45 * age) and the total is log-compressed against 50.
func PublicationRecency(c *core.Candidate, base, lookback int) float64 {
	start := windowStart(base, lookback)
	inWindow := func(year int) bool { return year >= start && year <= base }

	acc := 0.0
	if len(c.CountsByYear) > 0 {
		for _, yc := range c.CountsByYear {
			if !inWindow(yc.Year) {
				continue
			}
			acc += float64(yc.WorksCount) * math.Exp(-PublicationDecay*float64(base-yc.Year))
		}
	} else {
		for _, p := range c.Publications {
			if p.Year <= 0 || !inWindow(p.Year) {
				continue
			}
			acc += math.Exp(-PublicationDecay * float64(base-p.Year))
		}
	}

	if acc <= 0 {
		return 0
	}
	return clamp01(math.Log1p(acc) / math.Log1p(publicationSaturation))
}

// ServiceRecency scores how recently and how often a candidate served on
// committees, in [0,1].
//
// When at least one service falls inside the window the score is
// exp(-0.55 * (base - latest in-window year)) scaled by 1 + 0.12 per extra
// in-window service. Otherwise the most recent service decays from the base
// year without any bonus.
func ServiceRecency(c *core.Candidate, base, lookback int) float64 {
	if len(c.Services) == 0 {
		return 0
	}
	start := windowStart(base, lookback)

	inWindow := 0
	latestInWindow := math.MinInt
	latest := math.MinInt
	for _, s := range c.Services {
		latest = max(latest, s.Year)
		if s.Year >= start && s.Year <= base {
			inWindow++
			latestInWindow = max(latestInWindow, s.Year)
		}
	}

	if inWindow == 0 {
		age := max(0, base-latest)
		return clamp01(math.Exp(-ServiceDecay * float64(age)))
	}

	score := math.Exp(-ServiceDecay * float64(base-latestInWindow))
	score *= 1 + repeatServiceBonus*float64(inWindow-1)
	return clamp01(score)
}
