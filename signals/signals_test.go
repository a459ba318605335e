package signals

import (
	"math"
	"testing"
	"time"

	"github.com/poiesic/pcrank/core"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestBaseYear(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("query year wins", func(t *testing.T) {
		assert.Equal(t, 2021, BaseYear(2021, core.DatasetStats{HasEditions: true, MaxEditionYear: 2025}, now))
	})

	t.Run("latest edition year", func(t *testing.T) {
		assert.Equal(t, 2025, BaseYear(0, core.DatasetStats{HasEditions: true, MaxEditionYear: 2025}, now))
	})

	t.Run("current year without editions", func(t *testing.T) {
		assert.Equal(t, 2026, BaseYear(0, core.DatasetStats{}, now))
	})
}

func TestPublicationRecency(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		assert.Equal(t, 0.0, PublicationRecency(&core.Candidate{}, 2025, 5))
	})

	t.Run("yearly counts preferred", func(t *testing.T) {
		c := &core.Candidate{
			CountsByYear: []core.YearCount{{Year: 2025, WorksCount: 10}, {Year: 2024, WorksCount: 4}},
			Publications: []core.Publication{{Title: "ignored", Year: 2025}},
		}
		acc := 10.0 + 4*math.Exp(-0.45)
		assert.InDelta(t, math.Log1p(acc)/math.Log1p(50), PublicationRecency(c, 2025, 5), 1e-12)
	})

	t.Run("out of window counts ignored", func(t *testing.T) {
		c := &core.Candidate{
			CountsByYear: []core.YearCount{{Year: 2010, WorksCount: 100}, {Year: 2030, WorksCount: 100}},
		}
		assert.Equal(t, 0.0, PublicationRecency(c, 2025, 5))
	})

	t.Run("publication fallback", func(t *testing.T) {
		c := &core.Candidate{
			Publications: []core.Publication{
				{Title: "a", Year: 2025},
				{Title: "b", Year: 2023},
				{Title: "unknown year"},
			},
		}
		acc := 1 + math.Exp(-0.45*2)
		assert.InDelta(t, math.Log1p(acc)/math.Log1p(50), PublicationRecency(c, 2025, 3), 1e-12)
	})

	t.Run("saturates at one", func(t *testing.T) {
		c := &core.Candidate{CountsByYear: []core.YearCount{{Year: 2025, WorksCount: 5000}}}
		assert.Equal(t, 1.0, PublicationRecency(c, 2025, 5))
	})

	t.Run("negative lookback is a single year window", func(t *testing.T) {
		c := &core.Candidate{CountsByYear: []core.YearCount{{Year: 2025, WorksCount: 1}, {Year: 2024, WorksCount: 1}}}
		assert.InDelta(t, math.Log1p(1)/math.Log1p(50), PublicationRecency(c, 2025, -4), 1e-12)
	})
}

func TestPublicationRecency_NonIncreasingWithAge(t *testing.T) {
	const base, lookback = 2025, 6

	shifted := func(c *core.Candidate, by int) *core.Candidate {
		out := &core.Candidate{}
		for _, yc := range c.CountsByYear {
			yc.Year -= by
			out.CountsByYear = append(out.CountsByYear, yc)
		}
		for _, p := range c.Publications {
			p.Year -= by
			out.Publications = append(out.Publications, p)
		}
		return out
	}

	profiles := map[string]*core.Candidate{
		"yearly counts": {CountsByYear: []core.YearCount{
			{Year: 2025, WorksCount: 3}, {Year: 2023, WorksCount: 7}, {Year: 2021, WorksCount: 2},
		}},
		"publications": {Publications: []core.Publication{
			{Title: "a", Year: 2025}, {Title: "b", Year: 2024}, {Title: "c", Year: 2024}, {Title: "d", Year: 2019},
		}},
		"both": {
			CountsByYear: []core.YearCount{{Year: 2024, WorksCount: 12}},
			Publications: []core.Publication{{Title: "a", Year: 2024}, {Title: "b", Year: 2022}},
		},
	}

	for name, c := range profiles {
		t.Run(name, func(t *testing.T) {
			prev := PublicationRecency(c, base, lookback)
			assert.Greater(t, prev, 0.0)
			for shift := 1; shift <= lookback+3; shift++ {
				score := PublicationRecency(shifted(c, shift), base, lookback)
				assert.LessOrEqual(t, score, prev, "shift %d", shift)
				prev = score
			}
			assert.Zero(t, prev, "everything has left the window")
		})
	}
}

func TestServiceRecency(t *testing.T) {
	t.Run("no services", func(t *testing.T) {
		assert.Equal(t, 0.0, ServiceRecency(&core.Candidate{}, 2025, 5))
	})

	t.Run("served in base year", func(t *testing.T) {
		c := &core.Candidate{Services: []core.Service{{Series: "ICSE", Year: 2025}}}
		assert.Equal(t, 1.0, ServiceRecency(c, 2025, 5))
	})

	t.Run("decays with age", func(t *testing.T) {
		c := &core.Candidate{Services: []core.Service{{Series: "ICSE", Year: 2022}}}
		assert.InDelta(t, math.Exp(-0.55*3), ServiceRecency(c, 2025, 5), 1e-12)
	})

	t.Run("repeat bonus", func(t *testing.T) {
		c := &core.Candidate{Services: []core.Service{
			{Series: "ICSE", Year: 2022},
			{Series: "FSE", Year: 2021},
		}}
		want := math.Exp(-0.55*3) * 1.12
		assert.InDelta(t, want, ServiceRecency(c, 2025, 5), 1e-12)
	})

	t.Run("outside window decays without bonus", func(t *testing.T) {
		c := &core.Candidate{Services: []core.Service{
			{Series: "ICSE", Year: 2015},
			{Series: "ICSE", Year: 2016},
		}}
		assert.InDelta(t, math.Exp(-0.55*9), ServiceRecency(c, 2025, 3), 1e-12)
	})

	t.Run("future service outside window", func(t *testing.T) {
		c := &core.Candidate{Services: []core.Service{{Series: "ICSE", Year: 2027}}}
		assert.Equal(t, 1.0, ServiceRecency(c, 2025, 3))
	})

	t.Run("bounded", func(t *testing.T) {
		var services []core.Service
		for i := 0; i < 20; i++ {
			services = append(services, core.Service{Series: "ICSE", Year: 2025})
		}
		assert.Equal(t, 1.0, ServiceRecency(&core.Candidate{Services: services}, 2025, 5))
	})
}

func TestImpact(t *testing.T) {
	t.Run("missing counters", func(t *testing.T) {
		assert.Equal(t, 0.0, Impact(&core.Candidate{}))
	})

	t.Run("explicit zeros", func(t *testing.T) {
		assert.Equal(t, 0.0, Impact(&core.Candidate{WorksCount: intPtr(0), CitedByCount: intPtr(0), HIndex: intPtr(0)}))
	})

	t.Run("caps reach one", func(t *testing.T) {
		c := &core.Candidate{WorksCount: intPtr(800), CitedByCount: intPtr(150000), HIndex: intPtr(90)}
		assert.InDelta(t, 1.0, Impact(c), 1e-12)
	})

	t.Run("h-index component", func(t *testing.T) {
		assert.InDelta(t, 0.35*0.5, Impact(&core.Candidate{HIndex: intPtr(45)}), 1e-12)
	})

	t.Run("monotone in every input", func(t *testing.T) {
		base := &core.Candidate{WorksCount: intPtr(10), CitedByCount: intPtr(100), HIndex: intPtr(5)}
		s := Impact(base)
		assert.GreaterOrEqual(t, Impact(&core.Candidate{WorksCount: intPtr(11), CitedByCount: intPtr(100), HIndex: intPtr(5)}), s)
		assert.GreaterOrEqual(t, Impact(&core.Candidate{WorksCount: intPtr(10), CitedByCount: intPtr(101), HIndex: intPtr(5)}), s)
		assert.GreaterOrEqual(t, Impact(&core.Candidate{WorksCount: intPtr(10), CitedByCount: intPtr(100), HIndex: intPtr(6)}), s)
	})
}

func TestExperience(t *testing.T) {
	c := &core.Candidate{Services: []core.Service{
		{Series: "ICSE", Year: 2020},
		{Series: "icse", Year: 2021},
		{Series: "FSE", Year: 2022},
	}}

	assert.InDelta(t, 0.3, Experience(c, ""), 1e-12)
	assert.InDelta(t, 0.2, Experience(c, "ICSE"), 1e-12)
	assert.Equal(t, 0.0, Experience(c, "ASE"))

	var many []core.Service
	for i := 0; i < 15; i++ {
		many = append(many, core.Service{Series: "ICSE", Year: 2000 + i})
	}
	assert.Equal(t, 1.0, Experience(&core.Candidate{Services: many}, "ICSE"))
}

func TestNewcomer(t *testing.T) {
	assert.InDelta(t, 0.8, Newcomer(0, 0.8, 0.4), 1e-12)
	assert.InDelta(t, 0.5*0.6, Newcomer(4, 0.2, 0.6), 1e-12)
	assert.Equal(t, 0.0, Newcomer(8, 1, 1))
	assert.Equal(t, 0.0, Newcomer(12, 1, 1))
	assert.Equal(t, 0.0, Newcomer(0, 0, 0))
}
