package comps

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwrite-cli/internal/model"
)

func rankFixture() []model.Property {
	base := func(id string, dist float64) model.Property {
		p := subject()
		p.ID = id
		p.Name = id
		p.DistanceMiles = f(dist)
		p.SaleDate = "2026-05-01"
		return p
	}
	far := base("far", 10)   // 75
	tieA := base("tie-a", 4) // 90
	near := base("near", 0)  // 100
	tieB := base("tie-b", 4) // 90

	stale := base("stale", 0)
	stale.SaleDate = "2023-01-01"
	return []model.Property{far, tieA, near, tieB, stale}
}

func TestRankSales_OrderAndSubjectFirst(t *testing.T) {
	s := subject()
	s.SaleDate = ""

	rows := RankSales(s, rankFixture(), Filter{Market: MarketAll, RecencyMonths: 12}, DefaultWeights(), testNow)
	require.Len(t, rows, 5)

	assert.True(t, rows[0].IsSubject)
	assert.Equal(t, "subject", rows[0].ID)
	assert.Nil(t, rows[0].Similarity)
	assert.Empty(t, rows[0].Deltas)

	var order []string
	var scores []int
	for _, r := range rows[1:] {
		assert.False(t, r.IsSubject)
		order = append(order, r.ID)
		scores = append(scores, *r.Similarity)
	}
	// Ties keep fixture order.
	assert.Equal(t, []string{"near", "tie-a", "tie-b", "far"}, order)
	assert.Equal(t, []int{100, 90, 90, 75}, scores)
}

func TestRankSales_EmptyCandidatesStillHasSubject(t *testing.T) {
	rows := RankSales(subject(), rankFixture(), Filter{Market: "Nowhere", RecencyMonths: 12}, DefaultWeights(), testNow)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsSubject)
}

type countingRecorder struct{ calls map[string]int }

func (c *countingRecorder) CompsRanked(kind string, _ int) { c.calls[kind]++ }

func TestService_SalesCacheSharedAcrossRecency(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	rec := &countingRecorder{calls: map[string]int{}}
	svc, err := NewService(subject(), rankFixture(), nil, DefaultWeights(),
		WithClock(clock), WithCacheTTL(time.Hour), WithRecorder(rec))
	require.NoError(t, err)

	f12 := Filter{Market: MarketAll, RecencyMonths: 12}
	first := svc.Sales(f12)
	second := svc.Sales(f12)
	assert.Equal(t, first, second)
	assert.Len(t, first, 5)

	all := svc.Sales(Filter{Market: MarketAll})
	assert.Len(t, all, 6, "stale comp kept without a recency rule")
	assert.Equal(t, 1, svc.cache.ItemCount())
	assert.Equal(t, 3, rec.calls["sale"])

	svc.Sales(Filter{Market: MarketAll, MaxDistance: f(1), RecencyMonths: 12})
	assert.Equal(t, 2, svc.cache.ItemCount())
}

func TestService_SalesRecencyCheckedOnCacheHit(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	comp := subject()
	comp.ID = "edge"
	comp.SaleDate = "2025-10-15"

	svc, err := NewService(subject(), []model.Property{comp}, nil, DefaultWeights(),
		WithClock(clock), WithCacheTTL(24*time.Hour))
	require.NoError(t, err)

	f12 := Filter{Market: MarketAll, RecencyMonths: 12}
	require.Len(t, svc.Sales(f12), 2, "sale date equals the cutoff")

	clock.Advance(12 * time.Hour)
	rows := svc.Sales(f12)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsSubject)
	assert.Len(t, RankSales(subject(), []model.Property{comp}, f12, DefaultWeights(), clock.Now()), 1)
}

func TestService_SalesRowsAreCopies(t *testing.T) {
	svc, err := NewService(subject(), rankFixture(), nil, DefaultWeights(),
		WithClock(clockwork.NewFakeClockAt(testNow)), WithCacheTTL(time.Hour))
	require.NoError(t, err)

	f12 := Filter{Market: MarketAll, RecencyMonths: 12}
	first := svc.Sales(f12)
	require.NotNil(t, first[4].Similarity)
	*first[4].Similarity = 0
	first[4].Deltas["units"] = "changed"

	again := svc.Sales(f12)
	assert.Equal(t, 75, *again[4].Similarity)
	assert.NotEqual(t, "changed", again[4].Deltas["units"])
}

func TestService_NoCache(t *testing.T) {
	rec := &countingRecorder{calls: map[string]int{}}
	svc, err := NewService(subject(), rankFixture(), nil, DefaultWeights(),
		WithClock(clockwork.NewFakeClockAt(testNow)), WithCacheTTL(0), WithRecorder(rec))
	require.NoError(t, err)
	assert.Nil(t, svc.cache)

	first := svc.Sales(Filter{RecencyMonths: 12})
	second := svc.Sales(Filter{RecencyMonths: 12})
	assert.Equal(t, first, second)
	assert.Equal(t, 2, rec.calls["sale"])
}

func TestService_Comp(t *testing.T) {
	svc, err := NewService(subject(), rankFixture(), nil, DefaultWeights())
	require.NoError(t, err)

	svc.Notes().Set("far", "Older vintage, check capex")
	d, ok := svc.Comp("far")
	require.True(t, ok)
	assert.Equal(t, 75, *d.Similarity)
	assert.Equal(t, 75, d.Breakdown.Score)
	assert.Equal(t, "Older vintage, check capex", d.Notes)

	_, ok = svc.Comp("missing")
	assert.False(t, ok)
}

func TestService_Known(t *testing.T) {
	rents := []model.RentComp{{ID: "rc-1", Market: "Tampa"}}
	svc, err := NewService(subject(), rankFixture(), rents, DefaultWeights())
	require.NoError(t, err)

	assert.True(t, svc.Known("far"))
	assert.True(t, svc.Known("rc-1"))
	assert.False(t, svc.Known("subject"))
	assert.False(t, svc.Known("sc-99"))
}

func TestNewService_InvalidWeights(t *testing.T) {
	w := DefaultWeights()
	w.DistanceCap = -1
	_, err := NewService(subject(), nil, nil, w)
	require.Error(t, err)
}

func TestNotebook(t *testing.T) {
	n := NewNotebook()
	assert.Empty(t, n.Get("x"))
	n.Set("x", "note")
	assert.Equal(t, "note", n.Get("x"))
	n.Set("x", "")
	assert.Empty(t, n.Get("x"))
}
