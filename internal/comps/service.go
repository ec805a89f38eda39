package comps

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/config"
	"github.com/sells-group/underwrite-cli/internal/model"
)

// Recorder receives comp activity for metrics.
type Recorder interface {
	CompsRanked(kind string, rows int)
}

type nopRecorder struct{}

func (nopRecorder) CompsRanked(string, int) {}

// Service serves filtered, ranked comp tables over a fixed comp catalog.
type Service struct {
	subject  model.Property
	sales    []model.Property
	rents    []model.RentComp
	weights  config.SimilarityConfig
	clock    clockwork.Clock
	cache    *cache.Cache
	notes    *Notebook
	recorder Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for recency filtering.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithCacheTTL caches ranked sale tables for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		s.cache = cache.New(ttl, 2*ttl)
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a Service. It returns an error if weights are invalid.
func NewService(subject model.Property, sales []model.Property, rents []model.RentComp, weights config.SimilarityConfig, opts ...Option) (*Service, error) {
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	s := &Service{
		subject:  subject,
		sales:    sales,
		rents:    rents,
		weights:  weights,
		clock:    clockwork.NewRealClock(),
		notes:    NewNotebook(),
		recorder: nopRecorder{},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Subject returns the subject property.
func (s *Service) Subject() model.Property { return s.subject }

// Notes returns the comp notebook.
func (s *Service) Notes() *Notebook { return s.notes }

// Options returns the filter choices for the catalog.
func (s *Service) Options() Options { return FilterOptions(s.sales, s.rents) }

// Sales returns the ranked sales comp table for f, subject first. Rows are
// copies; callers may modify them.
func (s *Service) Sales(f Filter) []Row {
	now := s.clock.Now()
	ranked := s.rankedByPlace(f)

	rows := make([]Row, 0, len(ranked))
	for _, r := range ranked {
		if r.IsSubject || f.RecencyMonths <= 0 || WithinMonths(r.SaleDate, f.RecencyMonths, now) {
			rows = append(rows, r.clone())
		}
	}
	s.recorder.CompsRanked("sale", len(rows)-1)
	return rows
}

// rankedByPlace ranks the comps passing the market and distance rules.
// Recency depends on the current instant, so it is applied per call on top
// of the cached table. Filtering a stably sorted table keeps its order.
func (s *Service) rankedByPlace(f Filter) []Row {
	place := Filter{Market: f.Market, MaxDistance: f.MaxDistance}
	key := cacheKey(place)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.([]Row)
		}
	}

	rows := RankSales(s.subject, s.sales, place, s.weights, s.clock.Now())
	zap.L().Debug("comps: ranked sales",
		zap.String("market", f.Market),
		zap.Int("candidates", len(rows)-1),
	)

	if s.cache != nil {
		s.cache.SetDefault(key, rows)
	}
	return rows
}

// Rent returns the rent comps passing f.
func (s *Service) Rent(f Filter) []model.RentComp {
	rows := FilterRent(s.rents, f, s.clock.Now())
	s.recorder.CompsRanked("rent", len(rows))
	return rows
}

// Known reports whether id names a sale or rent comp.
func (s *Service) Known(id string) bool {
	for _, c := range s.sales {
		if c.ID == id {
			return true
		}
	}
	for _, c := range s.rents {
		if c.ID == id {
			return true
		}
	}
	return false
}

// CompDetail is a single sale comp with its score explained.
type CompDetail struct {
	Row
	Breakdown ScoreBreakdown `json:"breakdown"`
	Notes     string         `json:"notes"`
}

// Comp returns one sale comp by id, unfiltered. ok is false for unknown ids.
func (s *Service) Comp(id string) (CompDetail, bool) {
	for _, c := range s.sales {
		if c.ID != id {
			continue
		}
		b := Breakdown(c, s.subject, s.weights)
		score := b.Score
		return CompDetail{
			Row:       Row{Property: c, Similarity: &score, Deltas: Deltas(c, s.subject)},
			Breakdown: b,
			Notes:     s.notes.Get(id),
		}, true
	}
	return CompDetail{}, false
}

func cacheKey(f Filter) string {
	dist := "any"
	if f.MaxDistance != nil {
		dist = fmt.Sprintf("%g", *f.MaxDistance)
	}
	return f.Market + "|" + dist
}
