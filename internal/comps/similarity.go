// Package comps scores, annotates and filters comparable properties against
// the subject property under underwriting.
package comps

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/underwrite-cli/internal/config"
	"github.com/sells-group/underwrite-cli/internal/model"
)

// DefaultWeights returns the similarity weights and caps used by the sales
// comp table. Weights sum to 1.
func DefaultWeights() config.SimilarityConfig {
	return config.SimilarityConfig{
		DistanceWeight:     0.25,
		YearBuiltWeight:    0.15,
		AvgUnitSizeWeight:  0.20,
		UnitsWeight:        0.10,
		WalkScoreWeight:    0.10,
		PricePerUnitWeight: 0.20,

		DistanceCap:     10,     // miles
		YearBuiltCap:    25,     // years
		AvgUnitSizeCap:  400,    // square feet
		UnitsCap:        200,    // units
		WalkScoreCap:    50,     // points
		PricePerUnitCap: 150000, // dollars
	}
}

// ValidateWeights checks that a SimilarityConfig is internally consistent.
func ValidateWeights(w config.SimilarityConfig) error {
	cfg := config.Config{}
	cfg.Comps.DefaultMonths = 1
	cfg.Comps.Similarity = w
	if err := cfg.Validate("cli"); err != nil {
		return eris.Wrap(err, "comps: invalid similarity weights")
	}
	return nil
}

// field describes one comparable attribute.
type field struct {
	name   string
	get    func(model.Property) *float64
	weight func(config.SimilarityConfig) float64
	cap    func(config.SimilarityConfig) float64
}

var fields = []field{
	{
		name:   "distance_miles",
		get:    func(p model.Property) *float64 { return p.DistanceMiles },
		weight: func(w config.SimilarityConfig) float64 { return w.DistanceWeight },
		cap:    func(w config.SimilarityConfig) float64 { return w.DistanceCap },
	},
	{
		name:   "year_built",
		get:    func(p model.Property) *float64 { return p.YearBuilt },
		weight: func(w config.SimilarityConfig) float64 { return w.YearBuiltWeight },
		cap:    func(w config.SimilarityConfig) float64 { return w.YearBuiltCap },
	},
	{
		name:   "avg_unit_size",
		get:    func(p model.Property) *float64 { return p.AvgUnitSize },
		weight: func(w config.SimilarityConfig) float64 { return w.AvgUnitSizeWeight },
		cap:    func(w config.SimilarityConfig) float64 { return w.AvgUnitSizeCap },
	},
	{
		name:   "units",
		get:    func(p model.Property) *float64 { return p.Units },
		weight: func(w config.SimilarityConfig) float64 { return w.UnitsWeight },
		cap:    func(w config.SimilarityConfig) float64 { return w.UnitsCap },
	},
	{
		name:   "walk_score",
		get:    func(p model.Property) *float64 { return p.WalkScore },
		weight: func(w config.SimilarityConfig) float64 { return w.WalkScoreWeight },
		cap:    func(w config.SimilarityConfig) float64 { return w.WalkScoreCap },
	},
	{
		name:   "price_per_unit",
		get:    func(p model.Property) *float64 { return p.PricePerUnit },
		weight: func(w config.SimilarityConfig) float64 { return w.PricePerUnitWeight },
		cap:    func(w config.SimilarityConfig) float64 { return w.PricePerUnitCap },
	},
}

// FieldPenalty is one field's contribution to the similarity penalty.
type FieldPenalty struct {
	Field      string  `json:"field"`
	Diff       float64 `json:"diff"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"`
	Penalty    float64 `json:"penalty"`
}

// ScoreBreakdown explains a similarity score.
type ScoreBreakdown struct {
	Score    int            `json:"score"`
	Penalty  float64        `json:"penalty"`
	Compared int            `json:"compared"` // fields present on both sides
	Fields   []FieldPenalty `json:"fields"`
}

// Breakdown computes the similarity score with per-field detail. Fields
// missing on either side are skipped and weights are not renormalized, so a
// comp sharing no fields with the subject scores 100 with Compared == 0.
func Breakdown(comp, subject model.Property, w config.SimilarityConfig) ScoreBreakdown {
	var b ScoreBreakdown
	for _, f := range fields {
		c, s := f.get(comp), f.get(subject)
		if c == nil || s == nil || math.IsNaN(*c) || math.IsNaN(*s) {
			continue
		}
		diff := math.Abs(*c - *s)
		normalized := math.Min(1, diff/f.cap(w))
		weight := f.weight(w)
		b.Penalty += weight * normalized
		b.Compared++
		b.Fields = append(b.Fields, FieldPenalty{
			Field:      f.name,
			Diff:       diff,
			Normalized: normalized,
			Weight:     weight,
			Penalty:    weight * normalized,
		})
	}
	b.Score = clampScore(roundHalfUp(100 * (1 - b.Penalty)))
	return b
}

// Similarity returns a 0-100 score of how closely comp matches subject.
func Similarity(comp, subject model.Property, w config.SimilarityConfig) int {
	return Breakdown(comp, subject, w).Score
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
