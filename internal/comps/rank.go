package comps

import (
	"maps"
	"sort"
	"time"

	"github.com/sells-group/underwrite-cli/internal/config"
	"github.com/sells-group/underwrite-cli/internal/model"
)

// Row is one line of the sales comp table. The subject row carries no
// similarity and no deltas.
type Row struct {
	model.Property
	IsSubject  bool              `json:"is_subject"`
	Similarity *int              `json:"similarity,omitempty"`
	Deltas     map[string]string `json:"deltas,omitempty"`
}

// deltaColumns maps table columns to their delta rendering.
var deltaColumns = []struct {
	column string
	kind   DeltaKind
	get    func(model.Property) *float64
}{
	{"units", DeltaCount, func(p model.Property) *float64 { return p.Units }},
	{"year_built", DeltaYears, func(p model.Property) *float64 { return p.YearBuilt }},
	{"avg_unit_size", DeltaCount, func(p model.Property) *float64 { return p.AvgUnitSize }},
	{"renovation_year", DeltaYears, func(p model.Property) *float64 { return p.RenovationYear }},
	{"walk_score", DeltaCount, func(p model.Property) *float64 { return p.WalkScore }},
	{"price_per_unit", DeltaCurrency, func(p model.Property) *float64 { return p.PricePerUnit }},
	{"cap_rate", DeltaPercentPoints, func(p model.Property) *float64 { return p.CapRate }},
}

// clone copies the row's score and delta map so the copy can be modified
// without touching r.
func (r Row) clone() Row {
	out := r
	if r.Similarity != nil {
		score := *r.Similarity
		out.Similarity = &score
	}
	out.Deltas = maps.Clone(r.Deltas)
	return out
}

// Deltas returns the per-column "vs subject" annotations for comp. Columns
// where either side is missing are omitted.
func Deltas(comp, subject model.Property) map[string]string {
	out := make(map[string]string, len(deltaColumns))
	for _, col := range deltaColumns {
		if d, ok := Delta(col.get(comp), col.get(subject), col.kind); ok {
			out[col.column] = d
		}
	}
	return out
}

// RankSales filters the sale comps, orders them by descending similarity
// (ties keep input order) and prepends the subject row.
func RankSales(subject model.Property, all []model.Property, f Filter, w config.SimilarityConfig, now time.Time) []Row {
	candidates := FilterSales(all, f, now)

	rows := make([]Row, 0, len(candidates)+1)
	for _, c := range candidates {
		score := Similarity(c, subject, w)
		rows = append(rows, Row{
			Property:   c,
			Similarity: &score,
			Deltas:     Deltas(c, subject),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return *rows[i].Similarity > *rows[j].Similarity
	})

	subjectRow := Row{Property: subject, IsSubject: true}
	subjectRow.DistanceMiles = model.Float(0)
	return append([]Row{subjectRow}, rows...)
}
