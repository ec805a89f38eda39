package comps

import (
	"strings"
	"time"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// MarketAll is the market sentinel that disables market filtering.
const MarketAll = "All"

// Filter narrows a comp set before scoring. All rules are AND-combined.
type Filter struct {
	Market        string   `json:"market"`                 // "All" or empty disables
	MaxDistance   *float64 `json:"max_distance,omitempty"` // inclusive; nil disables; comps without a distance pass
	RecencyMonths int      `json:"recency_months"`         // 0 disables
}

// dateLayouts are the accepted comp date formats.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// ParseCompDate parses a fixture date. ok is false for empty or malformed values.
func ParseCompDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WithinMonths reports whether date falls on or after now minus months.
// Future dates pass; missing or unparseable dates never do.
func WithinMonths(date string, months int, now time.Time) bool {
	d, ok := ParseCompDate(date)
	if !ok {
		return false
	}
	cutoff := now.AddDate(0, -months, 0)
	return !d.Before(cutoff)
}

func (f Filter) keep(market string, distance *float64, date string, now time.Time) bool {
	if f.Market != "" && f.Market != MarketAll && market != f.Market {
		return false
	}
	if f.MaxDistance != nil && distance != nil && *distance > *f.MaxDistance {
		return false
	}
	if f.RecencyMonths > 0 && !WithinMonths(date, f.RecencyMonths, now) {
		return false
	}
	return true
}

// FilterSales returns the sale comps passing f, in input order.
func FilterSales(all []model.Property, f Filter, now time.Time) []model.Property {
	out := make([]model.Property, 0, len(all))
	for _, c := range all {
		if f.keep(c.Market, c.DistanceMiles, c.SaleDate, now) {
			out = append(out, c)
		}
	}
	return out
}

// FilterRent returns the rent comps passing f, in input order.
func FilterRent(all []model.RentComp, f Filter, now time.Time) []model.RentComp {
	out := make([]model.RentComp, 0, len(all))
	for _, c := range all {
		if f.keep(c.Market, c.DistanceMi, c.CompDate, now) {
			out = append(out, c)
		}
	}
	return out
}

// Options lists the filter choices offered for a comp set.
type Options struct {
	Markets   []string  `json:"markets"`
	Distances []float64 `json:"distances"`
	Months    []int     `json:"months"`
}

// FilterOptions builds the market list ("All" first, then distinct markets in
// first-seen order across sale and rent comps) plus the fixed distance and
// recency choices.
func FilterOptions(sales []model.Property, rents []model.RentComp) Options {
	seen := map[string]bool{MarketAll: true}
	markets := []string{MarketAll}
	add := func(m string) {
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		markets = append(markets, m)
	}
	for _, s := range sales {
		add(s.Market)
	}
	for _, r := range rents {
		add(r.Market)
	}
	return Options{
		Markets:   markets,
		Distances: []float64{1, 3, 5, 10},
		Months:    []int{6, 12, 24, 36},
	}
}
