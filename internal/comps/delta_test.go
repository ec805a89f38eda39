package comps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name      string
		candidate *float64
		subject   *float64
		kind      DeltaKind
		want      string
		wantOK    bool
	}{
		{"years ahead", f(105), f(100), DeltaYears, "+5 yrs vs subject", true},
		{"years behind", f(95), f(100), DeltaYears, "-5 yrs vs subject", true},
		{"years equal", f(100), f(100), DeltaYears, "0 vs subject", true},
		{"currency missing candidate", nil, f(100), DeltaCurrency, "", false},
		{"currency missing subject", f(100), nil, DeltaCurrency, "", false},
		{"currency thousands up", f(322000), f(310000), DeltaCurrency, "+12k vs subject", true},
		{"currency thousands down", f(298000), f(310000), DeltaCurrency, "-12k vs subject", true},
		{"currency thousands rounds", f(311600), f(310000), DeltaCurrency, "+2k vs subject", true},
		{"currency exactly 1000", f(1000), f(0), DeltaCurrency, "+1k vs subject", true},
		{"currency small up", f(850), f(100), DeltaCurrency, "+$750 vs subject", true},
		{"currency small down", f(100), f(600), DeltaCurrency, "-$500 vs subject", true},
		{"currency negative half rounds up", f(99.5), f(600), DeltaCurrency, "-$500 vs subject", true},
		{"currency positive half rounds up", f(600.5), f(100), DeltaCurrency, "+$501 vs subject", true},
		{"currency tiny negative", f(99.8), f(100), DeltaCurrency, "$0 vs subject", true},
		{"currency equal", f(310000), f(310000), DeltaCurrency, "0 vs subject", true},
		{"percent points up", f(5.7), f(5.4), DeltaPercentPoints, "+0.3 pp vs subject", true},
		{"percent points down", f(4.9), f(5.4), DeltaPercentPoints, "-0.5 pp vs subject", true},
		{"count up", f(240), f(220), DeltaCount, "+20 vs subject", true},
		{"count down", f(96), f(220), DeltaCount, "-124 vs subject", true},
		{"count equal", f(220), f(220), DeltaCount, "0 vs subject", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Delta(tt.candidate, tt.subject, tt.kind)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeltas_OmitsMissingColumns(t *testing.T) {
	s := subject()
	s.RenovationYear = f(2021)
	c := subject()
	c.Units = f(250)
	c.RenovationYear = nil
	c.CapRate = f(5.9)

	d := Deltas(c, s)
	assert.Equal(t, "+30 vs subject", d["units"])
	assert.Equal(t, "+0.5 pp vs subject", d["cap_rate"])
	assert.Equal(t, "0 vs subject", d["year_built"])
	_, ok := d["renovation_year"]
	assert.False(t, ok, "renovation delta needs both sides")
}
