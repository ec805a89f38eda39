package comps

import (
	"fmt"
	"math"
	"strconv"
)

// DeltaKind selects how a difference against the subject is rendered.
type DeltaKind string

const (
	DeltaCount         DeltaKind = "count"
	DeltaYears         DeltaKind = "years"
	DeltaCurrency      DeltaKind = "currency"
	DeltaPercentPoints DeltaKind = "percentPoints"
)

// Delta renders candidate minus subject as a "vs subject" annotation. It
// returns ok == false when either value is absent.
func Delta(candidate, subject *float64, kind DeltaKind) (string, bool) {
	if candidate == nil || subject == nil || math.IsNaN(*candidate) || math.IsNaN(*subject) {
		return "", false
	}
	d := *candidate - *subject
	if d == 0 {
		return "0 vs subject", true
	}
	sign := ""
	if d > 0 {
		sign = "+"
	}

	switch kind {
	case DeltaYears:
		return fmt.Sprintf("%s%s yrs vs subject", sign, formatNumber(d)), true
	case DeltaCurrency:
		if math.Abs(d) >= 1000 {
			return fmt.Sprintf("%s%.0fk vs subject", sign, math.Round(d/1000)), true
		}
		// Halves round up, toward positive infinity.
		n := int(math.Floor(d + 0.5))
		if n < 0 {
			return fmt.Sprintf("-$%d vs subject", -n), true
		}
		return fmt.Sprintf("%s$%d vs subject", sign, n), true
	case DeltaPercentPoints:
		return fmt.Sprintf("%s%.1f pp vs subject", sign, math.Round(d*10)/10), true
	default:
		return fmt.Sprintf("%s%s vs subject", sign, formatNumber(d)), true
	}
}

// formatNumber prints integers without a decimal point and other values with
// the shortest exact representation.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
