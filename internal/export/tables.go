package export

import (
	"github.com/sells-group/underwrite-cli/internal/comps"
	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/screening"
)

// SalesTable lays out a ranked sale comp set, subject first.
func SalesTable(rows []comps.Row) Table {
	t := Table{
		Name: "Sale Comps",
		Columns: []Column{
			{"Name", KindText},
			{"Market", KindText},
			{"Distance (mi)", KindNumber},
			{"Units", KindNumber},
			{"Year Built", KindNumber},
			{"Avg SF", KindNumber},
			{"Walk Score", KindNumber},
			{"Price/Unit", KindCurrency},
			{"Cap Rate", KindPercent},
			{"Sale Date", KindText},
			{"Similarity", KindNumber},
			{"Price/Unit Delta", KindText},
			{"Cap Rate Delta", KindText},
		},
	}
	for _, r := range rows {
		name := r.Name
		if r.IsSubject {
			name += " (subject)"
		}
		var sim any
		if r.Similarity != nil {
			sim = *r.Similarity
		}
		t.Rows = append(t.Rows, []any{
			name,
			r.Market,
			num(r.DistanceMiles),
			num(r.Units),
			num(r.YearBuilt),
			num(r.AvgUnitSize),
			num(r.WalkScore),
			num(r.PricePerUnit),
			num(r.CapRate),
			r.SaleDate,
			sim,
			r.Deltas["price_per_unit"],
			r.Deltas["cap_rate"],
		})
	}
	return t
}

// RentTable lays out a filtered rent comp set.
func RentTable(rents []model.RentComp) Table {
	t := Table{
		Name: "Rent Comps",
		Columns: []Column{
			{"Name", KindText},
			{"Market", KindText},
			{"Distance (mi)", KindNumber},
			{"Units", KindNumber},
			{"Avg Rent", KindCurrency},
			{"Rent/SF", KindNumber},
			{"Occupancy", KindPercent},
			{"Concessions", KindText},
			{"Comp Date", KindText},
		},
	}
	for _, r := range rents {
		t.Rows = append(t.Rows, []any{
			r.Name,
			r.Market,
			num(r.DistanceMi),
			num(r.Units),
			num(r.AvgRent),
			num(r.RentPSF),
			num(r.OccPct),
			r.Concessions,
			r.CompDate,
		})
	}
	return t
}

// EntityTable lays out screening entities.
func EntityTable(views []screening.EntityView) Table {
	t := Table{
		Name: "Entities",
		Columns: []Column{
			{"ID", KindNumber},
			{"Name", KindText},
			{"Type", KindText},
			{"Role", KindText},
			{"Ownership", KindText},
			{"Guarantor", KindText},
			{"Status", KindText},
			{"Risk", KindText},
			{"Prior Screening", KindText},
			{"New", KindText},
		},
	}
	for _, v := range views {
		t.Rows = append(t.Rows, []any{
			v.ID,
			v.Name,
			v.Type,
			v.RoleInDeal,
			v.OwnershipPct,
			yesNo(v.IsGuarantor),
			string(v.SearchStatus),
			string(v.RiskLevel),
			v.PriorScreening,
			yesNo(v.IsNew),
		})
	}
	return t
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
