package model

// Property is a multifamily asset: either the subject under underwriting or a
// sale comparable. Comparable numeric fields are optional; a nil value means
// the attribute is unknown for that property.
type Property struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Address       string   `json:"address,omitempty" yaml:"address"`
	City          string   `json:"city,omitempty" yaml:"city"`
	State         string   `json:"state,omitempty" yaml:"state"`
	Region        string   `json:"region,omitempty" yaml:"region"`
	Market        string   `json:"market" yaml:"market"`
	Submarket     string   `json:"submarket,omitempty" yaml:"submarket"`
	PropertyClass string   `json:"property_class,omitempty" yaml:"property_class"`
	Amenities     []string `json:"amenities,omitempty" yaml:"amenities"`

	DistanceMiles  *float64 `json:"distance_miles" yaml:"distance_miles"`
	Units          *float64 `json:"units" yaml:"units"`
	YearBuilt      *float64 `json:"year_built" yaml:"year_built"`
	RenovationYear *float64 `json:"renovation_year,omitempty" yaml:"renovation_year"`
	AvgUnitSize    *float64 `json:"avg_unit_size" yaml:"avg_unit_size"` // square feet
	Occupancy      *float64 `json:"occupancy,omitempty" yaml:"occupancy"`
	WalkScore      *float64 `json:"walk_score" yaml:"walk_score"`

	PricePerUnit *float64 `json:"price_per_unit" yaml:"price_per_unit"`
	CapRate      *float64 `json:"cap_rate" yaml:"cap_rate"` // percent, e.g. 5.4
	SalePrice    *float64 `json:"sale_price,omitempty" yaml:"sale_price"`
	SaleDate     string   `json:"sale_date,omitempty" yaml:"sale_date"` // ISO date; may be empty
}

// RentComp is a rental comparable. Rent comps are filtered but never scored.
type RentComp struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Market      string   `json:"market" yaml:"market"`
	DistanceMi  *float64 `json:"distance_mi" yaml:"distance_mi"`
	Units       *float64 `json:"units" yaml:"units"`
	AvgRent     *float64 `json:"avg_rent" yaml:"avg_rent"`
	RentPSF     *float64 `json:"rent_psf" yaml:"rent_psf"`
	OccPct      *float64 `json:"occ_pct" yaml:"occ_pct"`
	Concessions string   `json:"concessions,omitempty" yaml:"concessions"`
	CompDate    string   `json:"comp_date,omitempty" yaml:"comp_date"`
}

// Deal summarizes the transaction under underwriting.
type Deal struct {
	Name       string  `json:"name" yaml:"name"`
	Borrower   string  `json:"borrower" yaml:"borrower"`
	LoanAmount float64 `json:"loan_amount" yaml:"loan_amount"`
	Stage      string  `json:"stage" yaml:"stage"`
	Region     string  `json:"region" yaml:"region"`
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 { return &v }
