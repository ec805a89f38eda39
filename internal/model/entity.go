package model

import "time"

// SearchStatus is the per-entity screening state. It only moves forward
// during a run: Not yet run -> In Progress -> Complete.
type SearchStatus string

const (
	SearchNotRun     SearchStatus = "Not yet run"
	SearchInProgress SearchStatus = "In Progress"
	SearchComplete   SearchStatus = "Complete"
)

// Rank orders statuses so callers can assert forward-only movement.
func (s SearchStatus) Rank() int {
	switch s {
	case SearchInProgress:
		return 1
	case SearchComplete:
		return 2
	default:
		return 0
	}
}

// RiskLevel is the analyst-facing risk bucket for an entity or finding.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Flagged reports whether the level warrants analyst attention.
func (r RiskLevel) Flagged() bool {
	return r == RiskMedium || r == RiskHigh
}

// Entity source tags.
const (
	SourceBorrowerIntake = "Borrower intake"
	SourceDealRecord     = "Deal record"
)

// OwnershipNotApplicable is shown for entities without an ownership stake.
const OwnershipNotApplicable = "—"

// Entity type vocabulary offered on manual intake.
var EntityTypeOptions = []string{
	"LLC",
	"Individual",
	"Management Company",
	"Holding Company",
	"SPV",
	"Equity Partner",
}

// RoleOptions is the role-in-deal vocabulary offered on manual intake.
var RoleOptions = []string{
	"Borrower",
	"Sponsor",
	"Guarantor",
	"Managing Member",
	"Principal",
	"Equity Partner",
}

// BorrowerTypes lists the entity types shown on the borrower overview.
var BorrowerTypes = []string{
	"Borrower",
	"Holding Company",
	"Individual",
	"LLC",
	"Management Company",
	"SPV",
	"Managing Member",
	"Guarantor",
	"Principal",
	"Equity Partner",
}

// PriorDeal is a past screening record attached to an entity.
type PriorDeal struct {
	DealName       string `json:"deal_name" yaml:"deal_name"`
	CloseDate      string `json:"close_date" yaml:"close_date"`
	ScreeningDate  string `json:"screening_date" yaml:"screening_date"`
	OutcomeSummary string `json:"outcome_summary" yaml:"outcome_summary"`
}

// Entity is any borrower, sponsor, guarantor, property or related party
// tracked for screening.
type Entity struct {
	ID               int          `json:"id" yaml:"id"`
	Name             string       `json:"name" yaml:"name"`
	Type             string       `json:"type" yaml:"type"`
	RoleInDeal       string       `json:"role_in_deal" yaml:"role_in_deal"`
	OwnershipPct     string       `json:"ownership_pct" yaml:"ownership_pct"`
	IsGuarantor      bool         `json:"is_guarantor" yaml:"is_guarantor"`
	Source           string       `json:"source" yaml:"source"`
	SearchStatus     SearchStatus `json:"search_status" yaml:"search_status"`
	RiskLevel        RiskLevel    `json:"risk_level" yaml:"risk_level"`
	PriorScreening   string       `json:"prior_screening" yaml:"prior_screening"`
	PriorDeals       []PriorDeal  `json:"prior_deals" yaml:"prior_deals"`
	Imported         bool         `json:"imported" yaml:"-"`
	ImportedFindings []Finding    `json:"imported_findings" yaml:"-"`
	UWNotes          string       `json:"uw_notes" yaml:"uw_notes"`
	CreatedAt        time.Time    `json:"created_at" yaml:"created_at"`
}

// ApplyDefaults fills unset optional fields with their defined defaults.
// It is evaluated once when an entity enters the store.
func (e *Entity) ApplyDefaults() {
	if e.RoleInDeal == "" {
		e.RoleInDeal = e.Type
	}
	if e.OwnershipPct == "" {
		e.OwnershipPct = OwnershipNotApplicable
	}
	if e.Source == "" {
		e.Source = SourceDealRecord
	}
	if e.SearchStatus == "" {
		e.SearchStatus = SearchNotRun
	}
	if e.RiskLevel == "" {
		e.RiskLevel = RiskLow
	}
	if e.PriorScreening == "" {
		e.PriorScreening = "No"
	}
	if e.PriorDeals == nil {
		e.PriorDeals = []PriorDeal{}
	}
	if e.ImportedFindings == nil {
		e.ImportedFindings = []Finding{}
	}
}

// HasPriorDeal reports whether any of the entity's prior deals is named in deals.
func (e *Entity) HasPriorDeal(deals map[string]bool) bool {
	for _, pd := range e.PriorDeals {
		if deals[pd.DealName] {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out of the store.
func (e Entity) Clone() Entity {
	out := e
	out.PriorDeals = append([]PriorDeal(nil), e.PriorDeals...)
	out.ImportedFindings = append([]Finding(nil), e.ImportedFindings...)
	if out.PriorDeals == nil {
		out.PriorDeals = []PriorDeal{}
	}
	if out.ImportedFindings == nil {
		out.ImportedFindings = []Finding{}
	}
	return out
}
