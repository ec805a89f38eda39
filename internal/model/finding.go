package model

// Finding is a single adverse-media, regulatory or litigation item tied to
// one entity by name.
type Finding struct {
	ID       string    `json:"id" yaml:"id"`
	Entity   string    `json:"entity" yaml:"entity"`
	Title    string    `json:"title" yaml:"title"`
	Category string    `json:"category" yaml:"category"`
	Severity RiskLevel `json:"severity" yaml:"severity"`
	Source   string    `json:"source" yaml:"source"`
	URL      string    `json:"url,omitempty" yaml:"url"`
	DealName string    `json:"deal_name,omitempty" yaml:"deal_name"` // set on prior findings only
}

// FindingAnnotation is analyst triage state for a finding.
type FindingAnnotation struct {
	IsFalsePositive bool   `json:"is_false_positive"`
	Note            string `json:"note,omitempty"`
}

// FindingView is a finding as presented on an entity's findings drawer.
type FindingView struct {
	Finding
	FindingAnnotation
	Imported bool `json:"imported"`
}
