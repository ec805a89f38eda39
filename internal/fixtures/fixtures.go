// Package fixtures loads the read-only seed catalog the workbench runs on.
package fixtures

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/underwrite-cli/internal/model"
)

//go:embed data/catalog.yaml
var embedded []byte

// Catalog is the complete seed data set: the deal, its subject property,
// comps, tracked entities and findings.
type Catalog struct {
	Deal          model.Deal       `yaml:"deal"`
	Subject       model.Property   `yaml:"subject"`
	SaleComps     []model.Property `yaml:"sale_comps"`
	RentComps     []model.RentComp `yaml:"rent_comps"`
	Entities      []model.Entity   `yaml:"entities"`
	LiveFindings  []model.Finding  `yaml:"live_findings"`
	PriorFindings []model.Finding  `yaml:"prior_findings"`
}

// Load returns the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// LoadFile reads a catalog from path. An empty path returns the embedded one.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fixtures: read %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "fixtures: decode catalog")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []string

	if c.Subject.ID == "" {
		errs = append(errs, "subject.id is required")
	}

	compIDs := make(map[string]bool, len(c.SaleComps))
	for _, p := range c.SaleComps {
		if p.ID == "" || p.ID == c.Subject.ID {
			errs = append(errs, "sale comp id must be set and differ from the subject")
			continue
		}
		if compIDs[p.ID] {
			errs = append(errs, "duplicate sale comp id "+p.ID)
		}
		compIDs[p.ID] = true
	}

	entityIDs := make(map[int]bool, len(c.Entities))
	names := make(map[string]bool, len(c.Entities))
	for _, e := range c.Entities {
		if e.ID <= 0 {
			errs = append(errs, "entity ids must be positive: "+e.Name)
		}
		if entityIDs[e.ID] {
			errs = append(errs, "duplicate entity id for "+e.Name)
		}
		entityIDs[e.ID] = true
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if names[key] {
			errs = append(errs, "duplicate entity name "+e.Name)
		}
		names[key] = true
	}

	findingIDs := make(map[string]bool)
	for _, set := range [][]model.Finding{c.LiveFindings, c.PriorFindings} {
		for _, f := range set {
			if f.ID == "" {
				errs = append(errs, "finding id is required: "+f.Title)
				continue
			}
			if findingIDs[f.ID] {
				errs = append(errs, "duplicate finding id "+f.ID)
			}
			findingIDs[f.ID] = true
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("fixtures: invalid catalog: %s", strings.Join(errs, "; "))
	}
	return nil
}

// FindingsByEntity groups findings by entity name, keeping catalog order.
func FindingsByEntity(findings []model.Finding) map[string][]model.Finding {
	out := make(map[string][]model.Finding)
	for _, f := range findings {
		out[f.Entity] = append(out[f.Entity], f)
	}
	return out
}
