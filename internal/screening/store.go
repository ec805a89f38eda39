// Package screening holds the deal's tracked entities and drives the
// reputation-risk screening workflow over them.
package screening

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/fixtures"
	"github.com/sells-group/underwrite-cli/internal/model"
)

// Config controls screening behavior.
type Config struct {
	// RunLatency is the simulated duration of a screening run. Default: 2s.
	RunLatency time.Duration

	// DefaultTerms are always searched. Default: Litigation, Financial Crime,
	// Regulatory Action, Sanctions, Fraud.
	DefaultTerms []string
}

// DefaultConfig returns the standard screening settings.
func DefaultConfig() Config {
	return Config{
		RunLatency:   2 * time.Second,
		DefaultTerms: []string{"Litigation", "Financial Crime", "Regulatory Action", "Sanctions", "Fraud"},
	}
}

// Recorder receives screening activity for metrics.
type Recorder interface {
	RunStarted()
	RunCompleted(d time.Duration)
	EntityAdded(source string)
	FindingsImported(mode string, n int)
}

type nopRecorder struct{}

func (nopRecorder) RunStarted()                  {}
func (nopRecorder) RunCompleted(time.Duration)   {}
func (nopRecorder) EntityAdded(string)           {}
func (nopRecorder) FindingsImported(string, int) {}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock driving timestamps and the run timer.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithRiskAssigner sets how new entities get their initial risk level.
func WithRiskAssigner(fn func() model.RiskLevel) Option {
	return func(s *Store) {
		if fn != nil {
			s.assignRisk = fn
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// defaultRisk marks 80% of new entities Low and the rest Medium.
func defaultRisk() model.RiskLevel {
	if rand.Float64() < 0.8 {
		return model.RiskLow
	}
	return model.RiskMedium
}

// Store is the process-scoped entity and screening state. It is constructed
// once from the seed catalog and mutated only through its methods.
type Store struct {
	cfg        Config
	clock      clockwork.Clock
	assignRisk func() model.RiskLevel
	recorder   Recorder

	mu          sync.Mutex
	closed      bool
	entities    []model.Entity
	live        map[string][]model.Finding
	prior       map[string][]model.Finding
	annotations map[string]model.FindingAnnotation

	state         RunState
	current       *Run
	timer         clockwork.Timer
	generation    uint64
	lastCompleted time.Time
	newDetected   bool

	customTerms  []string
	lastRunTerms []string
	bulkDeals    []string
}

// New builds a Store from the catalog. Entity defaults are applied here,
// once.
func New(cat *fixtures.Catalog, cfg Config, opts ...Option) *Store {
	if cfg.RunLatency < 0 {
		cfg.RunLatency = 0
	}
	if cfg.DefaultTerms == nil {
		cfg.DefaultTerms = DefaultConfig().DefaultTerms
	}

	s := &Store{
		cfg:         cfg,
		clock:       clockwork.NewRealClock(),
		assignRisk:  defaultRisk,
		recorder:    nopRecorder{},
		live:        fixtures.FindingsByEntity(cat.LiveFindings),
		prior:       fixtures.FindingsByEntity(cat.PriorFindings),
		annotations: make(map[string]model.FindingAnnotation),
		state:       RunNotStarted,
		newDetected: true,
	}
	for _, o := range opts {
		o(s)
	}

	s.entities = make([]model.Entity, 0, len(cat.Entities))
	for _, e := range cat.Entities {
		e = e.Clone()
		e.ApplyDefaults()
		s.entities = append(s.entities, e)
	}
	return s
}

// Entities returns a copy of every tracked entity in intake order.
func (s *Store) Entities() []model.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Entity, len(s.entities))
	for i, e := range s.entities {
		out[i] = e.Clone()
	}
	return out
}

// Get returns one entity by id.
func (s *Store) Get(id int) (model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.find(id)
	if err != nil {
		return model.Entity{}, err
	}
	return e.Clone(), nil
}

// EntityView is an entity as listed on the screening page.
type EntityView struct {
	model.Entity
	IsNew bool `json:"is_new"`
}

// ListFilter narrows and pages the entity list.
type ListFilter struct {
	Query       string // case-insensitive name substring
	OnlyFlagged bool   // Medium or High risk only
	Page        int    // zero-based
	PerPage     int    // default 10
}

// ListResult is one page of entities plus the filtered total.
type ListResult struct {
	Entities []EntityView `json:"entities"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PerPage  int          `json:"per_page"`
}

// List returns a filtered page of entities.
func (s *Store) List(f ListFilter) ListResult {
	if f.PerPage <= 0 {
		f.PerPage = 10
	}
	if f.Page < 0 {
		f.Page = 0
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []EntityView
	for _, e := range s.entities {
		if query != "" && !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		if f.OnlyFlagged && !e.RiskLevel.Flagged() {
			continue
		}
		matched = append(matched, EntityView{Entity: e.Clone(), IsNew: s.isNew(e)})
	}

	res := ListResult{Entities: []EntityView{}, Total: len(matched), Page: f.Page, PerPage: f.PerPage}
	start := f.Page * f.PerPage
	if start >= len(matched) {
		return res
	}
	end := min(start+f.PerPage, len(matched))
	res.Entities = matched[start:end]
	return res
}

// BorrowerRow is an entity as shown on the borrower overview.
type BorrowerRow struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	EntityType   string `json:"entity_type"`
	RoleInDeal   string `json:"role_in_deal"`
	OwnershipPct string `json:"ownership_pct"`
	IsGuarantor  bool   `json:"is_guarantor"`
}

// Borrowers returns the entities whose type belongs on the borrower overview.
func (s *Store) Borrowers() []BorrowerRow {
	allowed := make(map[string]bool, len(model.BorrowerTypes))
	for _, t := range model.BorrowerTypes {
		allowed[t] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := []BorrowerRow{}
	for _, e := range s.entities {
		if !allowed[e.Type] {
			continue
		}
		rows = append(rows, BorrowerRow{
			ID:           e.ID,
			Name:         e.Name,
			EntityType:   e.Type,
			RoleInDeal:   e.RoleInDeal,
			OwnershipPct: e.OwnershipPct,
			IsGuarantor:  e.IsGuarantor,
		})
	}
	return rows
}

// NewEntity is the manual intake form.
type NewEntity struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	RoleInDeal   string `json:"role_in_deal"`
	OwnershipPct string `json:"ownership_pct"`
	IsGuarantor  bool   `json:"is_guarantor"`
}

// AddEntity validates the form and adds a new entity that still needs
// screening. Name collisions get " (2)", " (3)", ... appended.
func (s *Store) AddEntity(in NewEntity) (model.Entity, error) {
	name := strings.TrimSpace(in.Name)
	typ := strings.TrimSpace(in.Type)
	role := strings.TrimSpace(in.RoleInDeal)
	if in.IsGuarantor && role == "" {
		role = "Guarantor"
	}

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if typ == "" {
		missing = append(missing, "type")
	}
	if role == "" {
		missing = append(missing, "role_in_deal")
	}
	if len(missing) > 0 {
		return model.Entity{}, eris.Wrapf(ErrValidation, "missing %s", strings.Join(missing, ", "))
	}

	ownership := strings.TrimSpace(in.OwnershipPct)
	if typ == "Individual" || ownership == "" {
		ownership = model.OwnershipNotApplicable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Entity{}, ErrStoreClosed
	}

	e := model.Entity{
		ID:           s.nextID(),
		Name:         s.uniqueName(name),
		Type:         typ,
		RoleInDeal:   role,
		OwnershipPct: ownership,
		IsGuarantor:  in.IsGuarantor,
		Source:       model.SourceBorrowerIntake,
		SearchStatus: model.SearchNotRun,
		RiskLevel:    s.assignRisk(),
		CreatedAt:    s.clock.Now(),
	}
	e.ApplyDefaults()
	s.entities = append(s.entities, e)
	s.newDetected = true
	s.recorder.EntityAdded("manual")

	zap.L().Info("screening: entity added",
		zap.Int("id", e.ID),
		zap.String("name", e.Name),
		zap.String("type", e.Type),
	)
	return e.Clone(), nil
}

// intakeBatch is the canned result of parsing a borrower package.
var intakeBatch = []struct{ name, typ string }{
	{"Riverside Holdings LLC", "LLC"},
	{"Alicia Grant", "Individual"},
}

// Intake simulates processing an uploaded borrower package. Document parsing
// is not implemented: the file is ignored and a fixed two-entity batch is
// added.
func (s *Store) Intake(filename string) ([]model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	now := s.clock.Now()
	added := make([]model.Entity, 0, len(intakeBatch))
	for _, b := range intakeBatch {
		e := model.Entity{
			ID:             s.nextID(),
			Name:           s.uniqueName(b.name),
			Type:           b.typ,
			Source:         model.SourceBorrowerIntake,
			SearchStatus:   model.SearchNotRun,
			RiskLevel:      model.RiskLow,
			PriorScreening: "No",
			CreatedAt:      now,
		}
		e.ApplyDefaults()
		s.entities = append(s.entities, e)
		added = append(added, e.Clone())
		s.recorder.EntityAdded("intake")
	}
	s.newDetected = true

	zap.L().Info("screening: intake processed",
		zap.String("file", filename),
		zap.Int("entities_added", len(added)),
	)
	return added, nil
}

// SetNotes replaces an entity's underwriting notes.
func (s *Store) SetNotes(id int, notes string) (model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Entity{}, ErrStoreClosed
	}

	e, err := s.find(id)
	if err != nil {
		return model.Entity{}, err
	}
	e.UWNotes = notes
	return e.Clone(), nil
}

// find returns a pointer into s.entities. Caller holds s.mu.
func (s *Store) find(id int) (*model.Entity, error) {
	for i := range s.entities {
		if s.entities[i].ID == id {
			return &s.entities[i], nil
		}
	}
	return nil, eris.Wrapf(ErrNotFound, "entity %d", id)
}

// nextID is max(existing)+1, or 1 for an empty store. Caller holds s.mu.
func (s *Store) nextID() int {
	maxID := 0
	for _, e := range s.entities {
		maxID = max(maxID, e.ID)
	}
	return maxID + 1
}

// uniqueName resolves case-insensitive collisions. Caller holds s.mu.
func (s *Store) uniqueName(name string) string {
	taken := make(map[string]bool, len(s.entities))
	for _, e := range s.entities {
		taken[strings.ToLower(strings.TrimSpace(e.Name))] = true
	}
	if !taken[strings.ToLower(name)] {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

// isNew reports whether e arrived after the last completed run. Caller holds s.mu.
func (s *Store) isNew(e model.Entity) bool {
	return !e.CreatedAt.IsZero() && e.CreatedAt.After(s.lastCompleted)
}

// IsNew reports whether the entity arrived after the last completed run.
func (s *Store) IsNew(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.find(id)
	if err != nil {
		return false, err
	}
	return s.isNew(*e), nil
}
