package screening

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// ImportPriorFindings attaches the entity's prior findings to it. Findings
// already attached are skipped, so repeated imports change nothing. Returns
// the updated entity and the number of findings added.
func (s *Store) ImportPriorFindings(id int) (model.Entity, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Entity{}, 0, ErrStoreClosed
	}

	e, err := s.find(id)
	if err != nil {
		return model.Entity{}, 0, err
	}
	added := s.importInto(e)
	s.recorder.FindingsImported("single", added)

	zap.L().Info("screening: prior findings imported",
		zap.Int("id", e.ID),
		zap.String("name", e.Name),
		zap.Int("added", added),
	)
	return e.Clone(), added, nil
}

// importInto copies prior findings for e's key, dedup by id. Caller holds s.mu.
func (s *Store) importInto(e *model.Entity) int {
	have := make(map[string]bool, len(e.ImportedFindings))
	for _, f := range e.ImportedFindings {
		have[f.ID] = true
	}
	added := 0
	for _, f := range s.prior[e.Name] {
		if have[f.ID] {
			continue
		}
		e.ImportedFindings = append(e.ImportedFindings, f)
		have[f.ID] = true
		added++
	}
	e.Imported = true
	return added
}

// BulkResult summarizes a bulk import.
type BulkResult struct {
	Deals            []string `json:"deals"`
	EntityIDs        []int    `json:"entity_ids"`
	FindingsImported int      `json:"findings_imported"`
}

// BulkImport imports prior findings for every entity with a prior deal in
// dealNames. The imported set becomes exactly those entities: entities that
// do not qualify lose any previously imported findings.
func (s *Store) BulkImport(dealNames []string) (BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return BulkResult{}, ErrStoreClosed
	}

	selected := make(map[string]bool, len(dealNames))
	for _, d := range dealNames {
		selected[d] = true
	}

	res := BulkResult{Deals: append([]string{}, dealNames...), EntityIDs: []int{}}
	for i := range s.entities {
		e := &s.entities[i]
		if !e.HasPriorDeal(selected) {
			e.Imported = false
			e.ImportedFindings = []model.Finding{}
			continue
		}
		res.FindingsImported += s.importInto(e)
		res.EntityIDs = append(res.EntityIDs, e.ID)
	}
	s.bulkDeals = append([]string{}, dealNames...)
	s.recorder.FindingsImported("bulk", res.FindingsImported)

	zap.L().Info("screening: bulk import",
		zap.Strings("deals", dealNames),
		zap.Int("entities", len(res.EntityIDs)),
		zap.Int("findings", res.FindingsImported),
	)
	return res, nil
}

// BulkSelection returns the deals of the last bulk import, or every prior
// deal name when no bulk import has happened.
func (s *Store) BulkSelection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.bulkDeals) > 0 {
		return append([]string{}, s.bulkDeals...)
	}
	deals := s.priorDeals()
	names := make([]string, len(deals))
	for i, d := range deals {
		names[i] = d.DealName
	}
	return names
}

// PriorDeals returns distinct prior deals across all entities, newest
// screening first.
func (s *Store) PriorDeals() []model.PriorDeal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priorDeals()
}

func (s *Store) priorDeals() []model.PriorDeal {
	seen := make(map[string]bool)
	deals := []model.PriorDeal{}
	for _, e := range s.entities {
		for _, pd := range e.PriorDeals {
			if seen[pd.DealName] {
				continue
			}
			seen[pd.DealName] = true
			deals = append(deals, pd)
		}
	}
	// ISO dates sort lexically.
	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].ScreeningDate > deals[j].ScreeningDate
	})
	return deals
}

// Findings returns the entity's live findings followed by its imported
// prior findings, each with its annotation.
func (s *Store) Findings(id int) ([]model.FindingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.find(id)
	if err != nil {
		return nil, err
	}

	views := []model.FindingView{}
	for _, f := range s.live[e.Name] {
		views = append(views, model.FindingView{
			Finding:           f,
			FindingAnnotation: s.annotations[f.ID],
			Imported:          e.Imported,
		})
	}
	for _, f := range e.ImportedFindings {
		views = append(views, model.FindingView{
			Finding:           f,
			FindingAnnotation: s.annotations[f.ID],
			Imported:          true,
		})
	}
	return views, nil
}

// AnnotateFinding records analyst triage for one of the entity's findings.
func (s *Store) AnnotateFinding(id int, findingID string, falsePositive bool, note string) (model.FindingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.FindingView{}, ErrStoreClosed
	}

	e, err := s.find(id)
	if err != nil {
		return model.FindingView{}, err
	}

	view, ok := s.lookupFinding(e, findingID)
	if !ok {
		return model.FindingView{}, eris.Wrapf(ErrNotFound, "finding %q on entity %d", findingID, id)
	}
	ann := model.FindingAnnotation{IsFalsePositive: falsePositive, Note: note}
	s.annotations[findingID] = ann
	view.FindingAnnotation = ann
	return view, nil
}

// lookupFinding finds one of e's visible findings. Caller holds s.mu.
func (s *Store) lookupFinding(e *model.Entity, findingID string) (model.FindingView, bool) {
	for _, f := range s.live[e.Name] {
		if f.ID == findingID {
			return model.FindingView{Finding: f, Imported: e.Imported}, true
		}
	}
	for _, f := range e.ImportedFindings {
		if f.ID == findingID {
			return model.FindingView{Finding: f, Imported: true}, true
		}
	}
	return model.FindingView{}, false
}
