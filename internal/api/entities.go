package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/screening"
)

func (s *Server) listEntities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := screening.ListFilter{Query: q.Get("q")}
	if v := q.Get("flagged"); v != "" {
		flagged, err := strconv.ParseBool(v)
		if err != nil {
			writeErrorMsg(w, http.StatusBadRequest, "invalid flagged")
			return
		}
		f.OnlyFlagged = flagged
	}
	for name, dst := range map[string]*int{"page": &f.Page, "per_page": &f.PerPage} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeErrorMsg(w, http.StatusBadRequest, "invalid "+name)
				return
			}
			*dst = n
		}
	}
	writeJSON(w, http.StatusOK, s.store.List(f))
}

func (s *Server) addEntity(w http.ResponseWriter, r *http.Request) {
	var in screening.NewEntity
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := s.store.AddEntity(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// entityOptions lists the vocabularies offered by the manual intake form.
func (s *Server) entityOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"types": model.EntityTypeOptions,
		"roles": model.RoleOptions,
	})
}

func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := entityID(w, r)
	if !ok {
		return
	}
	e, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	isNew, err := s.store.IsNew(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, screening.EntityView{Entity: e, IsNew: isNew})
}

func (s *Server) setEntityNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := entityID(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	e, err := s.store.SetNotes(id, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) entityFindings(w http.ResponseWriter, r *http.Request) {
	id, ok := entityID(w, r)
	if !ok {
		return
	}
	views, err := s.store.Findings(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": views})
}

func (s *Server) annotateFinding(w http.ResponseWriter, r *http.Request) {
	id, ok := entityID(w, r)
	if !ok {
		return
	}
	var body struct {
		IsFalsePositive bool   `json:"is_false_positive"`
		Note            string `json:"note"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	view, err := s.store.AnnotateFinding(id, chi.URLParam(r, "findingID"), body.IsFalsePositive, body.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) importPriorFindings(w http.ResponseWriter, r *http.Request) {
	id, ok := entityID(w, r)
	if !ok {
		return
	}
	e, added, err := s.store.ImportPriorFindings(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entity": e, "added": added})
}

func (s *Server) borrowers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"borrowers": s.store.Borrowers()})
}

// intake accepts a borrower package upload. The document itself is not
// parsed.
func (s *Server) intake(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "missing file")
		return
	}
	_ = file.Close()

	added, err := s.store.Intake(header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entities": added})
}

func (s *Server) priorDeals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"deals": s.store.PriorDeals()})
}

func (s *Server) bulkSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"deals":    s.store.PriorDeals(),
		"selected": s.store.BulkSelection(),
	})
}

func (s *Server) bulkImport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Deals []string `json:"deals"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := s.store.BulkImport(body.Deals)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
