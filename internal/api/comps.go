package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/underwrite-cli/internal/comps"
	"github.com/sells-group/underwrite-cli/internal/model"
)

// parseFilter reads market, max_distance and months from the query string.
// An absent months parameter uses the configured default; months=0 disables
// the recency filter.
func (s *Server) parseFilter(r *http.Request) (comps.Filter, error) {
	q := r.URL.Query()
	f := comps.Filter{
		Market:        q.Get("market"),
		RecencyMonths: s.defaultMonths,
	}
	if v := q.Get("max_distance"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || d < 0 {
			return f, eris.New("invalid max_distance")
		}
		f.MaxDistance = model.Float(d)
	}
	if v := q.Get("months"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 0 {
			return f, eris.New("invalid months")
		}
		f.RecencyMonths = m
	}
	return f, nil
}

func (s *Server) compFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.comps.Options())
}

func (s *Server) saleComps(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilter(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": s.comps.Sales(f)})
}

func (s *Server) saleComp(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.comps.Comp(chi.URLParam(r, "id"))
	if !ok {
		writeErrorMsg(w, http.StatusNotFound, "comp not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) rentComps(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilter(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": s.comps.Rent(f)})
}

type noteBody struct {
	Note string `json:"note"`
}

func (s *Server) compNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.comps.Known(id) {
		writeErrorMsg(w, http.StatusNotFound, "comp not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "note": s.comps.Notes().Get(id)})
}

func (s *Server) setCompNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.comps.Known(id) {
		writeErrorMsg(w, http.StatusNotFound, "comp not found")
		return
	}
	var body noteBody
	if !decodeJSON(w, r, &body) {
		return
	}
	s.comps.Notes().Set(id, body.Note)
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "note": s.comps.Notes().Get(id)})
}
