package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) screeningStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Status())
}

func (s *Server) startRun(w http.ResponseWriter, _ *http.Request) {
	run, started, err := s.store.StartRun()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":  run.ID(),
		"started": started,
		"status":  s.store.Status(),
	})
}

func (s *Server) terms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.termsBody(s.store.Terms()))
}

func (s *Server) termsBody(all []string) map[string]any {
	return map[string]any{
		"terms":  all,
		"custom": s.store.CustomTerms(),
	}
}

func (s *Server) addTerm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Term string `json:"term"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	all, err := s.store.AddTerm(body.Term)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.termsBody(all))
}

func (s *Server) removeTerm(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.RemoveTerm(chi.URLParam(r, "term"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.termsBody(all))
}
