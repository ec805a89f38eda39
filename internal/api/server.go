// Package api serves the underwriting dashboard over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/underwrite-cli/internal/comps"
	"github.com/sells-group/underwrite-cli/internal/config"
	"github.com/sells-group/underwrite-cli/internal/metrics"
	"github.com/sells-group/underwrite-cli/internal/screening"
)

// maxUploadBytes bounds borrower package uploads.
const maxUploadBytes = 32 << 20

// Server holds the handlers' dependencies.
type Server struct {
	comps         *comps.Service
	store         *screening.Store
	registry      *prometheus.Registry
	corsOrigins   []string
	defaultMonths int
	limiter       *rate.Limiter
}

// New builds a Server. A nil registry serves an empty /metrics.
func New(cfg *config.Config, svc *comps.Service, store *screening.Store, registry *prometheus.Registry) *Server {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	s := &Server{
		comps:         svc,
		store:         store,
		registry:      registry,
		corsOrigins:   cfg.Server.CORSOrigins,
		defaultMonths: cfg.Comps.DefaultMonths,
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	}
	return s
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler(s.registry))

	r.Route("/api", func(r chi.Router) {
		r.Route("/comps", func(r chi.Router) {
			r.Get("/filters", s.compFilters)
			r.Get("/sales", s.saleComps)
			r.Get("/sales/{id}", s.saleComp)
			r.Get("/rent", s.rentComps)
			r.Get("/{id}/notes", s.compNotes)
			r.With(s.limit).Put("/{id}/notes", s.setCompNotes)
		})

		r.Route("/entities", func(r chi.Router) {
			r.Get("/", s.listEntities)
			r.With(s.limit).Post("/", s.addEntity)
			r.Get("/options", s.entityOptions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getEntity)
				r.Get("/findings", s.entityFindings)
				r.Group(func(r chi.Router) {
					r.Use(s.limit)
					r.Put("/notes", s.setEntityNotes)
					r.Put("/findings/{findingID}", s.annotateFinding)
					r.Post("/import", s.importPriorFindings)
				})
			})
		})

		r.Get("/borrowers", s.borrowers)
		r.With(s.limit).Post("/intake", s.intake)
		r.Get("/deals/prior", s.priorDeals)
		r.Get("/imports/bulk", s.bulkSelection)
		r.With(s.limit).Post("/imports/bulk", s.bulkImport)

		r.Route("/screening", func(r chi.Router) {
			r.Get("/", s.screeningStatus)
			r.Get("/terms", s.terms)
			r.Group(func(r chi.Router) {
				r.Use(s.limit)
				r.Post("/run", s.startRun)
				r.Post("/terms", s.addTerm)
				r.Delete("/terms/{term}", s.removeTerm)
			})
		})
	})

	return r
}

// limit rejects requests beyond the configured rate.
func (s *Server) limit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeErrorMsg(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps store errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, screening.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, screening.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, screening.ErrStoreClosed):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("api: unexpected error", zap.Error(err))
	}
	writeErrorMsg(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// entityID parses the {id} path parameter.
func entityID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid entity id")
		return 0, false
	}
	return id, true
}
