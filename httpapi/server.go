// CLAUDE:SUMMARY chi HTTP surface: document import, paste cleanup and draft CRUD, with optional bcrypt Basic auth.
// Package httpapi serves the import pipeline and the draft store over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/blockdoc/docimport"
	"github.com/hazyhaar/blockdoc/drafts"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg    Config
	logger *slog.Logger
	imp    *docimport.Importer
	drafts *drafts.Store
}

// NewServer creates a Server. store may be nil, in which case draft routes
// and ?save= answer 503.
func NewServer(cfg Config, imp *docimport.Importer, store *drafts.Store) *Server {
	cfg.defaults()
	return &Server{cfg: cfg, logger: cfg.Logger, imp: imp, drafts: store}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(headToGet)
	r.Use(securityHeaders)
	r.Use(requestLog(s.logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if s.cfg.Auth.Enabled() {
			r.Use(basicAuth(s.cfg.Auth))
		}

		r.Post("/import", s.handleImport)
		r.Post("/clean", s.handleClean)

		r.Route("/drafts", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.handleListDrafts)
			r.Post("/", s.handleCreateDraft)
			r.Get("/{id}", s.handleGetDraft)
			r.Put("/{id}", s.handleUpdateDraft)
			r.Patch("/{id}", s.handleRenameDraft)
			r.Post("/{id}/duplicate", s.handleDuplicateDraft)
			r.Delete("/{id}", s.handleDeleteDraft)
		})
	})
	return r
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.drafts == nil {
			writeError(w, http.StatusServiceUnavailable, errNoStore)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var (
	errNoStore  = errors.New("draft storage is not configured")
	errNotFound = errors.New("draft not found")
)

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// importStatus maps an import failure kind to its HTTP status.
func importStatus(kind docimport.Kind) int {
	switch kind {
	case docimport.KindUnsupportedFileType:
		return http.StatusUnsupportedMediaType
	case docimport.KindReadFailure:
		return http.StatusBadRequest
	case docimport.KindDecodeFailure:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeImportError(w http.ResponseWriter, err error) {
	kind := docimport.KindOf(err)
	body := map[string]string{"error": err.Error()}
	if kind != "" {
		body["kind"] = string(kind)
	}
	writeJSON(w, importStatus(kind), body)
}

// decodeJSON reads a capped JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxJSONBody)
	return json.NewDecoder(r.Body).Decode(v)
}
