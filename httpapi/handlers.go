package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/blockdoc/block"
	"github.com/hazyhaar/blockdoc/docimport"
	"github.com/hazyhaar/blockdoc/drafts"
	"github.com/hazyhaar/blockdoc/kit"
	"github.com/hazyhaar/blockdoc/sanitize"
)

// multipartMemory is how much of an upload ParseMultipartForm keeps in
// memory before spilling to a temporary file.
const multipartMemory = 32 << 20

type importResponse struct {
	*docimport.Result
	Draft *drafts.Draft `json:"draft,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFrom(ctx)

	save := drafts.Type(r.URL.Query().Get("save"))
	if save != "" {
		if !save.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Errorf("save must be email or webpage, got %q", save))
			return
		}
		if s.drafts == nil {
			writeError(w, http.StatusServiceUnavailable, errNoStore)
			return
		}
	}

	// Multipart framing adds a little over the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.imp.Config().MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeImportError(w, &docimport.Error{
			Kind:    docimport.KindReadFailure,
			Message: "could not read upload: " + err.Error(),
			Err:     err,
		})
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeImportError(w, &docimport.Error{
			Kind:    docimport.KindReadFailure,
			Message: `missing multipart field "file"`,
		})
		return
	}

	res, err := s.imp.ImportNamed(ctx, docimport.MultipartFile(files[0]))
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("httpapi: import canceled", "file", files[0].Filename)
			return
		}
		writeImportError(w, err)
		return
	}

	resp := importResponse{Result: res}
	if save != "" {
		d, err := s.drafts.Create(ctx, res.Name, save, res.Document)
		if err != nil {
			logger.Error("httpapi: save imported draft", "error", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.Draft = d
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML string `json:"html"`
	}
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"html": sanitize.Clean(req.HTML),
		"text": sanitize.PlainText(req.HTML),
	})
}

// --- Drafts ---

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	list, err := s.drafts.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string          `json:"name"`
		Type drafts.Type     `json:"type"`
		Data *block.Document `json:"data"`
	}
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := s.drafts.Create(r.Context(), req.Name, req.Type, req.Data)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, drafts.ErrInvalidType) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err)
		return
	}
	loggerFrom(r.Context()).Info("httpapi: draft created",
		"draft", d.ID, "type", d.Type, "user", kit.GetUserID(r.Context()))
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.drafts.Get(r.Context(), chi.URLParam(r, "id"))
	s.writeDraft(w, http.StatusOK, d, err)
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var doc block.Document
	if err := s.decodeJSON(w, r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := s.drafts.UpdateData(r.Context(), chi.URLParam(r, "id"), &doc)
	s.writeDraft(w, http.StatusOK, d, err)
}

func (s *Server) handleRenameDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := s.drafts.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	s.writeDraft(w, http.StatusOK, d, err)
}

func (s *Server) handleDuplicateDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.drafts.Duplicate(r.Context(), chi.URLParam(r, "id"))
	s.writeDraft(w, http.StatusCreated, d, err)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	ok, err := s.drafts.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}
	loggerFrom(r.Context()).Info("httpapi: draft deleted",
		"draft", chi.URLParam(r, "id"), "user", kit.GetUserID(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// writeDraft turns the store's (nil, nil) not-found convention into a 404.
func (s *Server) writeDraft(w http.ResponseWriter, code int, d *drafts.Draft, err error) {
	switch {
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	case d == nil:
		writeError(w, http.StatusNotFound, errNotFound)
	default:
		writeJSON(w, code, d)
	}
}
