package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/partsbin/internal/core"
	"github.com/JonMunkholm/partsbin/internal/web/templates"
)

// multipartOverhead is allowed on top of the file limit for form framing.
const multipartOverhead = 1 << 20

// handleImport accepts a multipart form (field "file", optional "mode") or a
// raw body named by ?filename=. The service enforces the size limit on the
// file itself.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.service.MaxImportBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	var (
		body     io.Reader
		fileName string
		mode     string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			s.respondError(w, r, formError(err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			s.respondError(w, r, formError(err))
			return
		}
		defer file.Close()

		body, fileName, mode = file, header.Filename, r.FormValue("mode")
	} else {
		if r.ContentLength == 0 {
			s.respondError(w, r, core.ErrNoFile)
			return
		}
		body = r.Body
		fileName = r.URL.Query().Get("filename")
		if fileName == "" {
			fileName = "upload"
		}
		mode = r.URL.Query().Get("mode")
	}

	result, err := s.service.Import(r.Context(), fileName, body, core.ParseImportMode(mode))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !wantsJSON(r) {
		redirectHome(w, r, templates.ImportSummary(result))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// formError classifies a multipart parsing failure.
func formError(err error) error {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
	case errors.Is(err, http.ErrMissingFile):
		return core.ErrNoFile
	default:
		return fmt.Errorf("%w: %v", core.ErrUnreadable, err)
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	writeExport(w, s.service.ExportCSV())
}

// handleExportJSON uses ?vocab=, falling back to the configured default.
func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	vocab := r.URL.Query().Get("vocab")
	if vocab == "" {
		vocab = s.cfg.Export.Vocabulary
	}
	exp, err := s.service.ExportJSON(vocab)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeExport(w, exp)
}

func writeExport(w http.ResponseWriter, exp core.Export) {
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.FileName))
	w.Header().Set("X-Record-Count", strconv.Itoa(exp.Records))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Body)
}

// VocabularyResponse describes one export vocabulary.
type VocabularyResponse struct {
	Key   string            `json:"key"`
	Label string            `json:"label"`
	Keys  map[string]string `json:"keys"`
}

func (s *Server) handleVocabularies(w http.ResponseWriter, r *http.Request) {
	vocabs := core.Vocabularies()
	out := make([]VocabularyResponse, 0, len(vocabs))
	for _, v := range vocabs {
		keys := make(map[string]string, len(core.Fields))
		for _, f := range core.Fields {
			keys[string(f)] = v.KeyFor(f)
		}
		out = append(out, VocabularyResponse{Key: v.Key, Label: v.Label, Keys: keys})
	}
	writeJSON(w, http.StatusOK, out)
}
