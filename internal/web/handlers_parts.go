package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/partsbin/internal/core"
)

// maxPartBody bounds a single part submission.
const maxPartBody = 1 << 20

// partRequest is the JSON body of POST /api/parts. Quantity accepts a number
// or a string so clients can send "7,5" as typed.
type partRequest struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Quantity core.RawValue `json:"quantity"`
	Drawer   string        `json:"drawer"`
	Value    string        `json:"value"`
	Package  string        `json:"package"`
	Notes    string        `json:"notes"`
}

func (p partRequest) input() core.RecordInput {
	return core.RecordInput{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Quantity: p.Quantity.String(),
		Drawer:   p.Drawer,
		Value:    p.Value,
		Package:  p.Package,
		Notes:    p.Notes,
	}
}

func (s *Server) handleListParts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.List(viewQueryFrom(r)))
}

func (s *Server) handleGetPart(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleSavePart creates or updates a part from JSON or a form post.
// PUT /api/parts/{id} requires the part to exist.
func (s *Server) handleSavePart(w http.ResponseWriter, r *http.Request) {
	in, err := decodePartInput(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var (
		rec     core.Record
		created bool
	)
	if id := chi.URLParam(r, "id"); id != "" {
		rec, err = s.service.Update(r.Context(), id, in)
	} else {
		rec, created, err = s.service.Save(r.Context(), in)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !wantsJSON(r) {
		redirectHome(w, r, "")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, rec)
}

func decodePartInput(w http.ResponseWriter, r *http.Request) (core.RecordInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPartBody)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req partRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return core.RecordInput{}, fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
			}
			if errors.Is(err, io.EOF) {
				return core.RecordInput{}, fmt.Errorf("%w: empty body", core.ErrInvalidJSON)
			}
			return core.RecordInput{}, fmt.Errorf("%w: %v", core.ErrInvalidJSON, err)
		}
		return req.input(), nil
	}

	if err := r.ParseForm(); err != nil {
		return core.RecordInput{}, fmt.Errorf("%w: %v", core.ErrUnreadable, err)
	}
	return core.RecordInput{
		ID:       r.PostFormValue("id"),
		Name:     r.PostFormValue("name"),
		Category: r.PostFormValue("category"),
		Quantity: r.PostFormValue("quantity"),
		Drawer:   r.PostFormValue("drawer"),
		Value:    r.PostFormValue("value"),
		Package:  r.PostFormValue("package"),
		Notes:    r.PostFormValue("notes"),
	}, nil
}

// MutationResponse reports the inventory size after a mutation.
type MutationResponse struct {
	ID    string `json:"id,omitempty"`
	Total int    `json:"total"`
}

func (s *Server) handleDeletePart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.mutationDone(w, r, id)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Clear(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.mutationDone(w, r, "")
}

func (s *Server) handleResetSample(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ResetSample(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.mutationDone(w, r, "")
}

func (s *Server) mutationDone(w http.ResponseWriter, r *http.Request, id string) {
	if !wantsJSON(r) {
		redirectHome(w, r, "")
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{ID: id, Total: len(s.service.Records())})
}
