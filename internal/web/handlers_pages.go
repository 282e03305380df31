package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/partsbin/internal/core"
	"github.com/JonMunkholm/partsbin/internal/web/templates"
)

// handleIndex renders the inventory page. ?edit=new opens an empty form,
// ?edit={id} prefills it from the part.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := viewQueryFrom(r)
	data := templates.PageData{
		Query:        q,
		View:         s.service.List(q),
		Vocabularies: core.Vocabularies(),
		Notice:       r.URL.Query().Get("notice"),
	}

	switch edit := r.URL.Query().Get("edit"); edit {
	case "":
	case "new":
		data.Edit = &core.RecordInput{}
	default:
		rec, err := s.service.Get(edit)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		in := core.InputFromRecord(rec)
		data.Edit = &in
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.InventoryPage(data).Render(r.Context(), w); err != nil {
		s.logger.Error("render inventory page", "error", err)
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string                   `json:"status"`
	Records int                      `json:"records"`
	Imports core.ImportLimiterStatus `json:"imports"`
	Uptime  string                   `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Records: len(s.service.Records()),
		Imports: s.service.Limiter().Status(),
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func viewQueryFrom(r *http.Request) core.ViewQuery {
	q := r.URL.Query()
	return core.ViewQuery{
		Search:   q.Get("q"),
		LowStock: truthy(q.Get("low")),
	}
}

// truthy accepts the values browsers and scripts send for a checked flag.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// redirectHome sends a browser back to the page after a form post.
func redirectHome(w http.ResponseWriter, r *http.Request, notice string) {
	target := "/"
	if notice != "" {
		target += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
