// ABOUTME: Web UI server with embedded templates
// ABOUTME: Read-only prospect browser, JSON API, CSV export, and pipeline graph over a session
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/prospect/engine"
	"github.com/harperreed/prospect/export"
	"github.com/harperreed/prospect/models"
	"github.com/harperreed/prospect/session"
	"github.com/harperreed/prospect/viz"
)

//go:embed templates/*
var templatesFS embed.FS

type Server struct {
	session       *session.Session
	templates     *template.Template
	defaultScreen string
	now           func() time.Time
	logger        *log.Logger
}

func NewServer(s *session.Session, defaultScreen string) (*Server, error) {
	if _, err := engine.LookupScreen(defaultScreen); err != nil {
		return nil, err
	}

	funcMap := template.FuncMap{
		"statusLabel":   models.StatusLabel,
		"priorityLabel": models.PriorityLabel,
		"date": func(t *time.Time) string {
			if t == nil {
				return "-"
			}
			return t.Local().Format("02/01/2006")
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("02/01/2006 15:04")
		},
		"reais": func(cents int64) string {
			return fmt.Sprintf("R$ %d,%02d", cents/100, cents%100)
		},
		"deref": func(b *bool) bool {
			return b != nil && *b
		},
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, errors.New("dict needs key/value pairs")
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		session:       s,
		templates:     tmpl,
		defaultScreen: defaultScreen,
		now:           time.Now,
		logger:        log.Default().WithPrefix("web"),
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleProspects)
	mux.HandleFunc("GET /prospects", s.handleProspects)
	mux.HandleFunc("GET /prospects/{id}", s.handleProspectDetail)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /export.csv", s.handleExport)
	mux.HandleFunc("GET /graphs/pipeline.svg", s.handlePipelineGraph)
	mux.HandleFunc("GET /api/prospects", s.handleAPIProspects)
	mux.HandleFunc("GET /api/prospects/{id}", s.handleAPIProspect)
	mux.HandleFunc("GET /api/facets", s.handleAPIFacets)
	mux.HandleFunc("GET /api/screens", s.handleAPIScreens)
	return mux
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("Starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// refresh reloads the snapshot so every request sees the current store.
func (s *Server) refresh(ctx context.Context, w http.ResponseWriter) bool {
	if err := s.session.Refresh(ctx); err != nil {
		s.logger.Error("Failed to refresh prospects", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Error writing response", "err", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// facetChoice is one checkbox in the facet panel.
type facetChoice struct {
	Value   string
	Label   string
	Count   int
	Checked bool
}

// facetGroup is one facet section, keyed by its query parameter.
type facetGroup struct {
	Param   string
	Label   string
	Choices []facetChoice
}

func choices(opts []engine.FacetOption, selected []string) []facetChoice {
	out := make([]facetChoice, len(opts))
	for i, o := range opts {
		out[i] = facetChoice{Value: o.Value, Label: o.Label, Count: o.Count, Checked: slices.Contains(selected, o.Value)}
	}
	return out
}

func facetGroups(screen engine.Screen, f engine.Facets, q engine.Query) []facetGroup {
	candidates := []struct {
		facet engine.Facet
		group facetGroup
	}{
		{engine.FacetProfession, facetGroup{"profession", "Profissão", choices(f.Professions, q.Professions)}},
		{engine.FacetCity, facetGroup{"city", "Cidade", choices(f.Cities, q.Cities)}},
		{engine.FacetState, facetGroup{"state", "Estado", choices(f.States, q.States)}},
		{engine.FacetRating, facetGroup{"rating", "Avaliação", choices(f.Ratings, q.Ratings)}},
		{engine.FacetTag, facetGroup{"tag", "Serviços", choices(f.Tags, q.Tags)}},
		{engine.FacetStatus, facetGroup{"status", "Status", choices(f.Statuses, q.Statuses)}},
		{engine.FacetPriority, facetGroup{"priority", "Prioridade", choices(f.Priorities, q.Priorities)}},
	}

	var groups []facetGroup
	for _, c := range candidates {
		if screen.Exposes(c.facet) && len(c.group.Choices) > 0 {
			groups = append(groups, c.group)
		}
	}
	return groups
}

// sortLink is a clickable column header.
type sortLink struct {
	Label  string
	URL    string
	Active bool
	Desc   bool
}

func sortLinks(r *http.Request, p listParams) []sortLink {
	links := make([]sortLink, 0, len(p.Screen.SortFields))
	for _, f := range p.Screen.SortFields {
		links = append(links, sortLink{
			Label:  f.Label(),
			URL:    sortURL(r.URL.Query(), p.Sort, f),
			Active: p.Sort.Field == f,
			Desc:   p.Sort.Field == f && p.Sort.Direction == engine.Desc,
		})
	}
	return links
}

func (s *Server) handleProspects(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query(), s.defaultScreen)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.refresh(r.Context(), w) {
		return
	}

	visible := s.session.Visible(params.Query, params.Sort)
	shown := visible
	if len(shown) > params.Limit {
		shown = shown[:params.Limit]
	}

	data := map[string]any{
		"Title":           params.Screen.Title,
		"ContentTemplate": "prospects-content",
		"Screen":          params.Screen,
		"Screens":         engine.Screens,
		"Query":           params.Query,
		"Sort":            params.Sort,
		"SortLinks":       sortLinks(r, params),
		"Facets":          facetGroups(params.Screen, s.session.Facets(), params.Query),
		"ShowContact":     params.Screen.Exposes(engine.FacetContact),
		"ShowPipeline":    params.Screen.Exposes(engine.FacetStatus),
		"Prospects":       shown,
		"Matched":         len(visible),
		"Total":           s.session.Len(),
		"ActiveFilters":   params.Query.ActiveCount(),
		"ExportURL":       "/export.csv?" + r.URL.RawQuery,
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleProspectDetail(w http.ResponseWriter, r *http.Request) {
	if !s.refresh(r.Context(), w) {
		return
	}

	p, err := s.session.Prospect(r.PathValue("id"))
	if errors.Is(err, session.ErrUnknownProspect) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	interactions, err := s.session.Interactions(r.Context(), p.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Title":           p.DisplayName(),
		"ContentTemplate": "detail-content",
		"Prospect":        &p,
		"Tags":            p.Tags(),
		"Interactions":    interactions,
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !s.refresh(r.Context(), w) {
		return
	}

	stats := viz.GenerateDashboardStats(s.session.Snapshot(), s.now())
	data := map[string]any{
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
		"Stats":           stats,
		"Statuses":        models.Statuses,
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query(), s.defaultScreen)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	layoutName := r.URL.Query().Get("layout")
	if layoutName == "" && params.Screen.Name == engine.ScreenCRM.Name {
		layoutName = string(export.LayoutCRM)
	}
	layout, err := export.ParseLayout(layoutName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.refresh(r.Context(), w) {
		return
	}

	visible := s.session.Visible(params.Query, params.Sort)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", layout.Filename(s.now())))
	if err := export.WriteCSV(w, visible, layout); err != nil {
		s.logger.Error("CSV export failed", "err", err)
	}
}

func (s *Server) handlePipelineGraph(w http.ResponseWriter, r *http.Request) {
	if !s.refresh(r.Context(), w) {
		return
	}

	svg, err := viz.NewGraphGenerator(s.session.Snapshot()).PipelineSVG(8)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(svg); err != nil {
		s.logger.Error("Error writing response", "err", err)
	}
}

// listResponse is the JSON body of /api/prospects.
type listResponse struct {
	Screen    string            `json:"screen"`
	Query     engine.Query      `json:"query"`
	Sort      engine.Sort       `json:"sort"`
	Total     int               `json:"total"`
	Matched   int               `json:"matched"`
	Prospects []models.Prospect `json:"prospects"`
}

func (s *Server) handleAPIProspects(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query(), s.defaultScreen)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err)
		return
	}
	if !s.refresh(r.Context(), w) {
		return
	}

	visible := s.session.Visible(params.Query, params.Sort)
	shown := visible
	if len(shown) > params.Limit {
		shown = shown[:params.Limit]
	}
	s.writeJSON(w, http.StatusOK, listResponse{
		Screen:    params.Screen.Name,
		Query:     params.Query,
		Sort:      params.Sort,
		Total:     s.session.Len(),
		Matched:   len(visible),
		Prospects: shown,
	})
}

func (s *Server) handleAPIProspect(w http.ResponseWriter, r *http.Request) {
	if !s.refresh(r.Context(), w) {
		return
	}

	p, err := s.session.Prospect(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusNotFound, err)
		return
	}
	interactions, err := s.session.Interactions(r.Context(), p.ID)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"prospect":     p,
		"interactions": interactions,
	})
}

func (s *Server) handleAPIFacets(w http.ResponseWriter, r *http.Request) {
	if !s.refresh(r.Context(), w) {
		return
	}

	facets := s.session.Facets()
	if r.URL.Query().Get("all_tags") == "yes" {
		facets = s.session.FacetsAll()
	}
	s.writeJSON(w, http.StatusOK, facets)
}

func (s *Server) handleAPIScreens(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, engine.Screens)
}
