// ABOUTME: Web UI server with embedded templates
// ABOUTME: Provides a read-only dashboard and entity browser at localhost:8080
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/entities"
	"github.com/harperreed/salescrm/handlers"
	"github.com/harperreed/salescrm/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	set       *entities.Set
	records   *handlers.RecordHandlers
	dashboard *dashboard.Service
	templates *template.Template
	logger    *log.Logger
}

func NewServer(set *entities.Set, dash *dashboard.Service, logger *log.Logger) (*Server, error) {
	// Helper functions for templates
	funcMap := template.FuncMap{
		"money":   models.FormatMoney,
		"amount":  models.FormatAmount,
		"subject": dashboard.InteractionSubject,
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"field": func(r handlers.RecordOutput, col string) string {
			return r.Fields[col]
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		set:       set,
		records:   handlers.NewRecordHandlers(set),
		dashboard: dash,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Handler routes the dashboard, list and detail pages.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /{entity}", s.handleList)
	mux.HandleFunc("GET /{entity}/{id}", s.handleDetail)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf("localhost:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Starting web server", "url", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) nav() []string {
	return s.set.Names()
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title":           "Dashboard",
		"Nav":             s.nav(),
		"ContentTemplate": "dashboard-content",
	}

	load := s.dashboard.Load
	if r.URL.Query().Get("refresh") != "" {
		load = s.dashboard.Reload
	}
	stats, err := load(r.Context())
	if err != nil {
		s.logger.Error("dashboard failed", "err", err)
		data["Error"] = dashboard.ErrorMessage
	} else {
		data["Stats"] = stats
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	query := r.URL.Query().Get("q")

	_, out, err := s.records.ListRecords(r.Context(), nil, handlers.ListRecordsInput{
		Entity: r.PathValue("entity"),
		Page:   page,
		Search: query,
	})
	if err != nil {
		if _, lookupErr := s.set.Lookup(r.PathValue("entity")); lookupErr != nil {
			http.Error(w, lookupErr.Error(), http.StatusNotFound)
			return
		}
		s.logger.Error("list failed", "entity", r.PathValue("entity"), "err", err)
	}

	data := map[string]interface{}{
		"Title":           titleCase(r.PathValue("entity")),
		"Nav":             s.nav(),
		"Entity":          r.PathValue("entity"),
		"Query":           query,
		"List":            out,
		"ContentTemplate": "list-content",
	}
	if err != nil {
		data["Error"] = fmt.Sprintf("Failed to load %s", r.PathValue("entity"))
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	t, err := s.set.Lookup(r.PathValue("entity"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	detail, err := t.Detail(r.Context(), id)
	if errors.Is(err, api.ErrNotFound) {
		http.Error(w, fmt.Sprintf("%s not found", t.Name()), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	data := map[string]interface{}{
		"Title":           fmt.Sprintf("%s: %s", t.Name(), detail.Label),
		"Nav":             s.nav(),
		"Entity":          t.Plural(),
		"Detail":          detail,
		"ContentTemplate": "detail-content",
	}
	if q, ok := detail.Record.(models.Quote); ok {
		data["Quote"] = q
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	// The data map includes ContentTemplate to specify which content block to render
	err := s.templates.ExecuteTemplate(w, name, data)
	if err != nil {
		s.logger.Error("template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
