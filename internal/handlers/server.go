package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/vkoski/wikiviews/internal/config"
	"github.com/vkoski/wikiviews/internal/repository"
	"github.com/vkoski/wikiviews/internal/service/report"
)

// Server holds the HTTP server and its dependencies
type Server struct {
	config     *config.Config
	archive    repository.ArchiveRepository
	generators map[string]*report.Generator
	defaultGen *report.Generator
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config) (*Server, error) {
	archive, err := newArchive(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	s := &Server{
		config:     cfg,
		archive:    archive,
		generators: make(map[string]*report.Generator),
	}

	for name, target := range cfg.Targets {
		s.generators[name] = s.newGenerator(target.Project)
	}
	s.defaultGen = s.newGenerator(cfg.Project)

	return s, nil
}

func (s *Server) newGenerator(project string) *report.Generator {
	pageviews := repository.NewWikimediaRepository(project, s.config.Access, s.config.UserAgent)
	return report.NewGenerator(pageviews, s.archive, s.config.ReportLimit)
}

// newArchive selects the archive backend from configuration.
func newArchive(cfg *config.Config) (repository.ArchiveRepository, error) {
	switch cfg.ArchiveType {
	case "local":
		return repository.NewLocalArchive(cfg.OutputDir), nil
	case "gcs":
		return repository.NewGCSArchive(context.Background(), cfg.ArchiveBucket, cfg.ArchivePrefix)
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", cfg.ArchiveType)
	}
}

// Generator returns the generator for the default configured project.
func (s *Server) Generator() *report.Generator {
	return s.defaultGen
}

// ProcessTarget runs the scheduled pipeline for one named target: it generates
// the previous month's report, and at the turn of the year the previous year's
// yearly report as well.
func (s *Server) ProcessTarget(ctx context.Context, name string) error {
	gen, ok := s.generators[name]
	if !ok {
		return fmt.Errorf("unknown target: %s", name)
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())-1
	if month == 0 {
		year, month = year-1, 12
	}

	if _, err := gen.ProcessMonth(ctx, year, month); err != nil {
		return fmt.Errorf("processing %d/%02d for target %s: %w", year, month, name, err)
	}

	if month == 12 {
		if _, err := gen.ProcessYear(ctx, year); err != nil {
			return fmt.Errorf("processing year %d for target %s: %w", year, name, err)
		}
	}
	return nil
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.loggingMiddleware)

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Report generation
	api.HandleFunc("/reports/month", s.monthReportHandler).Methods("POST")
	api.HandleFunc("/reports/year", s.yearReportHandler).Methods("POST")

	// Read-only report access
	api.HandleFunc("/reports/preview", s.previewHandler).Methods("GET")
	api.HandleFunc("/reports", s.listReportsHandler).Methods("GET")

	return r
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"project":   s.config.Project,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// monthReportHandler generates and persists a single month's report.
func (s *Server) monthReportHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}

	var payload struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if payload.Year == 0 || payload.Month == 0 {
		http.Error(w, "Missing 'year' or 'month' in payload", http.StatusBadRequest)
		return
	}

	rep, err := s.defaultGen.ProcessMonth(r.Context(), payload.Year, payload.Month)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeReport(w, rep)
}

// yearReportHandler generates and persists a yearly report.
func (s *Server) yearReportHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}

	var payload struct {
		Year int `json:"year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if payload.Year == 0 {
		http.Error(w, "Missing 'year' in payload", http.StatusBadRequest)
		return
	}

	rep, err := s.defaultGen.ProcessYear(r.Context(), payload.Year)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeReport(w, rep)
}

// previewHandler renders a month's table without persisting it and returns
// the raw wiki markup.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "Invalid or missing 'year' parameter", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, "Invalid or missing 'month' parameter", http.StatusBadRequest)
		return
	}

	rep, err := s.defaultGen.PreviewMonth(r.Context(), year, month)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, rep.Body)
}

// listReportsHandler lists archived report paths, optionally for one year.
func (s *Server) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		var err error
		if year, err = strconv.Atoi(y); err != nil {
			http.Error(w, "Invalid 'year' parameter", http.StatusBadRequest)
			return
		}
	}

	paths, err := s.defaultGen.ListReports(r.Context(), year)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"reports": paths,
		"count":   len(paths),
	})
}

// authorize checks Bearer token authentication on mutating routes. An empty
// configured token disables the check.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if s.config.WebhookAuthToken == "" {
		return true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
		return false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
		return false
	}
	if strings.TrimPrefix(authHeader, "Bearer ") != s.config.WebhookAuthToken {
		http.Error(w, "Invalid token", http.StatusForbidden)
		return false
	}
	return true
}

func (s *Server) writeReport(w http.ResponseWriter, rep interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"report": rep,
	})
}

// writeError maps pipeline errors to HTTP statuses: no data is a 404, an
// upstream fetch failure is a 502, everything else a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var fetchErr *repository.FetchError
	switch {
	case errors.Is(err, repository.ErrNoData):
		http.Error(w, "No data available for the requested period", http.StatusNotFound)
	case errors.As(err, &fetchErr):
		http.Error(w, fmt.Sprintf("Upstream fetch failed: %v", fetchErr), http.StatusBadGateway)
	default:
		http.Error(w, fmt.Sprintf("Report generation failed: %v", err), http.StatusInternalServerError)
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// Close releases the archive backend.
func (s *Server) Close() error {
	return s.archive.Close()
}
