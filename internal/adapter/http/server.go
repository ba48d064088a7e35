// Package http exposes the mapping pipeline over a small JSON API, plus the
// operational health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/pipeline"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/render"
)

// maxUploadBytes caps workbook uploads. Real specimen sheets are a few MB.
const maxUploadBytes = 50 << 20

// MapService is the pipeline surface the handlers need.
type MapService interface {
	CheckReadiness(ctx context.Context) error
	LoadDataset(source string, r io.Reader) (*pipeline.LoadSummary, error)
	Families() ([]string, error)
	Genera(family string) ([]string, error)
	SpeciesList(family, genus string) ([]string, error)
	GenerateMaps(sel domain.Selection) (*pipeline.MapSummary, error)
	CurrentMaps() (*render.MapPair, error)
	Export(format render.Format) ([]string, error)
}

// Server exposes the dataset, taxonomy, map, and export routes alongside
// health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	service    MapService
	logger     *slog.Logger
}

// NewServer wires the route table. Write timeouts are generous because map
// generation renders synchronously inside the request.
func NewServer(addr string, service MapService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		logger:  logger,
	}

	mux.HandleFunc("POST /dataset", s.handleLoadDataset)
	mux.HandleFunc("GET /taxonomy/families", s.handleFamilies)
	mux.HandleFunc("GET /taxonomy/genera", s.handleGenera)
	mux.HandleFunc("GET /taxonomy/species", s.handleSpecies)
	mux.HandleFunc("POST /maps", s.handleGenerateMaps)
	mux.HandleFunc("GET /maps/a.png", s.handleMapImage(func(p *render.MapPair) image.Image { return p.MapA }))
	mux.HandleFunc("GET /maps/b.png", s.handleMapImage(func(p *render.MapPair) image.Image { return p.MapB }))
	mux.HandleFunc("POST /export", s.handleExport)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(service))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleLoadDataset accepts a workbook either as a multipart "file" field or
// as a raw request body.
func (s *Server) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	source := "upload"
	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("read multipart upload: %w", err))
			return
		}
		defer file.Close()
		source = header.Filename
		body = file
	}

	summary, err := s.service.LoadDataset(source, body)
	if err != nil {
		s.logger.Error("dataset load failed", "source", source, "error", err)
		writeError(w, loadStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// loadStatus maps load failures onto response codes. Schema and content
// problems are the caller's to fix.
func loadStatus(err error) int {
	var schemaErr *domain.SchemaError
	switch {
	case errors.As(err, &schemaErr),
		errors.Is(err, pipeline.ErrNoValidRows),
		errors.Is(err, pipeline.ErrNoInRegionPoints):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) handleFamilies(w http.ResponseWriter, _ *http.Request) {
	families, err := s.service.Families()
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"families": families})
}

func (s *Server) handleGenera(w http.ResponseWriter, r *http.Request) {
	genera, err := s.service.Genera(r.URL.Query().Get("family"))
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"genera": genera})
}

func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	species, err := s.service.SpeciesList(q.Get("family"), q.Get("genus"))
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"species": species})
}

// generateRequest is the POST /maps body. Empty taxonomy fields mean "all".
type generateRequest struct {
	Family  string `json:"family"`
	Genus   string `json:"genus"`
	Species string `json:"species"`
	Year    int    `json:"year"`
}

func (s *Server) handleGenerateMaps(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	summary, err := s.service.GenerateMaps(domain.Selection{
		Family:  req.Family,
		Genus:   req.Genus,
		Species: req.Species,
		Year:    req.Year,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrNoDataset) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMapImage(pick func(*render.MapPair) image.Image) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		pair, err := s.service.CurrentMaps()
		if err != nil {
			writeError(w, serviceStatus(err), err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := render.Encode(w, pick(pair), render.FormatPNG); err != nil {
			s.logger.Error("encode map image failed", "error", err)
		}
	}
}

// exportRequest is the POST /export body.
type exportRequest struct {
	Format string `json:"format"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	format, err := render.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	paths, err := s.service.Export(format)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"format": format, "paths": paths})
}

// serviceStatus maps ordering preconditions onto 409; everything else is a
// server fault.
func serviceStatus(err error) int {
	if errors.Is(err, pipeline.ErrNoDataset) || errors.Is(err, pipeline.ErrNoMaps) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker MapService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
