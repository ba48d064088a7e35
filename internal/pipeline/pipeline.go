// Package pipeline orchestrates the load → validate → index → aggregate →
// render flow and owns all state derived from the current workbook. A fresh
// load discards every derived artifact; nothing is patched incrementally.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/excel"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/geo"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/observability"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/render"
)

var (
	// ErrNoDataset: an operation needs a loaded workbook first.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrNoMaps: export or image fetch before any map generation.
	ErrNoMaps = errors.New("no maps generated")
	// ErrNoValidRows: every row failed validation.
	ErrNoValidRows = errors.New("no valid rows after validation")
	// ErrNoInRegionPoints: rows parsed but all fell outside Montana.
	ErrNoInRegionPoints = errors.New("no points within Montana's boundaries")
)

// Selection conditions reported by GenerateMaps.
const (
	ConditionOK             = "ok"
	ConditionNoMatchingData = "no matching data"
)

// Options sizes the renderers and locates the export directory.
type Options struct {
	RenderWidth  int
	RenderHeight int
	ExportDPI    int // print target; the interactive view renders at 100
	ExportDir    string
}

// Service owns the loaded dataset and the current map pair. A mutex
// serializes requests: each pipeline stage runs to completion before the
// next begins, and the boundary set is shared read-only.
type Service struct {
	logger  *slog.Logger
	metrics *observability.Metrics

	counties *geo.CountySet
	screen   *render.Renderer
	print    *render.Renderer
	opts     Options

	mu      sync.Mutex
	dataset *dataset
	current *generated
}

// dataset is everything derived from one loaded workbook.
type dataset struct {
	source     string
	loadedAt   time.Time
	records    []domain.SpecimenRecord
	rejections []domain.Rejection
	index      *domain.Index
}

// generated is the result of the most recent map generation, kept so the
// image endpoints and the export path can reuse it without re-aggregating.
type generated struct {
	selection domain.Selection
	upTo      geo.CountResult
	allTime   geo.CountResult
	pair      *render.MapPair
}

// New creates a Service over a loaded boundary set.
func New(counties *geo.CountySet, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	base := render.Options{Width: opts.RenderWidth, Height: opts.RenderHeight, Scale: 1}
	printOpts := base
	printOpts.Scale = float64(opts.ExportDPI) / 100.0
	return &Service{
		logger:   logger,
		metrics:  metrics,
		counties: counties,
		screen:   render.New(counties, base),
		print:    render.New(counties, printOpts),
		opts:     opts,
	}
}

// CheckReadiness returns nil once a dataset has been loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return errors.New("no dataset loaded yet")
	}
	return nil
}

// LoadSummary describes a successful load, mirroring what the UI shows in
// its post-upload summary.
type LoadSummary struct {
	Source           string             `json:"source"`
	LoadedAt         time.Time          `json:"loaded_at"`
	TotalRows        int                `json:"total_rows"`
	ValidRecords     int                `json:"valid_records"`
	RejectedRows     int                `json:"rejected_rows"`
	RejectedByReason map[string]int     `json:"rejected_by_reason,omitempty"`
	Rejections       []domain.Rejection `json:"rejections,omitempty"`
	YearMin          int                `json:"year_min"`
	YearMax          int                `json:"year_max"`
	Families         int                `json:"families"`
	Genera           int                `json:"genera"`
	Species          int                `json:"species"`
}

// LoadDataset reads, validates, and indexes a workbook, then atomically
// replaces all derived state. On any failure the previous dataset and maps
// remain untouched.
func (s *Service) LoadDataset(source string, r io.Reader) (*LoadSummary, error) {
	table, err := excel.ReadTable(r)
	if err != nil {
		return nil, err
	}

	valid, rejected, err := domain.Validate(table)
	if err != nil {
		return nil, err
	}

	byReason := make(map[string]int)
	for _, rej := range rejected {
		byReason[string(rej.Reason)]++
	}

	if len(valid) == 0 {
		if len(rejected) > 0 && byReason[string(domain.ReasonOutOfRegion)] == len(rejected) {
			return nil, fmt.Errorf("%w: all %d rows out of region", ErrNoInRegionPoints, len(rejected))
		}
		return nil, fmt.Errorf("%w: %d rows rejected", ErrNoValidRows, len(rejected))
	}

	index := domain.BuildIndex(valid)
	ds := &dataset{
		source:     source,
		loadedAt:   domain.Now(),
		records:    valid,
		rejections: rejected,
		index:      index,
	}

	s.mu.Lock()
	s.dataset = ds
	s.current = nil // fresh load discards derived maps
	s.mu.Unlock()

	s.metrics.DatasetsLoaded.Inc()
	s.metrics.DatasetLoaded.Set(1)
	s.metrics.RowsValidated.Add(float64(len(valid)))
	for reason, n := range byReason {
		s.metrics.RowsRejected.WithLabelValues(reason).Add(float64(n))
	}

	yearMin, yearMax := index.YearRange()
	s.logger.Info("dataset loaded",
		"source", source,
		"valid", len(valid),
		"rejected", len(rejected),
		"families", len(index.Families()),
	)

	return &LoadSummary{
		Source:           source,
		LoadedAt:         ds.loadedAt,
		TotalRows:        len(table.Rows),
		ValidRecords:     len(valid),
		RejectedRows:     len(rejected),
		RejectedByReason: byReason,
		Rejections:       rejected,
		YearMin:          yearMin,
		YearMax:          yearMax,
		Families:         len(index.Families()),
		Genera:           len(index.Genera(domain.Wildcard)),
		Species:          len(index.Species(domain.Wildcard, domain.Wildcard)),
	}, nil
}

// Families lists distinct families in the loaded dataset.
func (s *Service) Families() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return s.dataset.index.Families(), nil
}

// Genera lists distinct genera under a family (wildcard allowed).
func (s *Service) Genera(family string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return s.dataset.index.Genera(family), nil
}

// SpeciesList lists distinct species under a (family, genus) pair.
func (s *Service) SpeciesList(family, genus string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return s.dataset.index.Species(family, genus), nil
}

// MapSummary reports one generate request. When the selection matches no
// records, Condition says so and no counts are present; the previously
// generated maps are left in place.
type MapSummary struct {
	ID               string           `json:"id,omitempty"`
	Condition        string           `json:"condition"`
	Selection        domain.Selection `json:"selection"`
	MatchingRecords  int              `json:"matching_records"`
	CountsUpTo       map[string]int   `json:"counts_up_to,omitempty"`
	CountsAllTime    map[string]int   `json:"counts_all_time,omitempty"`
	UnmatchedUpTo    int              `json:"unmatched_up_to"`
	UnmatchedAllTime int              `json:"unmatched_all_time"`
}

// GenerateMaps selects, aggregates, and renders both map variants for the
// given selection, replacing the current pair on success.
func (s *Service) GenerateMaps(sel domain.Selection) (*MapSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	if sel.Year <= 0 {
		return nil, fmt.Errorf("cutoff year must be positive, got %d", sel.Year)
	}

	subset := s.dataset.index.Select(sel)
	if len(subset) == 0 {
		s.metrics.EmptySelections.Inc()
		s.logger.Info("selection matched no records", "selection", sel.Title())
		return &MapSummary{Condition: ConditionNoMatchingData, Selection: sel}, nil
	}

	start := time.Now()
	upTo, allTime := geo.Aggregate(subset, s.counties, sel.Year)
	pair := s.screen.Pair(uuid.NewString(), sel, upTo.Counts, allTime.Counts)
	s.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	s.metrics.MapsGenerated.Inc()
	s.metrics.UnmatchedPoints.Add(float64(allTime.Unmatched))

	s.current = &generated{selection: sel, upTo: upTo, allTime: allTime, pair: pair}

	if allTime.Unmatched > 0 {
		s.logger.Warn("points matched no county polygon",
			"unmatched", allTime.Unmatched,
			"selection", sel.Title(),
		)
	}
	s.logger.Info("maps generated",
		"id", pair.ID,
		"selection", sel.Title(),
		"records", len(subset),
		"cutoff_year", sel.Year,
	)

	return &MapSummary{
		ID:               pair.ID,
		Condition:        ConditionOK,
		Selection:        sel,
		MatchingRecords:  len(subset),
		CountsUpTo:       upTo.Counts,
		CountsAllTime:    allTime.Counts,
		UnmatchedUpTo:    upTo.Unmatched,
		UnmatchedAllTime: allTime.Unmatched,
	}, nil
}

// CurrentMaps returns the most recently generated pair.
func (s *Service) CurrentMaps() (*render.MapPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoMaps
	}
	return s.current.pair, nil
}

// Export re-renders the current pair at the print DPI and writes both
// variants as timestamped files in the export directory.
func (s *Service) Export(format render.Format) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoMaps
	}

	cur := s.current
	pair := s.print.Pair(cur.pair.ID, cur.selection, cur.upTo.Counts, cur.allTime.Counts)
	paths, err := render.Export(s.opts.ExportDir, pair, format, domain.Now())
	if err != nil {
		return nil, err
	}

	s.metrics.Exports.WithLabelValues(string(format)).Inc()
	s.logger.Info("maps exported", "format", format, "files", len(paths))
	return paths, nil
}
