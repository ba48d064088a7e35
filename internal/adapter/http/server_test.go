package http_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/Ahmadjajja/montana-specimens-mapper/internal/adapter/http"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/excel"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/geo"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/observability"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/pipeline"
)

func squareCounty(name string, minLon, minLat, maxLon, maxLat float64) *geo.County {
	poly := geom.Polygon{{
		{X: minLon, Y: minLat},
		{X: maxLon, Y: minLat},
		{X: maxLon, Y: maxLat},
		{X: minLon, Y: maxLat},
	}}
	return &geo.County{Name: name, Geographic: poly, Projected: poly}
}

func newTestServer(t *testing.T) *httpadapter.Server {
	t.Helper()
	counties := geo.NewCountySet([]*geo.County{
		squareCounty("Alder", -113, 45, -112, 47),
		squareCounty("Birch", -112, 45, -111, 47),
	})
	svc := pipeline.New(counties, pipeline.Options{
		RenderWidth:  200,
		RenderHeight: 150,
		ExportDPI:    300,
		ExportDir:    t.TempDir(),
	}, slog.New(slog.NewTextHandler(os.Stderr, nil)), observability.NewMetricsForTesting())
	return httpadapter.NewServer(":0", svc, slog.Default())
}

func workbookBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()
	table := &domain.Table{
		Columns: []string{"lat", "lat_dir", "long", "long_dir", "family", "genus", "species", "year"},
		Rows:    rows,
	}
	var buf bytes.Buffer
	require.NoError(t, excel.WriteTableTo(&buf, table))
	return buf.Bytes()
}

func testRows() [][]string {
	return [][]string{
		{"45.5", "N", "112.5", "W", "Asteraceae", "Solidago", "canadensis", "1987"},
		{"46.5", "N", "111.5", "W", "Asteraceae", "Solidago", "canadensis", "2001"},
		{"46.2", "N", "112.3", "W", "Pinaceae", "Pinus", "ponderosa", "1994"},
	}
}

func do(srv *httpadapter.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func loadDataset(t *testing.T, srv *httpadapter.Server) {
	t.Helper()
	body := workbookBytes(t, testRows())
	rec := do(srv, httptest.NewRequest(http.MethodPost, "/dataset", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func generateMaps(t *testing.T, srv *httpadapter.Server, year int) {
	t.Helper()
	payload := `{"family":"all","year":` + strconv.Itoa(year) + `}`
	rec := do(srv, httptest.NewRequest(http.MethodPost, "/maps", strings.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(t)
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzTracksDatasetLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	loadDataset(t, srv)

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadDatasetMultipart(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "specimens.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbookBytes(t, testRows()))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/dataset", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(srv, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary pipeline.LoadSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "specimens.xlsx", summary.Source)
	assert.Equal(t, 3, summary.ValidRecords)
	assert.Equal(t, 2, summary.Families)
}

func TestLoadDatasetErrors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("not a workbook", func(t *testing.T) {
		rec := do(srv, httptest.NewRequest(http.MethodPost, "/dataset", strings.NewReader("junk")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing required column", func(t *testing.T) {
		table := &domain.Table{
			Columns: []string{"lat", "lat_dir", "long", "long_dir", "family", "genus", "year"},
			Rows:    [][]string{{"45.5", "N", "112.5", "W", "Asteraceae", "Solidago", "1987"}},
		}
		var buf bytes.Buffer
		require.NoError(t, excel.WriteTableTo(&buf, table))

		rec := do(srv, httptest.NewRequest(http.MethodPost, "/dataset", &buf))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "species")
	})
}

func TestTaxonomyEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/taxonomy/families", nil))
	assert.Equal(t, http.StatusConflict, rec.Code, "taxonomy before any dataset is a conflict")

	loadDataset(t, srv)

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/taxonomy/families", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var families map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &families))
	assert.Equal(t, []string{"Asteraceae", "Pinaceae"}, families["families"])

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/taxonomy/genera?family=Asteraceae", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var genera map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &genera))
	assert.Equal(t, []string{"Solidago"}, genera["genera"])

	rec = do(srv, httptest.NewRequest(http.MethodGet, "/taxonomy/species?family=all&genus=all", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var species map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &species))
	assert.Equal(t, []string{"canadensis", "ponderosa"}, species["species"])
}

func TestGenerateMapsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	payload := `{"family":"all","year":1995}`
	rec := do(srv, httptest.NewRequest(http.MethodPost, "/maps", strings.NewReader(payload)))
	assert.Equal(t, http.StatusConflict, rec.Code, "maps before any dataset is a conflict")

	loadDataset(t, srv)

	t.Run("missing year", func(t *testing.T) {
		rec := do(srv, httptest.NewRequest(http.MethodPost, "/maps", strings.NewReader(`{"family":"all"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("matching selection", func(t *testing.T) {
		rec := do(srv, httptest.NewRequest(http.MethodPost, "/maps", strings.NewReader(payload)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var summary pipeline.MapSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, pipeline.ConditionOK, summary.Condition)
		assert.Equal(t, 3, summary.MatchingRecords)
		assert.Equal(t, map[string]int{"Alder": 2, "Birch": 0}, summary.CountsUpTo)
	})

	t.Run("empty selection", func(t *testing.T) {
		rec := do(srv, httptest.NewRequest(http.MethodPost, "/maps", strings.NewReader(`{"family":"Rosaceae","year":1995}`)))
		require.Equal(t, http.StatusOK, rec.Code)

		var summary pipeline.MapSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, pipeline.ConditionNoMatchingData, summary.Condition)
	})
}

func TestMapImageEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/maps/a.png", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	loadDataset(t, srv)
	generateMaps(t, srv, 1995)

	for _, path := range []string{"/maps/a.png", "/maps/b.png"} {
		rec := do(srv, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "\x89PNG", rec.Body.String()[:4])
	}
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := do(srv, httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"format":"png"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code, "export before any maps is a conflict")

	loadDataset(t, srv)
	generateMaps(t, srv, 1995)

	t.Run("unsupported format", func(t *testing.T) {
		rec := do(srv, httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"format":"bmp"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("png export", func(t *testing.T) {
		rec := do(srv, httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"format":"png"}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Format string   `json:"format"`
			Paths  []string `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "png", body.Format)
		require.Len(t, body.Paths, 2)
		for _, p := range body.Paths {
			_, err := os.Stat(p)
			assert.NoError(t, err)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
