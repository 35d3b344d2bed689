package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstrategist/stockreport/internal/generator"
	"github.com/finstrategist/stockreport/internal/settings"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

type nopConverter struct{}

func (nopConverter) ConvertToFile(_ context.Context, _ string, outPath string) error {
	return os.WriteFile(outPath, []byte("%PDF-1.4"), 0o644)
}

func newTestRouter(t *testing.T, pingErr error) (http.Handler, *Config) {
	t.Helper()
	root := t.TempDir()
	cfg := &Config{
		AppEnv:     "development",
		DataDir:    filepath.Join(root, "db"),
		ImagesDir:  filepath.Join(root, "images"),
		ReportsDir: filepath.Join(root, "reports"),
	}
	require.NoError(t, cfg.EnsureDirs())

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := settings.NewStore(cfg.DataDir, cfg.ImagesDir, cfg.ReportsDir, logger)
	svc := generator.NewService(store, nopConverter{}, cfg.DataDir, cfg.ImagesDir, cfg.ReportsDir, logger)

	router := NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		SettingsHandler:  settings.NewHandler(store, logger),
		GeneratorHandler: generator.NewHandler(svc, store, logger),
		PDFService:       stubPinger{err: pingErr},
	})
	return router, cfg
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestPDFPing(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/pdf/ping", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	router, _ = newTestRouter(t, errors.New("connection refused"))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/pdf/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestConfigurationRoutesMounted(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/configurations", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestManagerPageServed(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Stock Report Manager")
}

func TestReportArtifactsServed(t *testing.T) {
	router, cfg := newTestRouter(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ReportsDir, "weekly.html"), []byte("<html>report</html>"), 0o644))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/reports/weekly.html", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "report")

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/reports/absent.html", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
