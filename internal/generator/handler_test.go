package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstrategist/stockreport/internal/platform/httpx"
	"github.com/finstrategist/stockreport/internal/settings"
)

func newTestHandler(t *testing.T) (http.Handler, *settings.Store, string) {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "db")
	imagesDir := filepath.Join(root, "images")
	reportsDir := filepath.Join(root, "reports")
	for _, d := range []string{dataDir, imagesDir, reportsDir} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := settings.NewStore(dataDir, imagesDir, reportsDir, logger)
	svc := NewService(store, &fakeConverter{}, dataDir, imagesDir, reportsDir, logger)
	handler := NewHandler(svc, store, logger)

	r := chi.NewRouter()
	r.Route("/api", handler.MountRoutes)
	return r, store, root
}

func generateForm(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func envelopeFrom(t *testing.T, resp *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

func TestGenerateEndpointMissingFields(t *testing.T) {
	router, _, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, generateForm(t, map[string]string{}))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	env := envelopeFrom(t, resp)
	assert.Equal(t, "Missing required fields: file_name, stock_count", env.Message)
}

func TestGenerateEndpointUnknownType(t *testing.T) {
	router, _, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, generateForm(t, map[string]string{
		"file_name":   "Weekly Picks",
		"stock_count": "2",
		"report_type": "docx",
	}))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, envelopeFrom(t, resp).Message, "unknown report type: docx")
}

func TestGenerateEndpointTransientHTML(t *testing.T) {
	router, _, root := newTestHandler(t)
	content := "Ticker,Company,Price\nAAPL,Apple Inc,190.50\nMSFT,Microsoft,410.10\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "db", "data.csv"), []byte(content), 0o644))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, generateForm(t, map[string]string{
		"file_name":   "Weekly Picks",
		"stock_count": "2",
		"report_type": "html",
	}))

	require.Equal(t, http.StatusOK, resp.Code)
	env := envelopeFrom(t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "HTML report generated successfully", env.Message)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "weekly_picks.html", data["file"])
	assert.Equal(t, "html", data["type"])
	assert.FileExists(t, filepath.Join(root, "reports", "weekly_picks.html"))
}

func TestGenerateEndpointAllTargets(t *testing.T) {
	router, _, root := newTestHandler(t)
	content := "Ticker,Company,Price\nAAPL,Apple Inc,190.50\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "db", "data.csv"), []byte(content), 0o644))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, generateForm(t, map[string]string{
		"file_name":   "Weekly Picks",
		"stock_count": "1",
		"report_type": "all",
	}))

	require.Equal(t, http.StatusOK, resp.Code)
	env := envelopeFrom(t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "Report generation completed.", env.Message)
	assert.FileExists(t, filepath.Join(root, "reports", "weekly_picks.html"))
	assert.FileExists(t, filepath.Join(root, "reports", "weekly_picks.pdf"))
	assert.FileExists(t, filepath.Join(root, "reports", "weekly_picks_flipbook.html"))
}

func TestGenerateEndpointMissingSource(t *testing.T) {
	router, _, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, generateForm(t, map[string]string{
		"file_name":   "Weekly Picks",
		"stock_count": "2",
		"report_type": "html",
	}))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, envelopeFrom(t, resp).Message, "data source file not found")
}

func batchRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate/batch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestBatchEndpoint(t *testing.T) {
	router, store, root := newTestHandler(t)
	content := "Ticker,Company,Price\nAAPL,Apple Inc,190.50\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "db", "data.csv"), []byte(content), 0o644))

	created, err := store.Save(settings.SaveInput{FileName: "Weekly Picks", NumberOfStocks: 1}, settings.UploadSet{})
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, batchRequest(t, fmt.Sprintf(`{"ids":[%d,99]}`, created.ID)))

	require.Equal(t, http.StatusOK, resp.Code)
	env := envelopeFrom(t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "Report generation completed. Some reports failed to generate.", env.Message)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var batch BatchResult
	require.NoError(t, json.Unmarshal(raw, &batch))
	assert.Equal(t, []string{"Stock Report"}, batch.Generated[TargetHTML])
	assert.Equal(t, []string{"Config ID 99 (not found)"}, batch.Failed)
}

func TestBatchEndpointMissingIDs(t *testing.T) {
	router, _, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, batchRequest(t, `{}`))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, envelopeFrom(t, resp).Message, "Missing required field: ids")
}

func TestBatchEndpointAllSentinelEmptyStore(t *testing.T) {
	router, _, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, batchRequest(t, `{"ids":"all"}`))
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, envelopeFrom(t, resp).Message, "no configurations found")
}
