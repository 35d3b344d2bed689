package generator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/finstrategist/stockreport/internal/platform/httpx"
	"github.com/finstrategist/stockreport/internal/settings"
)

const maxGenerateFormMemory = 16 << 20

// Handler exposes the generation endpoints.
type Handler struct {
	service *Service
	store   *settings.Store
	logger  *slog.Logger
	flights singleflight.Group
}

// NewHandler creates a generator handler. The store is needed because
// the ad-hoc generate endpoint accepts image uploads of its own.
func NewHandler(service *Service, store *settings.Store, logger *slog.Logger) *Handler {
	return &Handler{service: service, store: store, logger: logger}
}

// MountRoutes registers generation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/generate", h.generate)
	r.Post("/generate/batch", h.batch)
}

// generate builds a transient configuration straight from form fields
// and renders the requested target without persisting anything. The
// form may carry fresh image uploads or reference already-stored ones.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxGenerateFormMemory); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid form input")
		return
	}

	fileName := strings.TrimSpace(r.FormValue("file_name"))
	stockCount := strings.TrimSpace(r.FormValue("stock_count"))
	var missing []string
	if fileName == "" {
		missing = append(missing, "file_name")
	}
	if stockCount == "" {
		missing = append(missing, "stock_count")
	}
	if len(missing) > 0 {
		httpx.Error(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	reportType := r.FormValue("report_type")
	if reportType == "" {
		reportType = string(TargetHTML)
	}
	targets, err := ParseTargets(reportType)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	cfg := h.configFromForm(r, fileName, stockCount)

	// Identical concurrent requests for the same report and target
	// collapse into one render; everyone gets the shared result.
	key := cfg.SanitizedName() + "|" + reportType
	result, err := h.singleflightGenerate(r.Context(), key, cfg, targets)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(targets) == 1 {
		t := targets[0]
		if msg, failed := result.Failed[t]; failed {
			httpx.Error(w, http.StatusBadRequest, msg)
			return
		}
		httpx.Success(w, targetLabels[t]+" report generated successfully", map[string]string{
			"file": result.Generated[t],
			"type": reportType,
		})
		return
	}

	message := "Report generation completed."
	if len(result.Failed) > 0 {
		message += " Some reports failed to generate."
	}
	httpx.Success(w, message, result)
}

// singleflightGenerate coalesces concurrent identical generation
// requests. Callers that abandon the request still leave the shared
// render running for the others.
func (h *Handler) singleflightGenerate(ctx context.Context, key string, cfg settings.ReportConfig, targets []Target) (Result, error) {
	resultChan := h.flights.DoChan(key, func() (interface{}, error) {
		return h.service.Generate(context.WithoutCancel(ctx), cfg, targets), nil
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-resultChan:
		return res.Val.(Result), res.Err
	}
}

// configFromForm assembles the transient configuration. Fresh uploads
// win over *_existing references, and an existing reference is only
// honored while its filename still matches the report's own naming
// convention.
func (h *Handler) configFromForm(r *http.Request, fileName, stockCount string) settings.ReportConfig {
	count, _ := strconv.Atoi(stockCount)
	cfg := settings.ReportConfig{
		FileName:       fileName,
		Title:          r.FormValue("report_title"),
		Author:         r.FormValue("author_name"),
		NumberOfStocks: count,
		DataSource:     r.FormValue("data_source"),
		ContentTemplates: settings.ContentTemplates{
			IntroHTML:      r.FormValue("report_intro_html"),
			StockBlockHTML: r.FormValue("stock_block_html"),
			DisclaimerHTML: r.FormValue("disclaimer_html"),
		},
	}
	if cfg.Title == "" {
		cfg.Title = settings.DefaultTitle
	}
	if cfg.DataSource == "" {
		cfg.DataSource = settings.DefaultDataSource
	}

	cfg.Images.ArticleImage = h.resolveImage(r, "article_image", "article_image_existing", fileName, "article")
	cfg.Images.PDFCoverImage = h.resolveImage(r, "pdf_cover", "pdf_cover_existing", fileName, "cover")
	return cfg
}

func (h *Handler) resolveImage(r *http.Request, uploadField, existingField, reportName, imageType string) *string {
	if stored := h.store.StoreImage(settings.ReadUpload(r, uploadField), reportName, imageType); stored != nil {
		return stored
	}
	existing := r.FormValue(existingField)
	if settings.MatchesImagePattern(reportName, imageType, existing) {
		return &existing
	}
	return nil
}

// batchInput accepts either an ID list or the string sentinel "all".
type batchInput struct {
	IDs json.RawMessage `json:"ids"`
}

// batch regenerates every target for each referenced configuration.
func (h *Handler) batch(w http.ResponseWriter, r *http.Request) {
	var input batchInput
	if err := httpx.DecodeJSON(r, &input); err != nil || len(input.IDs) == 0 {
		httpx.Error(w, http.StatusBadRequest, "Missing required field: ids (array of configuration IDs)")
		return
	}

	var (
		result BatchResult
		err    error
	)
	var sentinel string
	if jsonErr := json.Unmarshal(input.IDs, &sentinel); jsonErr == nil && sentinel == "all" {
		result, err = h.service.GenerateAll(r.Context())
	} else {
		var ids []int
		if jsonErr := json.Unmarshal(input.IDs, &ids); jsonErr != nil || len(ids) == 0 {
			httpx.Error(w, http.StatusBadRequest, "Missing required field: ids (array of configuration IDs)")
			return
		}
		result = h.service.GenerateBatch(r.Context(), ids)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	message := "Report generation completed."
	if len(result.Failed) > 0 {
		message += " Some reports failed to generate."
	}
	httpx.Success(w, message, result)
}
