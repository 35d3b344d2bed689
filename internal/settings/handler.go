package settings

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/finstrategist/stockreport/internal/platform/httpx"
)

const maxSaveFormMemory = 16 << 20

var manualPDFNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Handler exposes configuration CRUD and the manual PDF upload.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

// NewHandler creates a settings handler.
func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// MountRoutes registers configuration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.save)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	reports, err := h.store.List()
	if err != nil {
		h.logger.Error("list configurations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "", reports)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid configuration id")
		return
	}
	report, err := h.store.GetByID(id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "", report)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var (
		input SaveInput
		files UploadSet
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid JSON input")
			return
		}
	} else {
		if err := r.ParseMultipartForm(maxSaveFormMemory); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid form input")
			return
		}
		input = saveInputFromForm(r)
		files = UploadSet{
			ArticleImage: ReadUpload(r, "article_image"),
			PDFCover:     ReadUpload(r, "pdf_cover"),
			ManualPDF:    ReadUpload(r, "manual_pdf"),
		}
	}

	report, err := h.store.Save(input, files)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	message := "Configuration created successfully"
	if input.ID != 0 {
		message = "Configuration updated successfully"
	}
	httpx.Success(w, message, report)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid configuration id")
		return
	}
	if err := h.store.Delete(id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, "Configuration deleted successfully", nil)
}

// ManualPDF handles the standalone direct PDF upload endpoint. The file
// lands in the reports directory under the supplied name, superseding
// any generated PDF for that report.
func (h *Handler) ManualPDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSaveFormMemory); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid form input")
		return
	}
	fileName := strings.TrimSpace(r.FormValue("file_name"))
	if fileName == "" {
		httpx.Error(w, http.StatusBadRequest, "File name is required")
		return
	}
	if !manualPDFNamePattern.MatchString(fileName) {
		httpx.Error(w, http.StatusBadRequest, "Invalid file name. Use only letters, numbers, underscores, and hyphens")
		return
	}
	upload := ReadUpload(r, "pdf_file")
	if upload == nil {
		httpx.Error(w, http.StatusBadRequest, "PDF file is required")
		return
	}
	stored := h.store.storeManualPDF(upload, fileName)
	if stored == nil {
		httpx.Error(w, http.StatusBadRequest, "Only PDF files up to 10MB are allowed")
		return
	}
	httpx.Success(w, "PDF uploaded successfully as: "+*stored, map[string]string{"file": *stored})
}

func saveInputFromForm(r *http.Request) SaveInput {
	id, _ := strconv.Atoi(r.FormValue("id"))
	stockCount, _ := strconv.Atoi(r.FormValue("stock_count"))
	return SaveInput{
		ID:             id,
		FileName:       r.FormValue("file_name"),
		Title:          r.FormValue("report_title"),
		Author:         r.FormValue("author_name"),
		NumberOfStocks: stockCount,
		DataSource:     r.FormValue("data_source"),
		IntroHTML:      r.FormValue("report_intro_html"),
		StockBlockHTML: r.FormValue("stock_block_html"),
		DisclaimerHTML: r.FormValue("disclaimer_html"),
	}
}

// ReadUpload drains one multipart file into memory, returning nil when
// the field is absent. Size and type policy is applied by the store.
func ReadUpload(r *http.Request, field string) *Upload {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil
	}
	defer func() { _ = file.Close() }()
	return uploadFromPart(file, header)
}

func uploadFromPart(file multipart.File, header *multipart.FileHeader) *Upload {
	content, err := io.ReadAll(io.LimitReader(file, maxManualPDFSize+1))
	if err != nil || len(content) == 0 {
		return nil
	}
	return &Upload{Filename: header.Filename, Content: content}
}
