package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/finstrategist/stockreport/internal/platform/httpx"
)

// SaveInput is the explicit boundary struct for create/update requests.
// An ID of zero means create.
type SaveInput struct {
	ID             int    `json:"id"`
	FileName       string `json:"file_name" validate:"required"`
	Title          string `json:"report_title"`
	Author         string `json:"author_name"`
	NumberOfStocks int    `json:"stock_count"`
	DataSource     string `json:"data_source"`
	IntroHTML      string `json:"report_intro_html"`
	StockBlockHTML string `json:"stock_block_html"`
	DisclaimerHTML string `json:"disclaimer_html"`
}

// Store is the JSON-file configuration store. The persistence unit is
// the whole collection; every mutation reads, modifies, and atomically
// rewrites it. Concurrent writers race with last-writer-wins semantics;
// the atomic rename only prevents torn files, it is not a lock.
type Store struct {
	settingsFile string
	imagesDir    string
	reportsDir   string
	logger       *slog.Logger
	validate     *validator.Validate
	now          func() time.Time
}

// NewStore creates a store rooted at the given directories. The
// settings collection lives at <dataDir>/report_settings.json.
func NewStore(dataDir, imagesDir, reportsDir string, logger *slog.Logger) *Store {
	v := validator.New()
	// Report field names as their wire names in validation messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Store{
		settingsFile: filepath.Join(dataDir, "report_settings.json"),
		imagesDir:    imagesDir,
		reportsDir:   reportsDir,
		logger:       logger,
		validate:     v,
		now:          time.Now,
	}
}

// List returns every configuration in store order. A missing settings
// file is an empty store, not an error.
func (s *Store) List() ([]ReportConfig, error) {
	col, err := s.readCollection()
	if err != nil {
		return nil, err
	}
	return col.Reports, nil
}

// GetByID returns the configuration with the given ID.
func (s *Store) GetByID(id int) (ReportConfig, error) {
	col, err := s.readCollection()
	if err != nil {
		return ReportConfig{}, err
	}
	for _, r := range col.Reports {
		if r.ID == id {
			return r, nil
		}
	}
	return ReportConfig{}, fmt.Errorf("%w: configuration %d", httpx.ErrNotFound, id)
}

// Save creates or updates a configuration. On update, created_at and
// any image or manual-PDF field without a fresh upload are carried over
// from the stored record, provided the carried filename is still
// consistent with the configuration's current name.
func (s *Store) Save(input SaveInput, files UploadSet) (ReportConfig, error) {
	input.FileName = strings.TrimSpace(input.FileName)
	if err := s.validate.Struct(input); err != nil {
		return ReportConfig{}, missingFieldsError(err)
	}
	if input.Title == "" {
		input.Title = DefaultTitle
	}
	if input.NumberOfStocks <= 0 {
		input.NumberOfStocks = DefaultStockCount
	}
	if input.DataSource == "" {
		input.DataSource = DefaultDataSource
	}

	col, err := s.readCollection()
	if err != nil {
		return ReportConfig{}, err
	}

	for _, r := range col.Reports {
		if r.ID != input.ID && strings.EqualFold(r.FileName, input.FileName) {
			return ReportConfig{}, fmt.Errorf("%w: a configuration named %q already exists", httpx.ErrDuplicate, r.FileName)
		}
	}

	now := s.now().UTC()
	report := ReportConfig{
		ID:             input.ID,
		FileName:       input.FileName,
		Title:          input.Title,
		Author:         input.Author,
		NumberOfStocks: input.NumberOfStocks,
		DataSource:     input.DataSource,
		Images: Images{
			ArticleImage:  s.StoreImage(files.ArticleImage, input.FileName, "article"),
			PDFCoverImage: s.StoreImage(files.PDFCover, input.FileName, "cover"),
		},
		ContentTemplates: ContentTemplates{
			IntroHTML:      input.IntroHTML,
			StockBlockHTML: input.StockBlockHTML,
			DisclaimerHTML: input.DisclaimerHTML,
		},
		ManualPDFOverride: s.storeManualPDF(files.ManualPDF, input.FileName),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if input.ID != 0 {
		idx := -1
		for i, r := range col.Reports {
			if r.ID == input.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ReportConfig{}, fmt.Errorf("%w: configuration %d", httpx.ErrNotFound, input.ID)
		}
		prev := col.Reports[idx]
		report.CreatedAt = prev.CreatedAt
		if report.Images.ArticleImage == nil {
			report.Images.ArticleImage = carryImage(prev.Images.ArticleImage, input.FileName, "article")
		}
		if report.Images.PDFCoverImage == nil {
			report.Images.PDFCoverImage = carryImage(prev.Images.PDFCoverImage, input.FileName, "cover")
		}
		if report.ManualPDFOverride == nil {
			report.ManualPDFOverride = carryManualPDF(prev.ManualPDFOverride, input.FileName)
		}
		col.Reports[idx] = report
	} else {
		report.ID = col.LastID + 1
		col.LastID = report.ID
		col.Reports = append(col.Reports, report)
	}

	if err := s.writeCollection(col); err != nil {
		return ReportConfig{}, err
	}
	return report, nil
}

// Delete removes a configuration by ID.
func (s *Store) Delete(id int) error {
	col, err := s.readCollection()
	if err != nil {
		return err
	}
	kept := col.Reports[:0]
	for _, r := range col.Reports {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(col.Reports) {
		return fmt.Errorf("%w: configuration %d", httpx.ErrNotFound, id)
	}
	col.Reports = kept
	return s.writeCollection(col)
}

// carryImage keeps a previously stored image only while its filename
// still matches the expected pattern for the configuration's current
// name. A rename leaves the old image behind; inheriting it would point
// the new report at another report's asset.
func carryImage(prev *string, reportName, imageType string) *string {
	if prev == nil || !MatchesImagePattern(reportName, imageType, *prev) {
		return nil
	}
	return prev
}

func carryManualPDF(prev *string, reportName string) *string {
	if prev == nil || *prev != Sanitize(reportName)+".pdf" {
		return nil
	}
	return prev
}

func (s *Store) readCollection() (Collection, error) {
	data, err := os.ReadFile(s.settingsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return Collection{}, nil
		}
		return Collection{}, fmt.Errorf("read settings file: %w", err)
	}
	var col Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return Collection{}, fmt.Errorf("invalid settings format: %w", err)
	}
	return col, nil
}

func (s *Store) writeCollection(col Collection) error {
	if col.Reports == nil {
		col.Reports = []ReportConfig{}
	}
	data, err := json.MarshalIndent(col, "", "    ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.writeFileAtomic(s.settingsFile, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// missingFieldsError converts validator output into the API's
// missing-field message shape.
func missingFieldsError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Errorf("%w: missing required fields: %s", httpx.ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
}
