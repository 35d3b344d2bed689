package settings

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is a fully-read uploaded file. Handlers drain multipart parts
// into this shape before the store sees them.
type Upload struct {
	Filename string
	Content  []byte
}

// UploadSet groups the optional files accompanying a save request.
type UploadSet struct {
	ArticleImage *Upload
	PDFCover     *Upload
	ManualPDF    *Upload
}

const (
	maxImageSize     = 2 << 20  // 2MB
	maxManualPDFSize = 10 << 20 // 10MB
)

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// StoreImage validates and persists an uploaded image under the
// <sanitized_name>_<type>.<ext> convention. A rejected upload returns
// nil so the save falls through to preserve-on-update semantics; it is
// never fatal.
func (s *Store) StoreImage(u *Upload, reportName, imageType string) *string {
	if u == nil || len(u.Content) == 0 {
		return nil
	}
	if len(u.Content) > maxImageSize {
		s.logger.Warn("image upload too large", slog.String("type", imageType), slog.Int("size", len(u.Content)))
		return nil
	}
	mimeType := http.DetectContentType(u.Content)
	fallbackExt, ok := allowedImageTypes[mimeType]
	if !ok {
		s.logger.Warn("image upload rejected", slog.String("type", imageType), slog.String("mime", mimeType))
		return nil
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(u.Filename), "."))
	if ext == "" || ext == "jpeg" {
		ext = fallbackExt
	}

	filename := BuildImageFilename(reportName, imageType, ext)
	if err := s.writeFileAtomic(filepath.Join(s.imagesDir, filename), u.Content); err != nil {
		s.logger.Warn("store image", slog.Any("error", err))
		return nil
	}
	return &filename
}

// storeManualPDF persists a directly-uploaded PDF into the reports
// directory under the report's sanitized name, superseding generated
// PDF output for that report.
func (s *Store) storeManualPDF(u *Upload, reportName string) *string {
	if u == nil || len(u.Content) == 0 {
		return nil
	}
	if len(u.Content) > maxManualPDFSize {
		s.logger.Warn("manual pdf too large", slog.Int("size", len(u.Content)))
		return nil
	}
	if http.DetectContentType(u.Content) != "application/pdf" {
		s.logger.Warn("manual pdf rejected: not a pdf")
		return nil
	}
	filename := Sanitize(reportName) + ".pdf"
	if err := s.writeFileAtomic(filepath.Join(s.reportsDir, filename), u.Content); err != nil {
		s.logger.Warn("store manual pdf", slog.Any("error", err))
		return nil
	}
	return &filename
}

// writeFileAtomic spools to a temp name in the target directory and
// renames into place so readers never observe a torn file.
func (s *Store) writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, ".upload-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
