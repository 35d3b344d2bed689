package settings

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Sanitize converts a user-supplied report name into a filesystem-safe
// slug: lowercase, runs of non-alphanumerics collapsed to single
// underscores, leading/trailing underscores trimmed. A name that
// sanitizes to nothing falls back to unnamed_<timestamp> so derived
// paths are never empty.
func Sanitize(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	s := b.String()
	if s == "" {
		return fmt.Sprintf("unnamed_%d", time.Now().Unix())
	}
	return s
}

// BuildImageFilename derives the stored image filename for a report.
// Example: "My Report" + "article" + "jpg" -> "my_report_article.jpg".
func BuildImageFilename(reportName, imageType, extension string) string {
	return Sanitize(reportName) + "_" + imageType + "." + extension
}

// MatchesImagePattern reports whether an existing image filename is
// consistent with the current report name and image type. Stale images
// left over from a renamed report fail this check and must be dropped
// rather than inherited.
func MatchesImagePattern(reportName, imageType, filename string) bool {
	if filename == "" {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return false
	}
	return filename == BuildImageFilename(reportName, imageType, ext)
}
