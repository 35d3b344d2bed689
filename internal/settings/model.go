// Package settings manages the persisted report configuration collection.
package settings

import "time"

// Images holds the filenames of uploaded image assets. A nil entry means
// no image of that kind is attached. Filenames follow the
// <sanitized_report_name>_<type>.<ext> convention.
type Images struct {
	ArticleImage  *string `json:"article_image"`
	PDFCoverImage *string `json:"pdf_cover_image"`
}

// ContentTemplates carries the raw HTML fragments with shortcode
// placeholders. Only the stock block has a built-in fallback; the other
// two are simply omitted from output when empty.
type ContentTemplates struct {
	IntroHTML      string `json:"intro_html"`
	StockBlockHTML string `json:"stock_block_html"`
	DisclaimerHTML string `json:"disclaimer_html"`
}

// ReportConfig is one named report configuration. Field names and
// nesting are part of the on-disk contract; other tooling reads the
// settings file directly.
type ReportConfig struct {
	ID                int              `json:"id"`
	FileName          string           `json:"file_name"`
	Title             string           `json:"title"`
	Author            string           `json:"author"`
	NumberOfStocks    int              `json:"number_of_stocks"`
	DataSource        string           `json:"data_source"`
	Images            Images           `json:"images"`
	ContentTemplates  ContentTemplates `json:"content_templates"`
	ManualPDFOverride *string          `json:"manual_pdf_override,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// SanitizedName returns the filesystem-safe form of the configuration's
// display name, used for every derived artifact path.
func (c ReportConfig) SanitizedName() string {
	return Sanitize(c.FileName)
}

// Collection is the whole persisted unit. Every mutation rewrites it.
type Collection struct {
	LastID  int            `json:"last_id"`
	Reports []ReportConfig `json:"reports"`
}

// Default values applied when a save input leaves fields empty.
const (
	DefaultTitle      = "Stock Report"
	DefaultDataSource = "data.csv"
	DefaultStockCount = 6
)
