package render

import (
	"encoding/base64"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/finstrategist/stockreport/internal/settings"
	"github.com/finstrategist/stockreport/internal/stockdata"
)

var widgetPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(widgetBegin) + `.*?` + regexp.QuoteMeta(widgetEnd))

// chartPlaceholder replaces interactive widgets in print output.
const chartPlaceholder = "<p><em>[Interactive chart available in HTML version]</em></p>"

// stripWidgets removes chart embeds that the conversion engine cannot
// execute.
func stripWidgets(s string) string {
	return widgetPattern.ReplaceAllString(s, chartPlaceholder)
}

// PDFDocument builds the standalone HTML document handed to the PDF
// converter. Images are inlined as data URIs: the conversion engine
// runs with its own working directory, so relative sibling paths from
// the web root would not resolve there.
func (r *Renderer) PDFDocument(cfg settings.ReportConfig, records []stockdata.Record) string {
	s := r.buildSections(cfg, records)
	title := cfg.Title
	if title == "" {
		title = settings.DefaultTitle
	}

	var body strings.Builder

	if cfg.Images.PDFCoverImage != nil && *cfg.Images.PDFCoverImage != "" {
		if uri, ok := r.imageDataURI(*cfg.Images.PDFCoverImage); ok {
			body.WriteString(`<div class="cover-page pagebreak"><img class="cover" alt="" src="` + uri + `"></div>` + "\n")
		}
	}

	body.WriteString("<div id=\"article-body\">\n\n")
	body.WriteString(`<div class="mainarticle" style="width: 100%"><div>`)

	if cfg.Images.ArticleImage != nil && *cfg.Images.ArticleImage != "" {
		if uri, ok := r.imageDataURI(*cfg.Images.ArticleImage); ok {
			body.WriteString(`<p><img alt="" src="` + uri + `" style="float: left; width: 200px; height: 200px; margin: 14px;" /></p>` + "\n\n")
		}
	}

	if s.intro != "" {
		body.WriteString(s.intro + "\n")
	}
	body.WriteString("</div><br>")

	for _, block := range s.blocks {
		body.WriteString(stripWidgets(block) + "\n")
	}

	if s.disclaimer != "" {
		body.WriteString("\n" + s.disclaimer + "\n")
	}
	body.WriteString("</div>")

	return `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>` + html.EscapeString(title) + `</title>
    <style>
        body {
            font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            margin: 0;
            padding: 20px;
            font-size: 12px;
        }
        .mainarticle {
            width: 100%;
        }
        .cover-page {
            margin: -20px;
        }
        .cover-page .cover {
            float: none;
            width: 100%;
            height: auto;
            margin: 0;
        }
        .stock-container {
            page-break-inside: avoid;
            margin-bottom: 20px;
            padding: 15px;
            border: 1px solid #ddd;
        }
        .stock-container h2 {
            margin-top: 0;
            color: #007bff;
            font-size: 16px;
        }
        .w-100 {
            width: 100%;
            margin-top: 10px;
        }
        .order-md-1, .order-md-3 {
            width: 100%;
        }
        .termsblk {
            margin-top: 30px;
            padding: 15px;
            background-color: #f8f9fa;
            border-left: 4px solid #dc3545;
            font-size: 10px;
        }
        img {
            float: left;
            width: 150px;
            height: 150px;
            margin: 10px;
        }
        .pagebreak {
            page-break-after: always;
        }
    </style>
</head>
<body>
` + body.String() + `
</body>
</html>`
}

// imageDataURI inlines an image from the images directory as a base64
// data URI. Returns ok=false when the file is missing or unreadable,
// in which case the image element is omitted.
func (r *Renderer) imageDataURI(filename string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(r.imagesDir, filepath.Base(filename)))
	if err != nil || len(data) == 0 {
		return "", false
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", false
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), true
}
