package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstrategist/stockreport/internal/settings"
	"github.com/finstrategist/stockreport/internal/stockdata"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 64))

func testRenderer(imagesDir string) *Renderer {
	engine := NewEngineAt(func() time.Time {
		return time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	})
	return NewRenderer(engine, imagesDir)
}

func twoRecords() []stockdata.Record {
	cols := []string{"Ticker", "Company", "Price", "Market Cap", "Description"}
	return []stockdata.Record{
		stockdata.NewRecord(cols, []string{"AAPL", "Apple Inc", "190.50", "2.9T", "Designs phones."}),
		stockdata.NewRecord(cols, []string{"MSFT", "Microsoft", "410.10", "3.1T", "Sells software."}),
	}
}

func TestHTMLRendersOneBlockPerRecord(t *testing.T) {
	cfg := settings.ReportConfig{
		FileName: "weekly",
		Title:    "Weekly Picks",
		ContentTemplates: settings.ContentTemplates{
			IntroHTML:      "<p>Intro for [Report Title]</p>",
			StockBlockHTML: `<div class="stock-container">[Company] at $[Price]</div>`,
			DisclaimerHTML: "<p>Not advice. [Company] stays verbatim here.</p>",
		},
	}

	out := testRenderer(t.TempDir()).HTML(cfg, twoRecords())

	assert.Contains(t, out, `<div id="article-body">`)
	assert.Contains(t, out, "Intro for Weekly Picks")
	assert.Contains(t, out, "Apple Inc at $190.50")
	assert.Contains(t, out, "Microsoft at $410.10")
	assert.Equal(t, 2, strings.Count(out, "stock-container"))

	// The disclaimer is never run through substitution.
	assert.Contains(t, out, "[Company] stays verbatim here.")
}

func TestHTMLArticleImageUsesSiblingPath(t *testing.T) {
	img := "weekly_article.png"
	cfg := settings.ReportConfig{
		FileName: "weekly",
		Images:   settings.Images{ArticleImage: &img},
	}
	out := testRenderer(t.TempDir()).HTML(cfg, nil)
	assert.Contains(t, out, `src="../images/weekly_article.png"`)
}

func TestPDFDocumentStripsWidgets(t *testing.T) {
	cfg := settings.ReportConfig{
		FileName: "weekly",
		Title:    "Weekly Picks",
		ContentTemplates: settings.ContentTemplates{
			StockBlockHTML: "<div>[Company] [Chart]</div>",
		},
	}

	out := testRenderer(t.TempDir()).PDFDocument(cfg, twoRecords())

	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.NotContains(t, out, widgetBegin)
	assert.NotContains(t, out, "tradingview-widget-container")
	assert.Equal(t, 2, strings.Count(out, chartPlaceholder))
	assert.Contains(t, out, "page-break-after: always")
	assert.Contains(t, out, "page-break-inside: avoid")
}

func TestPDFDocumentInlinesImages(t *testing.T) {
	imagesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "weekly_cover.png"), pngBytes, 0o644))

	cover := "weekly_cover.png"
	missing := "weekly_article.png"
	cfg := settings.ReportConfig{
		FileName: "weekly",
		Images:   settings.Images{PDFCoverImage: &cover, ArticleImage: &missing},
	}

	out := testRenderer(imagesDir).PDFDocument(cfg, nil)

	assert.Contains(t, out, "data:image/png;base64,")
	assert.Contains(t, out, `class="cover-page pagebreak"`)
	// The missing article image is omitted, not referenced by path.
	assert.NotContains(t, out, "weekly_article.png")
	assert.NotContains(t, out, "../images/")
}

func TestFlipbookPages(t *testing.T) {
	article := "weekly_article.png"
	cfg := settings.ReportConfig{
		FileName: "weekly",
		Title:    "Weekly Picks",
		Images:   settings.Images{ArticleImage: &article},
		ContentTemplates: settings.ContentTemplates{
			IntroHTML:      "<p>Welcome</p>",
			DisclaimerHTML: "<p>Legal text</p>",
		},
	}

	out := testRenderer(t.TempDir()).Flipbook(cfg, twoRecords())

	// Cover falls back to the article image when no PDF cover is set.
	assert.Contains(t, out, `src="../images/weekly_article.png"`)
	assert.Contains(t, out, "Terms and Conditions")
	assert.Contains(t, out, "Legal text")
	assert.Contains(t, out, "<p>Welcome</p>")

	assert.Contains(t, out, "1) Apple Inc")
	assert.Contains(t, out, "2) Microsoft")
	assert.Contains(t, out, "https://trendadvisor.net/go/stocks/NASDAQ/AAPL/")
	assert.Contains(t, out, "NASDAQ:MSFT")

	// Charts stay live in the flipbook.
	assert.Contains(t, out, widgetBegin)
	assert.Contains(t, out, "turn.min.js")
}

func TestFlipbookTargetPriceFallback(t *testing.T) {
	cols := []string{"Ticker", "Company"}
	records := []stockdata.Record{stockdata.NewRecord(cols, []string{"AAPL", "Apple Inc"})}

	out := testRenderer(t.TempDir()).Flipbook(settings.ReportConfig{FileName: "weekly"}, records)
	assert.Contains(t, out, "<strong>Consensus Price Target: </strong>$N/A")
}
