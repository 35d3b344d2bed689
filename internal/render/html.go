package render

import (
	"strings"

	"github.com/finstrategist/stockreport/internal/settings"
	"github.com/finstrategist/stockreport/internal/stockdata"
)

// HTML renders the article fragment. The output is written next to the
// images directory, so the article image is referenced through the
// ../images/ sibling path.
func (r *Renderer) HTML(cfg settings.ReportConfig, records []stockdata.Record) string {
	s := r.buildSections(cfg, records)

	var b strings.Builder
	b.WriteString("<div id=\"article-body\">\n\n")
	b.WriteString(`<div class="mainarticle" style="width: 100%"><div><title></title>`)

	if cfg.Images.ArticleImage != nil && *cfg.Images.ArticleImage != "" {
		b.WriteString(`<p><img alt="" src="../images/` + *cfg.Images.ArticleImage +
			`" style="float: left; width: 200px; height: 200px; margin: 14px;"></p>` + "\n\n")
	}

	if s.intro != "" {
		b.WriteString(s.intro + "\n")
	}
	b.WriteString("</div><br>")

	for _, block := range s.blocks {
		b.WriteString(block + "\n")
	}

	if s.disclaimer != "" {
		b.WriteString("\n" + s.disclaimer + "\n")
	}

	b.WriteString("</div>")
	return b.String()
}
