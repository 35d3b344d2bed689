package render

import (
	"github.com/finstrategist/stockreport/internal/settings"
	"github.com/finstrategist/stockreport/internal/stockdata"
)

// defaultStockBlockTemplate is used when a configuration leaves
// stock_block_html empty. Intro and disclaimer have no fallback.
const defaultStockBlockTemplate = `<br><div class="stock-container pagebreak">
    <div class="order-md-1">
        <h2 class="mt-1">[Company] ([Exchange]:[Ticker])</h2>
        [Chart]<br>
        <strong>Stock Price: </strong>$[Price]<br>
        <strong>Market Cap</strong>: $[Market Cap]<br>
        <strong>Consensus Price Target: </strong>$[Target Price]
    </div>
    <div class="w-100 mt-2 order-md-3">[Description]</div>
</div>`

// Renderer composes the three output targets from a configuration and
// its records. imagesDir is the on-disk image root, needed only by the
// print target to inline assets.
type Renderer struct {
	engine    *Engine
	imagesDir string
}

// NewRenderer builds a renderer around a substitution engine.
func NewRenderer(engine *Engine, imagesDir string) *Renderer {
	return &Renderer{engine: engine, imagesDir: imagesDir}
}

// sections is the shared skeleton every target arranges in its own way:
// substituted intro, one substituted block per record, and the
// disclaimer kept verbatim.
type sections struct {
	intro      string
	blocks     []string
	disclaimer string
}

func (r *Renderer) buildSections(cfg settings.ReportConfig, records []stockdata.Record) sections {
	meta := Meta{Title: cfg.Title, Author: cfg.Author}

	var s sections
	if cfg.ContentTemplates.IntroHTML != "" {
		s.intro = r.engine.Substitute(cfg.ContentTemplates.IntroHTML, nil, meta)
	}

	blockTemplate := cfg.ContentTemplates.StockBlockHTML
	if blockTemplate == "" {
		blockTemplate = defaultStockBlockTemplate
	}
	for i := range records {
		s.blocks = append(s.blocks, r.engine.Substitute(blockTemplate, &records[i], meta))
	}

	s.disclaimer = cfg.ContentTemplates.DisclaimerHTML
	return s
}
