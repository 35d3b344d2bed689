package render

import (
	"encoding/json"
	"net/url"
)

// Widget boundary markers. The PDF target strips everything between
// them because the conversion engine cannot execute iframe content.
const (
	widgetBegin = "<!-- TradingView Widget BEGIN -->"
	widgetEnd   = "<!-- TradingView Widget END -->"
)

// widgetConfig is the parameter blob URL-encoded into the iframe src.
// Field order matters only for output stability.
type widgetConfig struct {
	Symbol         string `json:"symbol"`
	Width          string `json:"width"`
	Height         string `json:"height"`
	DateRange      string `json:"dateRange"`
	ColorTheme     string `json:"colorTheme"`
	TrendLineColor string `json:"trendLineColor"`
	UnderLineColor string `json:"underLineColor"`
	IsTransparent  bool   `json:"isTransparent"`
	Autosize       bool   `json:"autosize"`
	LargeChartURL  string `json:"largeChartUrl"`
	UTMSource      string `json:"utm_source"`
	UTMMedium      string `json:"utm_medium"`
	UTMCampaign    string `json:"utm_campaign"`
	PageURI        string `json:"page-uri"`
}

// ChartWidget returns the embeddable mini-chart fragment for a ticker
// symbol. Pure markup; the external service is only fetched when a
// browser renders the output.
func ChartWidget(ticker string) string {
	cfg := widgetConfig{
		Symbol:         ticker,
		Width:          "600",
		Height:         "220",
		DateRange:      "12m",
		ColorTheme:     "light",
		TrendLineColor: "#37a6ef",
		UnderLineColor: "#E3F2FD",
		IsTransparent:  false,
		Autosize:       true,
		UTMSource:      "finstrategist.com",
		UTMMedium:      "widget",
		UTMCampaign:    "mini-symbol-overview",
		PageURI:        "finstrategist.com/go/news/rep164556/TopStocksReport",
	}
	encoded, _ := json.Marshal(cfg)
	src := "https://www.tradingview-widget.com/embed-widget/mini-symbol-overview/?locale=en#" + url.QueryEscape(string(encoded))

	return widgetBegin + `
<div class="tradingview-widget-container" style="width: 600px; height: 220px;">
<iframe scrolling="no" allowtransparency="true" frameborder="0" src="` + src + `" title="mini symbol-overview TradingView widget" lang="en" style="user-select: none; box-sizing: border-box; display: block; height: 100%; width: 100%;"></iframe>
<style>
	.tradingview-widget-copyright {
		font-size: 13px !important;
		line-height: 32px !important;
		text-align: center !important;
		vertical-align: middle !important;
		font-family: -apple-system, BlinkMacSystemFont, 'Trebuchet MS', Roboto, Ubuntu, sans-serif !important;
		color: #B2B5BE !important;
	}
	.tradingview-widget-copyright .blue-text {
		color: #2962FF !important;
	}
	.tradingview-widget-copyright a {
		text-decoration: none !important;
		color: #B2B5BE !important;
	}
	.tradingview-widget-copyright a:hover .blue-text {
		color: #1E53E5 !important;
	}
</style>
</div>
` + widgetEnd
}
