package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/finstrategist/stockreport/internal/settings"
	"github.com/finstrategist/stockreport/internal/stockdata"
)

// Flipbook renders the page-turn document: a cover page (PDF cover
// image, falling back to the article image), a disclaimer page, an
// intro page, then one numbered page per stock. Chart widgets stay in
// place since this output is viewed live in a browser.
func (r *Renderer) Flipbook(cfg settings.ReportConfig, records []stockdata.Record) string {
	s := r.buildSections(cfg, records)
	title := cfg.Title
	if title == "" {
		title = settings.DefaultTitle
	}

	var pages strings.Builder

	cover := cfg.Images.PDFCoverImage
	if cover == nil || *cover == "" {
		cover = cfg.Images.ArticleImage
	}
	if cover != nil && *cover != "" {
		pages.WriteString(`<div class="page">
	<img src="../images/` + *cover + `" draggable="false" alt="" height="100%" width="100%" />
</div>`)
	}

	if s.disclaimer != "" {
		pages.WriteString(`<div class="page">
	<div id="disclaimer">
		<center><h2>Terms and Conditions</h2><br/>LEGAL NOTICE</center><br/>
		<div>` + s.disclaimer + `</div>
	</div>
</div>`)
	}

	if s.intro != "" {
		pages.WriteString(`<div class="page">
	<div id="top-stocks-intro-text" style="height: 100%; background-color: white; padding: 25px;">
		` + s.intro + `
	</div>
</div>`)
	}

	for i, rec := range records {
		pages.WriteString(r.flipbookStockPage(i+1, rec))
	}

	return flipbookShell(html.EscapeString(title), pages.String())
}

func (r *Renderer) flipbookStockPage(num int, rec stockdata.Record) string {
	company := html.EscapeString(rec.Get("Company"))
	ticker := html.EscapeString(rec.Get("Ticker"))
	price := html.EscapeString(rec.Get("Price"))
	marketCap := html.EscapeString(rec.Get("Market Cap"))
	description := rec.Get("Description")

	target := rec.Get("Target Price")
	if target == "" {
		target = rec.Get("Price")
	}
	if target == "" {
		target = "N/A"
	}

	return fmt.Sprintf(`<div class="page pagebreak">
	<div class="stock-container">
		<div class="stock-container-2">
			<div class="order-md-1">
				<h2 class="mt-1">%d) %s (<a target="_blank" href="https://trendadvisor.net/go/stocks/NASDAQ/%s/">NASDAQ:%s</a>)</h2>
				%s
				<br>
				<strong>Closing Price: </strong>$%s
				<br>
				<strong>Market Cap</strong>: $%s
				<br>
				<strong>Consensus Price Target: </strong>$%s
			</div>
			<div class="w-100 mt-2 order-md-3 stock-description-2">%s</div>
		</div>
	</div>
</div>`, num, company, ticker, ticker, ChartWidget(rec.Get("Ticker")), price, marketCap, html.EscapeString(target), description)
}

func flipbookShell(title, pages string) string {
	return `<!DOCTYPE html>
<html>
<head>
	<title>` + title + `</title>
	<meta charset="UTF-8">
	<script src="https://code.jquery.com/jquery-1.11.0.min.js"></script>
	<script src="https://go.trendadvisor.net/tools/flipbook/js/turn.min.js" type="text/javascript"></script>
	<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/4.7.0/css/font-awesome.min.css">
	<link rel="stylesheet" href="https://go.trendadvisor.net/tools/flipbook/css/flipbook.css">
</head>
<body>
<div class="wrapper">
	<div class="flipbook-viewport">
		<div class="container">
			<div class="flipbook" id="flipbook">
				` + pages + `
			</div>
			<div class="flip-control">
				<a href="#" id="prev"><i class="fa fa-angle-left" style="font-size:3rem;color:black;font-weight: 600;"></i></a>
				<a href="#" id="next"><i class="fa fa-angle-right" style="font-size:3rem;color:black;font-weight: 600;"></i></a>
			</div>
		</div>
	</div>
</div>
<script type="text/javascript">
	window.addEventListener("resize", resize);

	document.body.addEventListener("touchmove", function(e) {
		e.preventDefault();
	});

	function loadApp() {
		var size = getSize();
		$(".flipbook").turn({
			width: size.width,
			height: size.height,
			elevation: 50,
			gradients: true,
			autoCenter: true,
		});
		$(".flipbook").turn("display", "single");
	}

	function getSize() {
		var width;
		var height;
		if ($(window).width() > 980) {
			height = ($(".wrapper").height() * 0.9);
			width = height * 0.77;
		} else {
			width = (document.body.clientWidth) * 0.8;
			height = width * 1.3;
		}
		return {width: width, height: height};
	}

	function resize() {
		var size = getSize();
		if (size.width > size.height) {
			$(".flipbook").turn("display", "double");
		} else {
			$(".flipbook").turn("display", "single");
		}
		$(".flipbook").turn("size", size.width, size.height);
	}

	var oTurn = $(".flipbook");
	$("#prev").click(function(e) {
		e.preventDefault();
		oTurn.turn("previous");
	});
	$("#next").click(function(e) {
		e.preventDefault();
		oTurn.turn("next");
	});

	$(".wrapper").css({"height": $(window).height()});

	loadApp();
</script>
</body>
</html>`
}
