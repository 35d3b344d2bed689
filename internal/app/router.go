package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/finstrategist/stockreport/internal/generator"
	"github.com/finstrategist/stockreport/internal/platform/httpx"
	"github.com/finstrategist/stockreport/internal/settings"
	"github.com/finstrategist/stockreport/web"
)

// Pinger checks downstream service availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SettingsHandler  *settings.Handler
	GeneratorHandler *generator.Handler
	PDFService       Pinger
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/configurations", params.SettingsHandler.MountRoutes)
		params.GeneratorHandler.MountRoutes(r)
		r.Post("/manual-pdf", params.SettingsHandler.ManualPDF)
		r.Get("/pdf/ping", func(w http.ResponseWriter, req *http.Request) {
			if err := params.PDFService.Ping(req.Context()); err != nil {
				params.Logger.Warn("pdf service ping", slog.Any("error", err))
				httpx.Error(w, http.StatusServiceUnavailable, "PDF conversion service is unavailable")
				return
			}
			httpx.Success(w, "PDF conversion service is available", nil)
		})
	})

	// Generated artifacts and uploaded images are served straight off
	// disk; the ../images/ relative paths inside generated HTML depend
	// on these two mounts staying siblings.
	r.Handle("/reports/*", http.StripPrefix("/reports/", http.FileServer(http.Dir(params.Config.ReportsDir))))
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(params.Config.ImagesDir))))

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.FileServer(http.FS(staticFS))
		r.Handle("/static/*", staticCacheHandler(http.StripPrefix("/static/", fileServer)))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFileFS(w, req, staticFS, "index.html")
		})
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers so
// browsers keep manager page assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
