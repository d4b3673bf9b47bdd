// Package server exposes the analysis and calculation pipelines over
// HTTP for the web frontend.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/carbon-compass/compass/internal/analysis"
	"github.com/carbon-compass/compass/internal/calculator"
	"github.com/carbon-compass/compass/internal/factors"
	"github.com/carbon-compass/compass/internal/parser"
	"github.com/carbon-compass/compass/internal/store"
	"github.com/carbon-compass/compass/internal/verify"
)

// Options configures the HTTP server.
type Options struct {
	ReportsDir     string
	MaxUploadMB    int
	AllowedOrigins []string
	// Store persists results when non-nil. The API works without one.
	Store store.Store
}

// Server wires the pipelines into HTTP handlers.
type Server struct {
	pipeline *analysis.Pipeline
	calc     *calculator.Calculator
	parser   *parser.ActivityParser
	verifier *verify.Engine
	catalog  *factors.Catalog

	reportsDir     string
	maxUploadBytes int64
	allowedOrigins []string
	store          store.Store
	log            *zap.Logger
}

func New(pipeline *analysis.Pipeline, calc *calculator.Calculator, catalog *factors.Catalog, opts Options) *Server {
	maxUpload := opts.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 50
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return &Server{
		pipeline:       pipeline,
		calc:           calc,
		parser:         parser.New(),
		verifier:       verify.New(),
		catalog:        catalog,
		reportsDir:     opts.ReportsDir,
		maxUploadBytes: int64(maxUpload) << 20,
		allowedOrigins: origins,
		store:          opts.Store,
		log:            zap.L().With(zap.String("component", "server")),
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/analysis/{filename}", s.handleAnalysis)
		r.Get("/analyses", s.handleListAnalyses)

		r.Post("/calculate/single", s.handleCalculateSingle)
		r.Post("/calculate/bulk", s.handleCalculateBulk)
		r.Post("/calculate/upload", s.handleCalculateUpload)
		r.Post("/calculate/preview", s.handleCalculatePreview)

		r.Post("/compare/{filename}", s.handleCompare)

		r.Get("/factors", s.handleFactors)
	})

	return r
}
