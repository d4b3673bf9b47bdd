package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carbon-compass/compass/internal/analysis"
	"github.com/carbon-compass/compass/internal/calculator"
	"github.com/carbon-compass/compass/internal/chunker"
	"github.com/carbon-compass/compass/internal/factors"
	"github.com/carbon-compass/compass/internal/greenwash"
	"github.com/carbon-compass/compass/internal/parser"
	"github.com/carbon-compass/compass/internal/pdfx"
	"github.com/carbon-compass/compass/internal/store"
	"github.com/carbon-compass/compass/internal/summary"
	"github.com/carbon-compass/compass/internal/verify"
	"github.com/carbon-compass/compass/pkg/textgen"
)

// appEnv bundles the long-lived dependencies commands share.
type appEnv struct {
	Store    store.Store
	Pipeline *analysis.Pipeline
	Catalog  *factors.Catalog
	Calc     *calculator.Calculator
	Parser   *parser.ActivityParser
	Verifier *verify.Engine
}

func (e *appEnv) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
}

// initEnv validates the configuration for the given mode and builds the
// full application stack.
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	detector, err := greenwash.New()
	if err != nil {
		st.Close()
		return nil, eris.Wrap(err, "init greenwashing detector")
	}

	client, err := summaryClient()
	if err != nil {
		st.Close()
		return nil, err
	}

	extractor := pdfx.NewExtractor(
		pdfx.NewPoppler(cfg.Pdf.PdfToTextPath, cfg.Pdf.PdfInfoPath),
		cfg.Reports.Dir,
	)
	pipeline := analysis.New(
		extractor,
		chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap),
		detector,
		summary.New(client),
		cfg.Summary.Timeout(),
	)

	catalog := factors.Load(cfg.Factors.DataDir)

	zap.L().Info("environment ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("summary_provider", cfg.Summary.Provider),
		zap.String("reports_dir", cfg.Reports.Dir),
	)

	return &appEnv{
		Store:    st,
		Pipeline: pipeline,
		Catalog:  catalog,
		Calc:     calculator.New(catalog),
		Parser:   parser.New(),
		Verifier: verify.New(),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return store.NewSQLite(cfg.Store.DatabaseURL)
	}
}

func summaryClient() (textgen.Client, error) {
	switch cfg.Summary.Provider {
	case "http":
		return textgen.NewHTTP(cfg.Summary.Endpoint, cfg.Summary.Key, cfg.Summary.RPS, cfg.Summary.Timeout()), nil
	case "anthropic":
		return textgen.NewAnthropic(cfg.Summary.Key, cfg.Summary.Model), nil
	case "extractive":
		return textgen.NewExtractive(), nil
	default:
		return nil, eris.Errorf("unknown summary provider %q", cfg.Summary.Provider)
	}
}
