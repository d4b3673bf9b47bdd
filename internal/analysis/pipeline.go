// Package analysis runs the full report pipeline: PDF extraction,
// chunking, metric extraction, greenwashing detection, summarisation
// and risk scoring. Results are cached per filename.
package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carbon-compass/compass/internal/chunker"
	"github.com/carbon-compass/compass/internal/greenwash"
	"github.com/carbon-compass/compass/internal/metrics"
	"github.com/carbon-compass/compass/internal/model"
	"github.com/carbon-compass/compass/internal/pdfx"
	"github.com/carbon-compass/compass/internal/risk"
	"github.com/carbon-compass/compass/internal/summary"
)

// Pipeline wires the analysis stages together. Extraction failures abort
// the run; greenwashing and summarisation failures degrade to neutral
// results so one broken stage does not sink the whole analysis.
type Pipeline struct {
	extractor  *pdfx.Extractor
	chunker    *chunker.Chunker
	metrics    *metrics.Extractor
	detector   *greenwash.Detector
	summariser *summary.Summariser
	scorer     *risk.Scorer
	log        *zap.Logger

	// summaryTimeout bounds the summarisation stage; inference backends
	// can stall and must not hang the whole analysis. Zero means no limit.
	summaryTimeout time.Duration

	mu    sync.Mutex
	cache map[string]model.AnalysisResult
}

func New(extractor *pdfx.Extractor, ch *chunker.Chunker, detector *greenwash.Detector, summariser *summary.Summariser, summaryTimeout time.Duration) *Pipeline {
	return &Pipeline{
		extractor:      extractor,
		chunker:        ch,
		metrics:        metrics.New(),
		detector:       detector,
		summariser:     summariser,
		scorer:         risk.New(),
		log:            zap.L().With(zap.String("component", "analysis")),
		summaryTimeout: summaryTimeout,
		cache:          map[string]model.AnalysisResult{},
	}
}

// Analyse runs every stage for one uploaded report. With refresh false a
// previous result for the same filename is returned as-is.
func (p *Pipeline) Analyse(ctx context.Context, filename string, refresh bool) (model.AnalysisResult, error) {
	if !refresh {
		p.mu.Lock()
		cached, ok := p.cache[filename]
		p.mu.Unlock()
		if ok {
			p.log.Debug("returning cached analysis", zap.String("filename", filename))
			return cached, nil
		}
	}

	timings := map[string]float64{}

	start := time.Now()
	pdf, err := p.extractor.ExtractAll(ctx, filename)
	if err != nil {
		return model.AnalysisResult{}, eris.Wrapf(err, "analysis: extract %q", filename)
	}
	timings["pdf_extraction"] = time.Since(start).Seconds()
	fullText := pdf.FullText()

	start = time.Now()
	chunks := p.chunker.ChunkSections(pdf.Sections)
	timings["chunking"] = time.Since(start).Seconds()

	start = time.Now()
	extraction := p.metrics.ExtractFromChunks(chunks)
	timings["metric_extraction"] = time.Since(start).Seconds()

	start = time.Now()
	greenwashing := p.detector.Analyse(fullText)
	timings["greenwashing_detection"] = time.Since(start).Seconds()

	start = time.Now()
	reportSummary, err := p.summarise(ctx, pdf.Sections)
	if err != nil {
		// Commitment extraction is regex only and still works.
		p.log.Warn("summarisation failed, continuing without summaries",
			zap.String("filename", filename), zap.Error(err))
		reportSummary = model.ReportSummary{Commitments: summary.ExtractKeyCommitments(fullText)}
	}
	timings["summarisation"] = time.Since(start).Seconds()

	start = time.Now()
	riskScore := p.scorer.Score(fullText, extraction, greenwashing, reportSummary.Commitments)
	timings["risk_scoring"] = time.Since(start).Seconds()

	result := model.AnalysisResult{
		ID:          uuid.NewString(),
		Filename:    filename,
		Pdf:         pdf,
		ChunksCount: len(chunks),
		Metrics:     extraction,
		Greenwash:   greenwashing,
		Summary:     reportSummary,
		Risk:        riskScore,
		Timings:     timings,
		CreatedAt:   time.Now().UTC(),
	}

	p.mu.Lock()
	p.cache[filename] = result
	p.mu.Unlock()

	p.log.Info("analysis complete",
		zap.String("filename", filename),
		zap.Int("pages", len(pdf.Pages)),
		zap.Int("chunks", len(chunks)),
		zap.Int("metrics", len(extraction.Metrics)),
		zap.Int("greenwashing_flags", len(greenwashing.Flags)),
		zap.Float64("risk_score", riskScore.OverallScore))
	return result, nil
}

// summarise runs the summariser under the configured deadline.
func (p *Pipeline) summarise(ctx context.Context, sections []model.SectionText) (model.ReportSummary, error) {
	if p.summaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.summaryTimeout)
		defer cancel()
	}
	return p.summariser.SummariseFullReport(ctx, sections)
}

// Cached returns the stored analysis for a filename, if any.
func (p *Pipeline) Cached(filename string) (model.AnalysisResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	result, ok := p.cache[filename]
	return result, ok
}

// Evict removes a cached analysis.
func (p *Pipeline) Evict(filename string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, filename)
}
