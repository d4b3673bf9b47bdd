// Package store persists analysis results and emission calculations.
// Two backends exist: SQLite for single-user CLI use and Postgres for
// the API server.
package store

import (
	"context"
	"time"

	"github.com/carbon-compass/compass/internal/model"
)

// AnalysisFilter specifies criteria for listing stored analyses.
type AnalysisFilter struct {
	Filename  string          `json:"filename,omitempty"`
	RiskLevel model.RiskLevel `json:"risk_level,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// AnalysisSummary is the listing row for a stored analysis.
type AnalysisSummary struct {
	ID        string          `json:"id"`
	Filename  string          `json:"filename"`
	RiskLevel model.RiskLevel `json:"risk_level"`
	RiskScore float64         `json:"risk_score"`
	CreatedAt time.Time       `json:"created_at"`
}

// CalculationRecord is a stored bulk emission calculation.
type CalculationRecord struct {
	ID        string               `json:"id"`
	Source    string               `json:"source"`
	Total     model.TotalEmissions `json:"total"`
	CreatedAt time.Time            `json:"created_at"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Analyses
	SaveAnalysis(ctx context.Context, result model.AnalysisResult) error
	// GetAnalysis returns the most recent analysis for a filename, or
	// nil when none is stored.
	GetAnalysis(ctx context.Context, filename string) (*model.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisSummary, error)

	// Calculations
	SaveCalculation(ctx context.Context, source string, total model.TotalEmissions) (string, error)
	GetCalculation(ctx context.Context, id string) (*CalculationRecord, error)
	ListCalculations(ctx context.Context, limit int) ([]CalculationRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
