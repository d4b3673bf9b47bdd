package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-compass/compass/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_SaveAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs("a1", "report.pdf", pgxmock.AnyArg(), "MEDIUM", 42.5, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveAnalysis(context.Background(), model.AnalysisResult{
		ID:       "a1",
		Filename: "report.pdf",
		Risk:     model.RiskScore{OverallScore: 42.5, RiskLevel: model.RiskMedium},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	stored, err := json.Marshal(model.AnalysisResult{ID: "a1", Filename: "report.pdf"})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT result FROM analyses WHERE filename = \$1`).
		WithArgs("report.pdf").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow(stored))

	result, err := s.GetAnalysis(context.Background(), "report.pdf")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "a1", result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT result FROM analyses`).
		WithArgs("unknown.pdf").
		WillReturnError(pgx.ErrNoRows)

	result, err := s.GetAnalysis(context.Background(), "unknown.pdf")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAnalyses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, filename, risk_level, risk_score, created_at FROM analyses`).
		WithArgs("HIGH", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "filename", "risk_level", "risk_score", "created_at"}).
			AddRow("a1", "report.pdf", "HIGH", 70.0, now))

	summaries, err := s.ListAnalyses(context.Background(), AnalysisFilter{RiskLevel: model.RiskHigh})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, model.RiskHigh, summaries[0].RiskLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCalculation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO calculations`).
		WithArgs(pgxmock.AnyArg(), "activity.csv", pgxmock.AnyArg(), 3105.0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := s.SaveCalculation(context.Background(), "activity.csv", model.TotalEmissions{TotalKgCO2e: 3105})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCalculation_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, source, result, created_at FROM calculations`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetCalculation(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
