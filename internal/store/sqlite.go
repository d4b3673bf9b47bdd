package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/carbon-compass/compass/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	result     TEXT NOT NULL,
	risk_level TEXT NOT NULL,
	risk_score REAL NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS calculations (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	result       TEXT NOT NULL,
	total_kg     REAL NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_filename ON analyses(filename);
CREATE INDEX IF NOT EXISTS idx_analyses_risk_level ON analyses(risk_level);
CREATE INDEX IF NOT EXISTS idx_calculations_source ON calculations(source);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, result model.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analysis")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, filename, result, risk_level, risk_score, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		result.ID, result.Filename, string(resultJSON),
		string(result.Risk.RiskLevel), result.Risk.OverallScore, result.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert analysis")
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, filename string) (*model.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT result FROM analyses WHERE filename = ? ORDER BY created_at DESC LIMIT 1`,
		filename,
	)

	var resultJSON string
	err := row.Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get analysis")
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal analysis")
	}
	return &result, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisSummary, error) {
	query := `SELECT id, filename, risk_level, risk_score, created_at FROM analyses WHERE 1=1`
	var args []any

	if filter.Filename != "" {
		query += ` AND filename = ?`
		args = append(args, filter.Filename)
	}
	if filter.RiskLevel != "" {
		query += ` AND risk_level = ?`
		args = append(args, string(filter.RiskLevel))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var summaries []AnalysisSummary
	for rows.Next() {
		var a AnalysisSummary
		if err := rows.Scan(&a.ID, &a.Filename, &a.RiskLevel, &a.RiskScore, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		summaries = append(summaries, a)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) SaveCalculation(ctx context.Context, source string, total model.TotalEmissions) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(total)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal calculation")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO calculations (id, source, result, total_kg, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, source, string(resultJSON), total.TotalKgCO2e, now,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert calculation")
	}
	return id, nil
}

func (s *SQLiteStore) GetCalculation(ctx context.Context, id string) (*CalculationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, result, created_at FROM calculations WHERE id = ?`,
		id,
	)

	var rec CalculationRecord
	var resultJSON string
	err := row.Scan(&rec.ID, &rec.Source, &resultJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("calculation not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get calculation")
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Total); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal calculation")
	}
	return &rec, nil
}

func (s *SQLiteStore) ListCalculations(ctx context.Context, limit int) ([]CalculationRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, result, created_at FROM calculations ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list calculations")
	}
	defer rows.Close()

	var records []CalculationRecord
	for rows.Next() {
		var rec CalculationRecord
		var resultJSON string
		if err := rows.Scan(&rec.ID, &rec.Source, &resultJSON, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan calculation")
		}
		if err := json.Unmarshal([]byte(resultJSON), &rec.Total); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal calculation")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list calculations iterate")
}
