package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/carbon-compass/compass/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	filename   TEXT NOT NULL,
	result     JSONB NOT NULL,
	risk_level TEXT NOT NULL,
	risk_score DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS calculations (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source     TEXT NOT NULL,
	result     JSONB NOT NULL,
	total_kg   DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_filename ON analyses(filename);
CREATE INDEX IF NOT EXISTS idx_analyses_risk_level ON analyses(risk_level);
CREATE INDEX IF NOT EXISTS idx_analyses_filename_created ON analyses(filename, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_calculations_source ON calculations(source);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, result model.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal analysis")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, filename, result, risk_level, risk_score, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		result.ID, result.Filename, resultJSON,
		string(result.Risk.RiskLevel), result.Risk.OverallScore, result.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: insert analysis")
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, filename string) (*model.AnalysisResult, error) {
	var resultJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM analyses WHERE filename = $1 ORDER BY created_at DESC LIMIT 1`,
		filename,
	).Scan(&resultJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get analysis")
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal analysis")
	}
	return &result, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisSummary, error) {
	query := `SELECT id, filename, risk_level, risk_score, created_at FROM analyses WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Filename != "" {
		query += fmt.Sprintf(` AND filename = $%d`, argIdx)
		args = append(args, filter.Filename)
		argIdx++
	}
	if filter.RiskLevel != "" {
		query += fmt.Sprintf(` AND risk_level = $%d`, argIdx)
		args = append(args, string(filter.RiskLevel))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var summaries []AnalysisSummary
	for rows.Next() {
		var a AnalysisSummary
		if err := rows.Scan(&a.ID, &a.Filename, &a.RiskLevel, &a.RiskScore, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		summaries = append(summaries, a)
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) SaveCalculation(ctx context.Context, source string, total model.TotalEmissions) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(total)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal calculation")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO calculations (id, source, result, total_kg, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, source, resultJSON, total.TotalKgCO2e, now,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert calculation")
	}
	return id, nil
}

func (s *PostgresStore) GetCalculation(ctx context.Context, id string) (*CalculationRecord, error) {
	var rec CalculationRecord
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, source, result, created_at FROM calculations WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Source, &resultJSON, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("calculation not found: %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get calculation %s", id)
	}
	if err := json.Unmarshal(resultJSON, &rec.Total); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal calculation")
	}
	return &rec, nil
}

func (s *PostgresStore) ListCalculations(ctx context.Context, limit int) ([]CalculationRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, source, result, created_at FROM calculations ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list calculations")
	}
	defer rows.Close()

	var records []CalculationRecord
	for rows.Next() {
		var rec CalculationRecord
		var resultJSON []byte
		if err := rows.Scan(&rec.ID, &rec.Source, &resultJSON, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan calculation")
		}
		if err := json.Unmarshal(resultJSON, &rec.Total); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal calculation")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list calculations iterate")
}
