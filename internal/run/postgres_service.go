package run

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asaply/orderflow/internal/engine"
)

const runColumns = `
	id, merchant_id, plan, status, verified, missing_items, mismatches,
	log, screenshot_url, error_message, created_at, started_at, completed_at`

type PostgresService struct {
	pool *pgxpool.Pool
}

func NewPostgresService(ctx context.Context, dsn string) (*PostgresService, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	svc := &PostgresService{pool: pool}
	if err := svc.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return svc, nil
}

func (s *PostgresService) Close() {
	s.pool.Close()
}

func (s *PostgresService) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	merchant_id TEXT NOT NULL,
	plan JSONB NOT NULL,
	status TEXT NOT NULL,
	verified BOOLEAN NOT NULL DEFAULT FALSE,
	missing_items JSONB,
	mismatches JSONB,
	log JSONB,
	screenshot_url TEXT,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ
)`)
	if err != nil {
		return fmt.Errorf("init runs schema: %w", err)
	}
	return nil
}

func (s *PostgresService) Create(ctx context.Context, input CreateInput) (Run, error) {
	if strings.TrimSpace(input.MerchantID) == "" {
		return Run{}, errors.New("merchant id is required")
	}
	if err := input.Plan.Validate(); err != nil {
		return Run{}, err
	}

	planJSON, err := json.Marshal(input.Plan)
	if err != nil {
		return Run{}, fmt.Errorf("marshal plan: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
INSERT INTO runs (id, merchant_id, plan, status, verified, created_at)
VALUES ($1, $2, $3::jsonb, $4, FALSE, $5)
RETURNING `+runColumns, NewID(), input.MerchantID, planJSON, StatusQueued, time.Now().UTC())

	return scanRun(row)
}

func (s *PostgresService) Start(ctx context.Context, runID string, started time.Time) (Run, error) {
	row := s.pool.QueryRow(ctx, `
UPDATE runs SET status = $2, started_at = $3 WHERE id = $1
RETURNING `+runColumns, runID, StatusRunning, normalizeTime(started))
	return scanRun(row)
}

func (s *PostgresService) Complete(ctx context.Context, input CompleteInput) (Run, error) {
	status := StatusFailed
	if input.Outcome.OK {
		status = StatusPassed
	}

	missingJSON, err := json.Marshal(input.Outcome.MissingItems)
	if err != nil {
		return Run{}, fmt.Errorf("marshal missing items: %w", err)
	}
	mismatchesJSON, err := json.Marshal(input.Outcome.Mismatches)
	if err != nil {
		return Run{}, fmt.Errorf("marshal mismatches: %w", err)
	}
	logJSON, err := json.Marshal(input.Outcome.Log)
	if err != nil {
		return Run{}, fmt.Errorf("marshal log: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
UPDATE runs
SET status = $2, verified = $3, missing_items = $4::jsonb, mismatches = $5::jsonb,
	log = $6::jsonb, screenshot_url = $7, completed_at = $8
WHERE id = $1
RETURNING `+runColumns,
		input.RunID, status, input.Outcome.Verified, missingJSON, mismatchesJSON,
		logJSON, nullableString(input.ScreenshotURL), normalizeTime(input.Completed))
	return scanRun(row)
}

func (s *PostgresService) Fail(ctx context.Context, input FailInput) (Run, error) {
	logJSON, err := json.Marshal(input.Log)
	if err != nil {
		return Run{}, fmt.Errorf("marshal log: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
UPDATE runs
SET status = $2, error_message = $3, log = $4::jsonb, completed_at = $5
WHERE id = $1
RETURNING `+runColumns,
		input.RunID, StatusErrored, input.Error, logJSON, normalizeTime(input.Completed))
	return scanRun(row)
}

func (s *PostgresService) Get(ctx context.Context, runID string) (Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, runID)
	return scanRun(row)
}

func (s *PostgresService) List(ctx context.Context) ([]Run, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, record)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		record         Run
		planJSON       []byte
		missingJSON    []byte
		mismatchesJSON []byte
		logJSON        []byte
		screenshotURL  sql.NullString
		errorMessage   sql.NullString
		startedAt      sql.NullTime
		completedAt    sql.NullTime
	)

	err := row.Scan(
		&record.ID, &record.MerchantID, &planJSON, &record.Status, &record.Verified,
		&missingJSON, &mismatchesJSON, &logJSON, &screenshotURL, &errorMessage,
		&record.CreatedAt, &startedAt, &completedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	if err := json.Unmarshal(planJSON, &record.Plan); err != nil {
		return Run{}, fmt.Errorf("decode stored plan: %w", err)
	}
	if len(missingJSON) > 0 {
		var missing []engine.MissingItem
		if err := json.Unmarshal(missingJSON, &missing); err != nil {
			return Run{}, fmt.Errorf("decode missing items: %w", err)
		}
		record.MissingItems = missing
	}
	if len(mismatchesJSON) > 0 {
		if err := json.Unmarshal(mismatchesJSON, &record.Mismatches); err != nil {
			return Run{}, fmt.Errorf("decode mismatches: %w", err)
		}
	}
	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &record.Log); err != nil {
			return Run{}, fmt.Errorf("decode log: %w", err)
		}
	}
	record.ScreenshotURL = screenshotURL.String
	record.Error = errorMessage.String
	if startedAt.Valid {
		record.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time
	}
	return record, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
