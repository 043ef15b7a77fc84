package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pglens/pglens/internal/analyzer"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = errors.New("analysis not found")

const schema = `
CREATE TABLE IF NOT EXISTS plan_analyses (
	id                UUID PRIMARY KEY,
	title             TEXT NOT NULL DEFAULT '',
	query             TEXT NOT NULL DEFAULT '',
	query_fingerprint TEXT NOT NULL DEFAULT '',
	root_node_type    TEXT NOT NULL,
	total_cost        DOUBLE PRECISION NOT NULL DEFAULT 0,
	execution_time_ms DOUBLE PRECISION,
	plan_raw          JSONB NOT NULL,
	result            JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_plan_analyses_created_at ON plan_analyses (created_at);
CREATE INDEX IF NOT EXISTS ix_plan_analyses_fingerprint ON plan_analyses (query_fingerprint);
`

// Record is one persisted analysis. The whole PlanAnalysisResult is
// stored verbatim as a JSON blob; the core never touches storage itself.
type Record struct {
	ID              uuid.UUID                    `json:"id"`
	Title           string                       `json:"title,omitempty"`
	Query           string                       `json:"query,omitempty"`
	Fingerprint     string                       `json:"query_fingerprint,omitempty"`
	RootNodeType    string                       `json:"root_node_type"`
	TotalCost       float64                      `json:"total_cost"`
	ExecutionTimeMs *float64                     `json:"execution_time_ms,omitempty"`
	PlanRaw         json.RawMessage              `json:"plan_raw"`
	Result          *analyzer.PlanAnalysisResult `json:"result"`
	CreatedAt       time.Time                    `json:"created_at"`
}

// Store persists analysis results in PostgreSQL. One connection per CLI
// invocation; callers own the lifecycle via Close.
type Store struct {
	conn *pgx.Conn
}

func Open(ctx context.Context, connStr string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

// Init creates the history schema if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("initializing history schema: %w", err)
	}
	return nil
}

// Save inserts a record, assigning an id and query fingerprint when
// absent, and returns the stored id.
func (s *Store) Save(ctx context.Context, rec *Record) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Fingerprint == "" {
		rec.Fingerprint = Fingerprint(rec.Query)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding analysis result: %w", err)
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO plan_analyses
			(id, title, query, query_fingerprint, root_node_type, total_cost, execution_time_ms, plan_raw, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10)`,
		rec.ID, rec.Title, rec.Query, rec.Fingerprint, rec.RootNodeType, rec.TotalCost,
		rec.ExecutionTimeMs, string(rec.PlanRaw), string(resultJSON), rec.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("saving analysis: %w", err)
	}
	return rec.ID, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, title, query, query_fingerprint, root_node_type, total_cost, execution_time_ms,
		       plan_raw::text, result::text, created_at
		FROM plan_analyses WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading analysis %s: %w", id, err)
	}
	return rec, nil
}

// List returns records newest-first. titleSearch, when non-empty, is a
// case-insensitive substring match on the title.
func (s *Store) List(ctx context.Context, limit, offset int, titleSearch string) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, title, query, query_fingerprint, root_node_type, total_cost, execution_time_ms,
		       plan_raw::text, result::text, created_at
		FROM plan_analyses`
	args := []any{limit, offset}
	if titleSearch != "" {
		query += ` WHERE title ILIKE '%' || $3 || '%'`
		args = append(args, titleSearch)
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("listing analyses: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM plan_analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting analysis %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec        Record
		planRaw    string
		resultJSON string
	)
	err := row.Scan(&rec.ID, &rec.Title, &rec.Query, &rec.Fingerprint, &rec.RootNodeType,
		&rec.TotalCost, &rec.ExecutionTimeMs, &planRaw, &resultJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.PlanRaw = json.RawMessage(planRaw)
	rec.Result = &analyzer.PlanAnalysisResult{}
	if err := json.Unmarshal([]byte(resultJSON), rec.Result); err != nil {
		return nil, fmt.Errorf("decoding stored result: %w", err)
	}
	return &rec, nil
}
