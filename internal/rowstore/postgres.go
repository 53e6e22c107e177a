package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps each sheet as a header array plus positioned jsonb rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a migrated pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) List(ctx context.Context, table string) ([]Row, error) {
	if _, err := s.headers(ctx, s.pool, table, ""); err != nil {
		return nil, err
	}
	const query = `SELECT data FROM sheet_rows WHERE table_name=$1 ORDER BY position`
	rows, err := s.pool.Query(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		row := Row{}
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decode row of %s: %w", table, err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *PostgresStore) Headers(ctx context.Context, table string) ([]string, error) {
	return s.headers(ctx, s.pool, table, "")
}

func (s *PostgresStore) Append(ctx context.Context, table string, row Row) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	headers, err := s.headers(ctx, tx, table, "FOR UPDATE")
	if err != nil {
		return err
	}
	payload, err := json.Marshal(project(headers, row))
	if err != nil {
		return err
	}

	const insert = `
        INSERT INTO sheet_rows (table_name, position, data)
        SELECT $1, COALESCE(MAX(position) + 1, 0), $2::jsonb FROM sheet_rows WHERE table_name=$1`
	if _, err := tx.Exec(ctx, insert, table, string(payload)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Update(ctx context.Context, table string, index int, values Row) error {
	headers, err := s.headers(ctx, s.pool, table, "")
	if err != nil {
		return err
	}
	payload, err := json.Marshal(project(headers, values))
	if err != nil {
		return err
	}
	const update = `UPDATE sheet_rows SET data = data || $3::jsonb WHERE table_name=$1 AND position=$2`
	cmd, err := s.pool.Exec(ctx, update, table, index, string(payload))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return tableError(ErrRowNotFound, table)
	}
	return nil
}

func (s *PostgresStore) EnsureTable(ctx context.Context, table string, headers []string) error {
	headers = cleanHeaders(headers)
	if len(headers) == 0 {
		return ErrNoHeaders
	}
	const query = `INSERT INTO sheet_tables (name, headers) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	_, err := s.pool.Exec(ctx, query, table, headers)
	return err
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) headers(ctx context.Context, q queryRower, table, lock string) ([]string, error) {
	query := `SELECT headers FROM sheet_tables WHERE name=$1 ` + lock
	var headers []string
	if err := q.QueryRow(ctx, query, table).Scan(&headers); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tableError(ErrTableNotFound, table)
		}
		return nil, err
	}
	return headers, nil
}
