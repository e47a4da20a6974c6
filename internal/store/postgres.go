package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/db"
	"github.com/sells-group/seo-leads/internal/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool db.Pool
	raw  *pgxpool.Pool
	now  func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres connects a pool and pings it.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			cfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			cfg.MinConns = poolCfg.MinConns
		}
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, raw: pool, now: time.Now}, nil
}

// NewPostgresFromPool wraps an existing pool. Migrate is unavailable unless
// the pool is a *pgxpool.Pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	raw, _ := pool.(*pgxpool.Pool)
	return &PostgresStore{pool: pool, raw: raw, now: time.Now}
}

// Migrate applies the embedded goose migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if s.raw == nil {
		return eris.New("postgres: migrate needs a live pool")
	}
	fsys, err := migrations("postgres")
	if err != nil {
		return err
	}
	sqlDB := stdlib.OpenDBFromPool(s.raw)
	defer sqlDB.Close() //nolint:errcheck

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return eris.Wrap(err, "postgres: goose provider")
	}
	if _, err := provider.Up(ctx); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Append inserts the run and copies its rows in one transaction.
func (s *PostgresStore) Append(ctx context.Context, run model.Run, rows []model.ScoredRow) error {
	industries, err := json.Marshal(run.Industries)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal industries")
	}
	copyRows := make([][]any, 0, len(rows))
	for _, r := range rows {
		args, err := rowArgs(run.ID, r)
		if err != nil {
			return err
		}
		copyRows = append(copyRows, args)
	}

	query, args, err := psql.Insert("runs").
		Columns("id", "geo", "industries", "status", "row_count", "hot_count", "report_ref", "created_at", "updated_at").
		Values(run.ID, run.Geo, string(industries), string(run.Status), run.RowCount, run.HotCount, run.ReportRef, run.CreatedAt, s.now().UTC()).
		ToSql()
	if err != nil {
		return eris.Wrap(err, "postgres: build insert run")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return eris.Wrap(err, "postgres: insert run")
	}
	if _, err := db.CopyFrom(ctx, tx, "scored_rows", rowColumns, copyRows); err != nil {
		return eris.Wrap(err, "postgres: copy rows")
	}
	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit")
	}
	return nil
}

// FinishRun updates a run's status, counts, and report reference.
func (s *PostgresStore) FinishRun(ctx context.Context, run model.Run) error {
	query, args, err := psql.Update("runs").
		Set("status", string(run.Status)).
		Set("row_count", run.RowCount).
		Set("hot_count", run.HotCount).
		Set("report_ref", run.ReportRef).
		Set("updated_at", s.now().UTC()).
		Where(sq.Eq{"id": run.ID}).
		ToSql()
	if err != nil {
		return eris.Wrap(err, "postgres: build finish run")
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: run %s", run.ID)
	}
	return nil
}

var runColumns = []string{"id", "geo", "industries", "status", "row_count", "hot_count", "report_ref", "created_at"}

func scanRun(s scanner) (model.Run, error) {
	var (
		r          model.Run
		status     string
		industries []byte
	)
	if err := s.Scan(&r.ID, &r.Geo, &industries, &status, &r.RowCount, &r.HotCount, &r.ReportRef, &r.CreatedAt); err != nil {
		return r, err
	}
	r.Status = model.RunStatus(status)
	if err := json.Unmarshal(industries, &r.Industries); err != nil {
		return r, eris.Wrap(err, "store: decode industries")
	}
	return r, nil
}

// GetRun loads one run.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query, args, err := psql.Select(runColumns...).From("runs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build get run")
	}
	r, err := scanRun(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", id)
	}
	return &r, nil
}

// ListRuns returns runs newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, f RunFilter) ([]model.Run, error) {
	q := psql.Select(runColumns...).From("runs").OrderBy("created_at DESC").
		Limit(limitOr(f.Limit)).Offset(uint64(max(f.Offset, 0)))
	q = f.apply(q)
	query, args, err := q.ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build list runs")
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list runs")
}

// ListRows returns scored rows best score first.
func (s *PostgresStore) ListRows(ctx context.Context, f RowFilter) ([]model.ScoredRow, error) {
	q := psql.Select(rowColumns...).From("scored_rows").OrderBy("score DESC", "id ASC").Limit(limitOr(f.Limit))
	if f.RunID != "" {
		q = q.Where(sq.Eq{"run_id": f.RunID})
	}
	if f.MinScore > 0 {
		q = q.Where(sq.GtOrEq{"score": f.MinScore})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build list rows")
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list rows")
	}
	defer rows.Close()

	var out []model.ScoredRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list rows")
}
