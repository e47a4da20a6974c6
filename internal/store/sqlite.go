package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/seo-leads/internal/model"
)

// sqliteBatch keeps multi-row inserts well under the bound-variable limit.
const sqliteBatch = 200

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Migrate applies the embedded goose migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	fsys, err := migrations("sqlite")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return eris.Wrap(err, "sqlite: goose provider")
	}
	if _, err := provider.Up(ctx); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append inserts the run and its rows in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, run model.Run, rows []model.ScoredRow) error {
	industries, err := json.Marshal(run.Industries)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal industries")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	query, args, err := sq.Insert("runs").
		Columns("id", "geo", "industries", "status", "row_count", "hot_count", "report_ref", "created_at", "updated_at").
		Values(run.ID, run.Geo, string(industries), string(run.Status), run.RowCount, run.HotCount, run.ReportRef, run.CreatedAt.UTC(), s.now().UTC()).
		ToSql()
	if err != nil {
		return eris.Wrap(err, "sqlite: build insert run")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	for start := 0; start < len(rows); start += sqliteBatch {
		ins := sq.Insert("scored_rows").Columns(rowColumns...)
		for _, r := range rows[start:min(start+sqliteBatch, len(rows))] {
			vals, err := rowArgs(run.ID, r)
			if err != nil {
				return err
			}
			ins = ins.Values(vals...)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return eris.Wrap(err, "sqlite: build insert rows")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return eris.Wrap(err, "sqlite: insert rows")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

// FinishRun updates a run's status, counts, and report reference.
func (s *SQLiteStore) FinishRun(ctx context.Context, run model.Run) error {
	query, args, err := sq.Update("runs").
		Set("status", string(run.Status)).
		Set("row_count", run.RowCount).
		Set("hot_count", run.HotCount).
		Set("report_ref", run.ReportRef).
		Set("updated_at", s.now().UTC()).
		Where(sq.Eq{"id": run.ID}).
		ToSql()
	if err != nil {
		return eris.Wrap(err, "sqlite: build finish run")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", run.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: run %s", run.ID)
	}
	return nil
}

// GetRun loads one run.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query, args, err := sq.Select(runColumns...).From("runs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build get run")
	}
	r, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}
	return &r, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, f RunFilter) ([]model.Run, error) {
	q := sq.Select(runColumns...).From("runs").OrderBy("created_at DESC", "rowid DESC").
		Limit(limitOr(f.Limit)).Offset(uint64(max(f.Offset, 0)))
	q = f.apply(q)
	query, args, err := q.ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build list runs")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list runs")
}

// ListRows returns scored rows best score first, ties in insertion order.
func (s *SQLiteStore) ListRows(ctx context.Context, f RowFilter) ([]model.ScoredRow, error) {
	q := sq.Select(rowColumns...).From("scored_rows").OrderBy("score DESC", "id ASC").Limit(limitOr(f.Limit))
	if f.RunID != "" {
		q = q.Where(sq.Eq{"run_id": f.RunID})
	}
	if f.MinScore > 0 {
		q = q.Where(sq.GtOrEq{"score": f.MinScore})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build list rows")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list rows")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ScoredRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list rows")
}
