package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// tableDef describes how one row type maps onto its Postgres table.
// Scan reads id, then Writable, then ReadOnly, in that order.
type tableDef[T content.Record[T]] struct {
	Name     string
	Resource string
	Writable []string
	ReadOnly []string
	// Touch is set to NOW() on every update when non-empty.
	Touch  string
	Scan   func(row pgx.Row) (T, error)
	Values func(row T) []any
}

func (s tableDef[T]) selectColumns() []string {
	cols := make([]string, 0, 1+len(s.Writable)+len(s.ReadOnly))
	cols = append(cols, "id")
	cols = append(cols, s.Writable...)
	return append(cols, s.ReadOnly...)
}

func (s tableDef[T]) hasColumn(name string) bool {
	for _, c := range s.selectColumns() {
		if c == name {
			return true
		}
	}
	return false
}

type postgresTable[T content.Record[T]] struct {
	db     *pgxpool.Pool
	def    tableDef[T]
	logger logger.Logger
}

func newPostgresTable[T content.Record[T]](db *pgxpool.Pool, def tableDef[T], log logger.Logger) *postgresTable[T] {
	return &postgresTable[T]{db: db, def: def, logger: log.With(zap.String("table", def.Name))}
}

func (t *postgresTable[T]) Name() string { return t.def.Name }

func (t *postgresTable[T]) returning() string {
	return "RETURNING " + strings.Join(t.def.selectColumns(), ", ")
}

func (t *postgresTable[T]) Select(ctx context.Context, q content.Query) ([]T, error) {
	builder := psql.Select(t.def.selectColumns()...).From(t.def.Name)

	if len(q.Eq) > 0 {
		eq := sq.Eq{}
		for col, v := range q.Eq {
			if !t.def.hasColumn(col) {
				return nil, apperror.NewInvalidInput(fmt.Sprintf("%s has no column %q", t.def.Name, col), content.ErrUnknownColumn)
			}
			eq[col] = v
		}
		builder = builder.Where(eq)
	}
	for _, o := range q.Order {
		if !t.def.hasColumn(o.Column) {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("%s has no column %q", t.def.Name, o.Column), content.ErrUnknownColumn)
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		builder = builder.OrderBy(o.Column + dir)
	}
	// id breaks ties so repeated selects return a stable order.
	builder = builder.OrderBy("id ASC")
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build select query", err)
	}

	rows, err := t.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query "+t.def.Name, err)
	}
	return t.scanAll(rows)
}

func (t *postgresTable[T]) scanAll(rows pgx.Rows) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		row, err := t.def.Scan(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan "+t.def.Resource+" row", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating "+t.def.Resource+" rows", err)
	}
	return out, nil
}

func (t *postgresTable[T]) Get(ctx context.Context, id int64) (T, error) {
	query, args, err := psql.Select(t.def.selectColumns()...).
		From(t.def.Name).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		var zero T
		return zero, apperror.NewInternal("failed to build get query", err)
	}
	return t.scanOne(t.db.QueryRow(ctx, query, args...), id)
}

func (t *postgresTable[T]) Insert(ctx context.Context, row T) (T, error) {
	query, args, err := psql.Insert(t.def.Name).
		Columns(t.def.Writable...).
		Values(t.def.Values(row)...).
		Suffix(t.returning()).
		ToSql()
	if err != nil {
		var zero T
		return zero, apperror.NewInternal("failed to build insert query", err)
	}
	return t.scanOne(t.db.QueryRow(ctx, query, args...), 0)
}

func (t *postgresTable[T]) Update(ctx context.Context, id int64, row T) (T, error) {
	values := t.def.Values(row)
	set := make(map[string]any, len(t.def.Writable)+1)
	for i, col := range t.def.Writable {
		set[col] = values[i]
	}
	if t.def.Touch != "" {
		set[t.def.Touch] = sq.Expr("NOW()")
	}

	query, args, err := psql.Update(t.def.Name).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix(t.returning()).
		ToSql()
	if err != nil {
		var zero T
		return zero, apperror.NewInternal("failed to build update query", err)
	}
	return t.scanOne(t.db.QueryRow(ctx, query, args...), id)
}

func (t *postgresTable[T]) Delete(ctx context.Context, id int64) error {
	cmdTag, err := t.db.Exec(ctx, `DELETE FROM `+t.def.Name+` WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete "+t.def.Resource, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound(t.def.Resource, strconv.FormatInt(id, 10))
	}
	return nil
}

// Upsert writes the row under its own id, inserting or overwriting.
func (t *postgresTable[T]) Upsert(ctx context.Context, row T) (T, error) {
	if row.Key() == 0 {
		return t.Insert(ctx, row)
	}

	sets := make([]string, 0, len(t.def.Writable)+1)
	for _, col := range t.def.Writable {
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	if t.def.Touch != "" {
		sets = append(sets, t.def.Touch+" = NOW()")
	}

	cols := append([]string{"id"}, t.def.Writable...)
	values := append([]any{row.Key()}, t.def.Values(row)...)

	query, args, err := psql.Insert(t.def.Name).
		Columns(cols...).
		Values(values...).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ") + " " + t.returning()).
		ToSql()
	if err != nil {
		var zero T
		return zero, apperror.NewInternal("failed to build upsert query", err)
	}
	return t.scanOne(t.db.QueryRow(ctx, query, args...), row.Key())
}

func (t *postgresTable[T]) scanOne(row pgx.Row, id int64) (T, error) {
	out, err := t.def.Scan(row)
	if err == nil {
		return out, nil
	}

	var zero T
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, apperror.NewNotFound(t.def.Resource, strconv.FormatInt(id, 10))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return zero, apperror.NewConflict(t.def.Resource, pgErr.ConstraintName, strconv.FormatInt(id, 10))
		case "23502", "23514":
			return zero, apperror.NewInvalidInput(pgErr.Message, err)
		}
	}
	t.logger.Error("Content write failed", err, zap.Int64("id", id))
	return zero, apperror.NewInternal("failed to write "+t.def.Resource, err)
}
