package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/domain/specification"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
)

// Repository reads straight from the pool and stages writes on its UnitOfWork.
type Repository[E repository.Entity[K], K comparable] struct {
	db       Pool
	uow      *UnitOfWork
	table    schema.Table[E, K]
	includes schema.Includes[E]
}

func NewRepository[E repository.Entity[K], K comparable](db Pool, uow *UnitOfWork, table schema.Table[E, K], includes schema.Includes[E]) *Repository[E, K] {
	return &Repository[E, K]{db: db, uow: uow, table: table, includes: includes}
}

func (r *Repository[E, K]) Add(_ context.Context, e E) error {
	r.uow.stage(opInsert, r.table.Name, buildInsert(r.table, e))
	return nil
}

func (r *Repository[E, K]) Update(_ context.Context, e E) error {
	r.uow.stage(opUpdate, r.table.Name, buildUpdate(r.table, e))
	return nil
}

func (r *Repository[E, K]) Remove(_ context.Context, e E) error {
	r.uow.stage(opDelete, r.table.Name, buildDelete(r.table, e))
	return nil
}

func (r *Repository[E, K]) GetByID(ctx context.Context, id K) (E, bool, error) {
	var zero E
	st := buildSelectByKey(r.table, id)
	e, err := r.table.Scan(r.db.QueryRow(ctx, st.sql, st.args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, oops.With("operation", "get by id").With("table", r.table.Name).Wrap(err)
	}
	return e, true, nil
}

func (r *Repository[E, K]) GetAll(ctx context.Context) ([]E, error) {
	return r.GetAllBySpec(ctx, specification.Spec[E]{})
}

// GetBySpec returns the first entity of the spec's window.
func (r *Repository[E, K]) GetBySpec(ctx context.Context, spec specification.Spec[E]) (E, bool, error) {
	var zero E
	first := spec.With()
	if first.Page == nil {
		first.Page = &specification.Page{}
	}
	first.Page.Take = 1
	items, err := r.GetAllBySpec(ctx, first)
	if err != nil || len(items) == 0 {
		return zero, false, err
	}
	return items[0], true, nil
}

func (r *Repository[E, K]) GetAllBySpec(ctx context.Context, spec specification.Spec[E]) ([]E, error) {
	loaders, err := r.loaders(spec.Includes)
	if err != nil {
		return nil, err
	}
	st, err := buildSelect(r.table, spec.Query)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, st.sql, st.args...)
	if err != nil {
		return nil, oops.With("operation", "query").With("table", r.table.Name).Wrap(err)
	}
	defer rows.Close()

	items := []E{}
	for rows.Next() {
		e, err := r.table.Scan(rows)
		if err != nil {
			return nil, oops.With("operation", "scan row").With("table", r.table.Name).Wrap(err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate rows").With("table", r.table.Name).Wrap(err)
	}
	rows.Close()

	for _, load := range loaders {
		if err := load(ctx, items); err != nil {
			return nil, oops.With("operation", "load include").With("table", r.table.Name).Wrap(err)
		}
	}
	return items, nil
}

func (r *Repository[E, K]) loaders(paths []string) ([]schema.Loader[E], error) {
	out := make([]schema.Loader[E], 0, len(paths))
	for _, p := range paths {
		load, ok := r.includes[p]
		if !ok {
			return nil, oops.With("table", r.table.Name).With("include", p).Wrap(repository.ErrUnknownInclude)
		}
		out = append(out, load)
	}
	return out, nil
}
