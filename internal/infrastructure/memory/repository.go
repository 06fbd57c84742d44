package memory

import (
	"context"
	"sort"

	"github.com/samber/oops"

	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/domain/specification"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
)

type Repository[E repository.Entity[K], K comparable] struct {
	store    *Store
	uow      *UnitOfWork
	table    schema.Table[E, K]
	includes schema.Includes[E]
}

func NewRepository[E repository.Entity[K], K comparable](store *Store, uow *UnitOfWork, table schema.Table[E, K], includes schema.Includes[E]) *Repository[E, K] {
	return &Repository[E, K]{store: store, uow: uow, table: table, includes: includes}
}

func (r *Repository[E, K]) Add(_ context.Context, e E) error {
	e, err := columnsOnly(r.table, e)
	if err != nil {
		return err
	}
	r.uow.stage(func() (func(), error) {
		rs := tableOf(r.store, r.table)
		if _, exists := rs.items[e.Key()]; exists {
			return nil, oops.With("table", r.table.Name).With("key", e.Key()).Wrap(repository.ErrConflict)
		}
		rs.insert(e)
		return func() { rs.delete(e.Key()) }, nil
	})
	return nil
}

func (r *Repository[E, K]) Update(_ context.Context, e E) error {
	e, err := columnsOnly(r.table, e)
	if err != nil {
		return err
	}
	r.uow.stage(func() (func(), error) {
		rs := tableOf(r.store, r.table)
		prev, exists := rs.items[e.Key()]
		if !exists {
			return nil, oops.With("table", r.table.Name).With("key", e.Key()).Wrap(repository.ErrNotFound)
		}
		rs.items[e.Key()] = e
		return func() { rs.items[prev.Key()] = prev }, nil
	})
	return nil
}

func (r *Repository[E, K]) Remove(_ context.Context, e E) error {
	k := e.Key()
	r.uow.stage(func() (func(), error) {
		rs := tableOf(r.store, r.table)
		prev, exists := rs.items[k]
		if !exists {
			return nil, oops.With("table", r.table.Name).With("key", k).Wrap(repository.ErrNotFound)
		}
		i := rs.position(k)
		rs.delete(k)
		return func() { rs.restore(i, prev) }, nil
	})
	return nil
}

func (r *Repository[E, K]) GetByID(_ context.Context, id K) (E, bool, error) {
	var zero E
	r.store.mu.RLock()
	rs := peek(r.store, r.table)
	var e E
	ok := false
	if rs != nil {
		e, ok = rs.items[id]
	}
	r.store.mu.RUnlock()
	if !ok {
		return zero, false, nil
	}
	e, err := columnsOnly(r.table, e)
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

func (r *Repository[E, K]) GetAll(ctx context.Context) ([]E, error) {
	return r.GetAllBySpec(ctx, specification.Spec[E]{})
}

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
	q := spec.Query
	if err := r.validate(q); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	all := peek(r.store, r.table).snapshot()
	r.store.mu.RUnlock()

	items := make([]E, 0, len(all))
	for _, e := range all {
		ok, err := r.satisfies(e, q.Criteria)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if e, err = columnsOnly(r.table, e); err != nil {
			return nil, err
		}
		items = append(items, e)
	}

	switch {
	case q.Order != nil:
		r.sort(items, q.Order.Field, q.Order.Descending)
	case q.Page != nil:
		r.sort(items, r.table.Key(), false)
	}

	if q.Page != nil {
		items = window(items, q.Page.Skip, q.Page.Take)
	}

	for _, p := range q.Includes {
		if err := r.includes[p](ctx, items); err != nil {
			return nil, oops.With("operation", "load include").With("table", r.table.Name).Wrap(err)
		}
	}
	return items, nil
}

// sort orders items by col, breaking ties by key ascending like the SQL
// backend does.
func (r *Repository[E, K]) sort(items []E, col string, desc bool) {
	key := r.table.Key()
	sort.SliceStable(items, func(i, j int) bool {
		n, _ := compare(r.table.Value(items[i], col), r.table.Value(items[j], col))
		if desc {
			n = -n
		}
		if n == 0 && col != key {
			n, _ = compare(r.table.Value(items[i], key), r.table.Value(items[j], key))
		}
		return n < 0
	})
}

func (r *Repository[E, K]) validate(q specification.Query) error {
	for _, c := range q.Criteria {
		if !r.table.Has(c.Field) {
			return oops.With("table", r.table.Name).With("field", c.Field).Wrap(repository.ErrUnknownField)
		}
	}
	if q.Order != nil && !r.table.Has(q.Order.Field) {
		return oops.With("table", r.table.Name).With("field", q.Order.Field).Wrap(repository.ErrUnknownField)
	}
	for _, p := range q.Includes {
		if _, ok := r.includes[p]; !ok {
			return oops.With("table", r.table.Name).With("include", p).Wrap(repository.ErrUnknownInclude)
		}
	}
	return nil
}

func (r *Repository[E, K]) satisfies(e E, criteria []specification.Criterion) (bool, error) {
	for _, c := range criteria {
		ok, err := matches(r.table.Value(e, c.Field), c)
		if err != nil {
			return false, oops.With("table", r.table.Name).Wrap(err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func window[E any](items []E, skip, take int) []E {
	if skip >= len(items) {
		return []E{}
	}
	items = items[skip:]
	if take > 0 && take < len(items) {
		items = items[:take]
	}
	return items
}
