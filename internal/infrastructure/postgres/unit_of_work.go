package postgres

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/oksasatya/go-course-platform/internal/domain/repository"
)

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

type stagedOp struct {
	kind  opKind
	table string
	statement
}

// UnitOfWork buffers staged statements and runs them in a single transaction.
// Staged work is consumed by Commit whether it succeeds or not.
type UnitOfWork struct {
	db  Pool
	mu  sync.Mutex
	ops []stagedOp
}

func NewUnitOfWork(db Pool) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) stage(kind opKind, table string, st statement) {
	u.mu.Lock()
	u.ops = append(u.ops, stagedOp{kind: kind, table: table, statement: st})
	u.mu.Unlock()
}

// Pending reports how many statements are staged.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.ops)
}

func (u *UnitOfWork) Discard() {
	u.mu.Lock()
	u.ops = nil
	u.mu.Unlock()
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	ops := u.ops
	u.ops = nil
	u.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return oops.With("operation", "begin transaction").Wrap(err)
	}
	for i, op := range ops {
		tag, err := tx.Exec(ctx, op.sql, op.args...)
		if err != nil {
			_ = tx.Rollback(ctx)
			return commitError(op, i, err)
		}
		if op.kind != opInsert && tag.RowsAffected() == 0 {
			_ = tx.Rollback(ctx)
			return oops.With("operation", "commit").With("table", op.table).With("statement", i).
				Wrap(repository.ErrNotFound)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.With("operation", "commit transaction").Wrap(err)
	}
	return nil
}

func commitError(op stagedOp, i int, err error) error {
	b := oops.With("operation", "commit").With("table", op.table).With("statement", i)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return b.With("constraint", pgErr.ConstraintName).Wrap(repository.ErrConflict)
	}
	return b.Wrap(err)
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
