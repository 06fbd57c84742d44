package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-course-platform/internal/domain/repository"
)

// apply runs under the store's write lock and returns how to revert itself.
type apply func() (undo func(), err error)

// UnitOfWork applies staged operations all-or-nothing.
type UnitOfWork struct {
	store *Store
	mu    sync.Mutex
	ops   []apply
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) stage(op apply) {
	u.mu.Lock()
	u.ops = append(u.ops, op)
	u.mu.Unlock()
}

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
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	undos := make([]func(), 0, len(ops))
	for _, op := range ops {
		undo, err := op()
		if err != nil {
			for i := len(undos) - 1; i >= 0; i-- {
				undos[i]()
			}
			return err
		}
		undos = append(undos, undo)
	}
	return nil
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
