package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/specification"
)

var (
	// ErrNotFound is returned by a commit when a staged update or delete
	// matched nothing, and by lookups that treat absence as an error.
	ErrNotFound = errors.New("entity not found")
	// ErrConflict reports a uniqueness violation at commit time.
	ErrConflict       = errors.New("entity conflicts with an existing one")
	ErrUnknownField   = errors.New("unknown field in specification")
	ErrUnknownInclude = errors.New("unknown include path in specification")
)

// Entity is anything stored through a Repository. K is its primary key type.
type Entity[K comparable] interface {
	Key() K
}

// Repository is the generic read/stage contract over one entity type.
// Add, Update and Remove only stage a change; nothing is persisted until the
// owning UnitOfWork commits. Reads never observe uncommitted changes.
type Repository[E Entity[K], K comparable] interface {
	Add(ctx context.Context, e E) error
	Update(ctx context.Context, e E) error
	Remove(ctx context.Context, e E) error

	// GetByID reports absence with ok == false, never with an error.
	GetByID(ctx context.Context, id K) (E, bool, error)
	GetAll(ctx context.Context) ([]E, error)
	// GetBySpec returns the first entity matching spec after ordering.
	GetBySpec(ctx context.Context, spec specification.Spec[E]) (E, bool, error)
	GetAllBySpec(ctx context.Context, spec specification.Spec[E]) ([]E, error)
}

// UnitOfWork applies staged changes atomically. Discard drops anything not
// yet committed; calling it after Commit is a no-op.
type UnitOfWork interface {
	Commit(ctx context.Context) error
	Discard()
}

// Catalog groups the catalogue repositories that share a single UnitOfWork.
type Catalog interface {
	UnitOfWork
	Courses() Repository[entity.Course, string]
	Skills() Repository[entity.Skill, string]
	Exams() Repository[entity.Exam, string]
	Attempts() Repository[entity.UserExam, uuid.UUID]
}

// CatalogFactory opens a fresh Catalog, typically one per request.
type CatalogFactory func() Catalog
