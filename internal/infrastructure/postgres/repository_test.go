package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/domain/specification"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
)

var courseCols = []string{"id", "title", "description", "course_url", "duration_in_hours", "difficulty_level", "owner_id", "created_at"}

func TestRepository_GetByID(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantOK    bool
		wantErr   bool
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(courseSelect + " WHERE id = $1")).
					WithArgs("c1").
					WillReturnRows(pgxmock.NewRows(courseCols).AddRow("c1", "Go", "d", "", 12, "beginner", "o1", now))
			},
			wantOK: true,
		},
		{
			name: "absent is not an error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(courseSelect + " WHERE id = $1")).
					WithArgs("c1").
					WillReturnRows(pgxmock.NewRows(courseCols))
			},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(courseSelect)).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewRepository(mock, NewUnitOfWork(mock), schema.Courses, nil)
			got, ok, err := repo.GetByID(context.Background(), "c1")

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "Go", got.Title)
				assert.Equal(t, 12, got.DurationInHours)
				assert.Equal(t, now, got.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestRepository_GetAllBySpec_WithSkills(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(courseSelect + " ORDER BY title, id OFFSET $1 LIMIT $2")).
		WithArgs(0, 2).
		WillReturnRows(pgxmock.NewRows(courseCols).
			AddRow("c1", "Algorithms", "", "", 4, "advanced", "o1", now).
			AddRow("c2", "Go", "", "", 12, "beginner", "o1", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, name FROM skills WHERE course_id IN ($1, $2) ORDER BY name, id")).
		WithArgs("c1", "c2").
		WillReturnRows(pgxmock.NewRows([]string{"id", "course_id", "name"}).
			AddRow("s1", "c2", "concurrency").
			AddRow("s2", "c1", "graphs").
			AddRow("s3", "c2", "generics"))

	cat := NewCatalog(mock)
	got, err := cat.Courses().GetAllBySpec(context.Background(), specification.New[entity.Course](
		specification.Include(schema.IncludeSkills),
		specification.OrderBy("title"),
		specification.Paginate(0, 2),
	))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []entity.Skill{{ID: "s2", CourseID: "c1", Name: "graphs"}}, got[0].Skills)
	assert.Len(t, got[1].Skills, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetAllBySpec_UnknownInclude(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, NewUnitOfWork(mock), schema.Courses, nil)
	_, err = repo.GetAllBySpec(context.Background(), specification.New[entity.Course](specification.Include("owner")))

	assert.ErrorIs(t, err, repository.ErrUnknownInclude)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query should be issued")
}

func TestRepository_GetBySpec_TakesFirstOfWindow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(courseSelect + " WHERE owner_id = $1 ORDER BY id OFFSET $2 LIMIT $3")).
		WithArgs("o1", 5, 1).
		WillReturnRows(pgxmock.NewRows(courseCols))

	repo := NewRepository(mock, NewUnitOfWork(mock), schema.Courses, nil)
	spec := specification.New[entity.Course](specification.Equal("owner_id", "o1"), specification.Paginate(5, 10))
	_, ok, err := repo.GetBySpec(context.Background(), spec)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10, spec.Page.Take, "caller spec must not change")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_Commit(t *testing.T) {
	skill := entity.Skill{ID: "s1", CourseID: "c1", Name: "Go"}

	tests := []struct {
		name      string
		stage     func(ctx context.Context, r *Repository[entity.Skill, string])
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "applies staged changes in order",
			stage: func(ctx context.Context, r *Repository[entity.Skill, string]) {
				_ = r.Add(ctx, skill)
				_ = r.Update(ctx, skill)
				_ = r.Remove(ctx, skill)
			},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO skills`).WithArgs("s1", "c1", "Go").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectExec(`UPDATE skills`).WithArgs("c1", "Go", "s1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectExec(`DELETE FROM skills`).WithArgs("s1").
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "update of missing row rolls back",
			stage: func(ctx context.Context, r *Repository[entity.Skill, string]) {
				_ = r.Add(ctx, skill)
				_ = r.Update(ctx, entity.Skill{ID: "missing"})
			},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO skills`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectExec(`UPDATE skills`).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectRollback()
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "unique violation is a conflict",
			stage: func(ctx context.Context, r *Repository[entity.Skill, string]) {
				_ = r.Add(ctx, skill)
			},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO skills`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "skills_pkey"})
				mock.ExpectRollback()
			},
			wantErr: repository.ErrConflict,
		},
		{
			name:      "nothing staged does not open a transaction",
			stage:     func(context.Context, *Repository[entity.Skill, string]) {},
			setupMock: func(pgxmock.PgxPoolIface) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			ctx := context.Background()
			uow := NewUnitOfWork(mock)
			tt.stage(ctx, NewRepository(mock, uow, schema.Skills, nil))

			err = uow.Commit(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Zero(t, uow.Pending())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUnitOfWork_Discard(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	uow := NewUnitOfWork(mock)
	repo := NewRepository(mock, uow, schema.Skills, nil)
	require.NoError(t, repo.Add(ctx, entity.Skill{ID: "s1"}))
	assert.Equal(t, 1, uow.Pending())

	uow.Discard()
	require.NoError(t, uow.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet(), "discarded work must not reach the database")
}
