package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/domain/specification"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
)

func seedCourses(t *testing.T, cat *Catalog, n int) []entity.Course {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]entity.Course, 0, n)
	for i := 0; i < n; i++ {
		c := entity.Course{
			ID:              fmt.Sprintf("c%02d", i),
			Title:           fmt.Sprintf("Course %02d", n-i),
			DurationInHours: i % 3,
			DifficultyLevel: []string{entity.DifficultyBeginner, entity.DifficultyAdvanced}[i%2],
			OwnerID:         "o1",
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, cat.Courses().Add(ctx, c))
		out = append(out, c)
	}
	require.NoError(t, cat.Commit(ctx))
	return out
}

func TestRepository_ReadsDoNotSeeStagedChanges(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())

	require.NoError(t, cat.Courses().Add(ctx, entity.Course{ID: "c1", Title: "Go"}))
	_, ok, err := cat.Courses().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cat.Commit(ctx))
	got, ok, err := cat.Courses().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Go", got.Title)
}

func TestRepository_GetAllMatchesEmptySpec(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())
	seeded := seedCourses(t, cat, 4)

	all, err := cat.Courses().GetAll(ctx)
	require.NoError(t, err)
	bySpec, err := cat.Courses().GetAllBySpec(ctx, specification.New[entity.Course]())
	require.NoError(t, err)

	assert.Equal(t, seeded, all, "unordered reads keep insertion order")
	assert.Equal(t, all, bySpec)
}

func TestRepository_FilterOrderPage(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())
	seedCourses(t, cat, 10)

	got, err := cat.Courses().GetAllBySpec(ctx, specification.New[entity.Course](
		specification.Equal("difficulty_level", entity.DifficultyBeginner),
		specification.OrderBy("title"),
		specification.Paginate(1, 2),
	))
	require.NoError(t, err)

	// beginner courses are c00 c02 c04 c06 c08, titled 10 08 06 04 02
	require.Len(t, got, 2)
	assert.Equal(t, "c06", got[0].ID)
	assert.Equal(t, "c04", got[1].ID)
}

func TestRepository_PagingIsRepeatableAndCoversEverything(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())
	seedCourses(t, cat, 7)

	var seen []string
	for page := 1; page <= 4; page++ {
		spec := specification.New[entity.Course](specification.OrderByDescending("duration_in_hours"), specification.PageOf(page, 2))
		first, err := cat.Courses().GetAllBySpec(ctx, spec)
		require.NoError(t, err)
		again, err := cat.Courses().GetAllBySpec(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
		for _, c := range first {
			seen = append(seen, c.ID)
		}
	}
	assert.ElementsMatch(t, []string{"c00", "c01", "c02", "c03", "c04", "c05", "c06"}, seen)
	assert.Len(t, seen, 7, "windows must not overlap")

	past, err := cat.Courses().GetAllBySpec(ctx, specification.New[entity.Course](specification.Paginate(50, 5)))
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestRepository_Operators(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())
	seedCourses(t, cat, 6)

	tests := []struct {
		name string
		opt  specification.Option
		want int
	}{
		{"like is case insensitive", specification.Like("title", "course 0%"), 6},
		{"like single char", specification.Like("title", "course _"), 0},
		{"like suffix", specification.Like("title", "%_1"), 1},
		{"greater or equal", specification.Where("duration_in_hours", specification.OpGreaterOrEqual, 1), 4},
		{"less than int64", specification.Where("duration_in_hours", specification.OpLess, int64(1)), 2},
		{"not equal", specification.Where("id", specification.OpNotEqual, "c00"), 5},
		{"in", specification.In("id", "c01", "c03", "zz"), 2},
		{"empty in", specification.In("id"), 0},
		{"after time", specification.Where("created_at", specification.OpGreater, time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cat.Courses().GetAllBySpec(ctx, specification.New[entity.Course](tt.opt))
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRepository_UnknownFieldAndInclude(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())

	_, err := cat.Courses().GetAllBySpec(ctx, specification.New[entity.Course](specification.Equal("secret", 1)))
	assert.ErrorIs(t, err, repository.ErrUnknownField)

	_, _, err = cat.Courses().GetBySpec(ctx, specification.New[entity.Course](specification.Include("owner")))
	assert.ErrorIs(t, err, repository.ErrUnknownInclude)
}

func TestRepository_Includes(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	cat := NewCatalog(store)

	require.NoError(t, cat.Courses().Add(ctx, entity.Course{ID: "c1", Title: "Go"}))
	require.NoError(t, cat.Skills().Add(ctx, entity.Skill{ID: "s2", CourseID: "c1", Name: "testing"}))
	require.NoError(t, cat.Skills().Add(ctx, entity.Skill{ID: "s1", CourseID: "c1", Name: "generics"}))
	require.NoError(t, cat.Exams().Add(ctx, entity.Exam{ID: "e1", CourseID: "c1", Title: "Final", PassingScore: 60}))
	attempt := entity.UserExam{ID: uuid.New(), UserID: "u1", ExamID: "e1", AttemptCount: 1, Score: 70, IsPassed: true}
	require.NoError(t, cat.Attempts().Add(ctx, attempt))
	require.NoError(t, cat.Commit(ctx))

	course, ok, err := cat.Courses().GetBySpec(ctx, specification.New[entity.Course](
		specification.Equal("id", "c1"), specification.Include(schema.IncludeSkills)))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, course.Skills, 2)
	assert.Equal(t, "generics", course.Skills[0].Name)

	plain, _, err := cat.Courses().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, plain.Skills, "relations are only loaded on request")

	got, ok, err := NewCatalog(store).Attempts().GetBySpec(ctx, specification.New[entity.UserExam](
		specification.Equal("user_id", "u1"), specification.Include(schema.IncludeExam)))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got.Exam)
	assert.Equal(t, "Final", got.Exam.Title)
}

func TestUnitOfWork_CommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())
	seedCourses(t, cat, 3)

	require.NoError(t, cat.Courses().Remove(ctx, entity.Course{ID: "c01"}))
	require.NoError(t, cat.Courses().Update(ctx, entity.Course{ID: "c00", Title: "Renamed"}))
	require.NoError(t, cat.Courses().Add(ctx, entity.Course{ID: "c09"}))
	require.NoError(t, cat.Courses().Update(ctx, entity.Course{ID: "missing"}))

	err := cat.Commit(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := cat.Courses().GetAll(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, c := range all {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c00", "c01", "c02"}, ids, "order and content restored")
	assert.NotEqual(t, "Renamed", all[0].Title)
}

func TestUnitOfWork_ConflictAndDiscard(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())
	seedCourses(t, cat, 1)

	require.NoError(t, cat.Courses().Add(ctx, entity.Course{ID: "c00"}))
	assert.ErrorIs(t, cat.Commit(ctx), repository.ErrConflict)

	require.NoError(t, cat.Courses().Remove(ctx, entity.Course{ID: "c00"}))
	assert.Equal(t, 1, cat.Pending())
	cat.Discard()
	require.NoError(t, cat.Commit(ctx))

	_, ok, err := cat.Courses().GetByID(ctx, "c00")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewStore())
	when := time.Now()
	id := uuid.New()
	require.NoError(t, cat.Attempts().Add(ctx, entity.UserExam{ID: id, LastAttemptDate: &when}))
	require.NoError(t, cat.Commit(ctx))

	got, _, err := cat.Attempts().GetByID(ctx, id)
	require.NoError(t, err)
	*got.LastAttemptDate = time.Time{}

	again, _, err := cat.Attempts().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, when, *again.LastAttemptDate)
}
