package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/memory"
)

func newCourseService(t *testing.T) *CourseService {
	t.Helper()
	svc := NewCourseService(memory.NewCatalogFactory(memory.NewStore()), nil, "", nil)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc
}

func TestCourseService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newCourseService(t)

	c, err := svc.Create(ctx, "owner-1", CreateCourseInput{
		Title:           "  Go Basics ",
		DurationInHours: 6,
		DifficultyLevel: entity.DifficultyBeginner,
		Skills:          []string{"Go", "go", " ", "Testing"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", c.Title)
	assert.Len(t, c.Skills, 2)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", got.OwnerID)
	var names []string
	for _, s := range got.Skills {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Go", "Testing"}, names)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_CreateRejectsInvalidInput(t *testing.T) {
	svc := newCourseService(t)

	_, err := svc.Create(context.Background(), "o", CreateCourseInput{Title: " ", DifficultyLevel: "expert"})

	require.ErrorIs(t, err, ErrInvalidCourse)
	assert.Equal(t, []string{
		"Title is required.",
		"Duration must be a positive number of hours.",
		"Difficulty 'expert' is not supported.",
	}, Reasons(err))
}

func TestCourseService_Browse(t *testing.T) {
	ctx := context.Background()
	svc := newCourseService(t)
	for i := 1; i <= 12; i++ {
		level := entity.DifficultyBeginner
		if i%3 == 0 {
			level = entity.DifficultyAdvanced
		}
		_, err := svc.Create(ctx, "o", CreateCourseInput{
			Title:           fmt.Sprintf("Course %02d", i),
			DurationInHours: i,
			DifficultyLevel: level,
		})
		require.NoError(t, err)
	}

	page, err := svc.Browse(ctx, CourseQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.Size)
	require.Len(t, page.Items, defaultPageSize)
	assert.Equal(t, "Course 01", page.Items[0].Title)

	page, err = svc.Browse(ctx, CourseQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.Browse(ctx, CourseQuery{Difficulty: entity.DifficultyAdvanced, Sort: "duration", Desc: true})
	require.NoError(t, err)
	var hours []int
	for _, c := range page.Items {
		hours = append(hours, c.DurationInHours)
	}
	assert.Equal(t, []int{12, 9, 6, 3}, hours)

	page, err = svc.Browse(ctx, CourseQuery{Search: "course 1", MaxHours: 11})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestCourseQuery_WindowClamps(t *testing.T) {
	page, size := CourseQuery{Page: 0, Size: 500}.window()
	assert.Equal(t, 1, page)
	assert.Equal(t, maxPageSize, size)
}

func TestCourseService_SearchWithoutIndex(t *testing.T) {
	hits, err := newCourseService(t).Search(context.Background(), "go", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
