package schema

import (
	"context"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/domain/specification"
)

const (
	IncludeSkills = entity.IncludeSkills
	IncludeExam   = entity.IncludeExam
)

// Loader attaches related data to a page of already fetched entities.
// It receives the slice in place and must keep its order.
type Loader[E any] func(ctx context.Context, items []E) error

// Includes maps an include path to its loader.
type Includes[E any] map[string]Loader[E]

// CourseSkills loads the skills of every course in one query.
func CourseSkills(skills repository.Repository[entity.Skill, string]) Loader[entity.Course] {
	return func(ctx context.Context, items []entity.Course) error {
		if len(items) == 0 {
			return nil
		}
		ids := make([]any, 0, len(items))
		for _, c := range items {
			ids = append(ids, c.ID)
		}
		found, err := skills.GetAllBySpec(ctx, specification.New[entity.Skill](
			specification.In("course_id", ids...),
			specification.OrderBy("name"),
		))
		if err != nil {
			return err
		}
		byCourse := make(map[string][]entity.Skill, len(items))
		for _, s := range found {
			byCourse[s.CourseID] = append(byCourse[s.CourseID], s)
		}
		for i := range items {
			items[i].Skills = byCourse[items[i].ID]
		}
		return nil
	}
}

// AttemptExam attaches the exam each attempt belongs to.
func AttemptExam(exams repository.Repository[entity.Exam, string]) Loader[entity.UserExam] {
	return func(ctx context.Context, items []entity.UserExam) error {
		if len(items) == 0 {
			return nil
		}
		seen := map[string]bool{}
		ids := make([]any, 0, len(items))
		for _, a := range items {
			if !seen[a.ExamID] {
				seen[a.ExamID] = true
				ids = append(ids, a.ExamID)
			}
		}
		found, err := exams.GetAllBySpec(ctx, specification.New[entity.Exam](specification.In("id", ids...)))
		if err != nil {
			return err
		}
		byID := make(map[string]entity.Exam, len(found))
		for _, e := range found {
			byID[e.ID] = e
		}
		for i := range items {
			if e, ok := byID[items[i].ExamID]; ok {
				items[i].Exam = &e
			}
		}
		return nil
	}
}

