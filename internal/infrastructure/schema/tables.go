package schema

import (
	"github.com/google/uuid"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
)

var Courses = Table[entity.Course, string]{
	Name: "courses",
	Columns: []string{
		"id", "title", "description", "course_url", "duration_in_hours",
		"difficulty_level", "owner_id", "created_at",
	},
	Values: func(c entity.Course) []any {
		return []any{
			c.ID, c.Title, c.Description, c.CourseURL, c.DurationInHours,
			c.DifficultyLevel, c.OwnerID, c.CreatedAt,
		}
	},
	Scan: func(r Row) (entity.Course, error) {
		var c entity.Course
		err := r.Scan(&c.ID, &c.Title, &c.Description, &c.CourseURL, &c.DurationInHours,
			&c.DifficultyLevel, &c.OwnerID, &c.CreatedAt)
		return c, err
	},
}

var Skills = Table[entity.Skill, string]{
	Name:    "skills",
	Columns: []string{"id", "course_id", "name"},
	Values: func(s entity.Skill) []any {
		return []any{s.ID, s.CourseID, s.Name}
	},
	Scan: func(r Row) (entity.Skill, error) {
		var s entity.Skill
		err := r.Scan(&s.ID, &s.CourseID, &s.Name)
		return s, err
	},
}

var Exams = Table[entity.Exam, string]{
	Name:    "exams",
	Columns: []string{"id", "course_id", "title", "passing_score", "created_at"},
	Values: func(e entity.Exam) []any {
		return []any{e.ID, e.CourseID, e.Title, e.PassingScore, e.CreatedAt}
	},
	Scan: func(r Row) (entity.Exam, error) {
		var e entity.Exam
		err := r.Scan(&e.ID, &e.CourseID, &e.Title, &e.PassingScore, &e.CreatedAt)
		return e, err
	},
}

var UserExams = Table[entity.UserExam, uuid.UUID]{
	Name: "user_exams",
	Columns: []string{
		"id", "user_id", "exam_id", "attempt_count", "last_attempt_date",
		"finished_at", "score", "is_passed",
	},
	Values: func(u entity.UserExam) []any {
		return []any{
			u.ID, u.UserID, u.ExamID, u.AttemptCount, u.LastAttemptDate,
			u.FinishedAt, u.Score, u.IsPassed,
		}
	},
	Scan: func(r Row) (entity.UserExam, error) {
		var u entity.UserExam
		err := r.Scan(&u.ID, &u.UserID, &u.ExamID, &u.AttemptCount, &u.LastAttemptDate,
			&u.FinishedAt, &u.Score, &u.IsPassed)
		return u, err
	},
}
