package postgres

import (
	"github.com/google/uuid"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
)

// Catalog is the pgx-backed repository.Catalog.
type Catalog struct {
	*UnitOfWork
	courses  *Repository[entity.Course, string]
	skills   *Repository[entity.Skill, string]
	exams    *Repository[entity.Exam, string]
	attempts *Repository[entity.UserExam, uuid.UUID]
}

func NewCatalog(db Pool) *Catalog {
	uow := NewUnitOfWork(db)
	skills := NewRepository(db, uow, schema.Skills, nil)
	exams := NewRepository(db, uow, schema.Exams, nil)
	return &Catalog{
		UnitOfWork: uow,
		skills:     skills,
		exams:      exams,
		courses: NewRepository(db, uow, schema.Courses, schema.Includes[entity.Course]{
			schema.IncludeSkills: schema.CourseSkills(skills),
		}),
		attempts: NewRepository(db, uow, schema.UserExams, schema.Includes[entity.UserExam]{
			schema.IncludeExam: schema.AttemptExam(exams),
		}),
	}
}

// NewCatalogFactory opens a new Catalog on db for every call.
func NewCatalogFactory(db Pool) repository.CatalogFactory {
	return func() repository.Catalog { return NewCatalog(db) }
}

func (c *Catalog) Courses() repository.Repository[entity.Course, string] { return c.courses }
func (c *Catalog) Skills() repository.Repository[entity.Skill, string]   { return c.skills }
func (c *Catalog) Exams() repository.Repository[entity.Exam, string]     { return c.exams }
func (c *Catalog) Attempts() repository.Repository[entity.UserExam, uuid.UUID] {
	return c.attempts
}

var _ repository.Catalog = (*Catalog)(nil)
