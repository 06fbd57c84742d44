package memory

import (
	"github.com/google/uuid"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
)

type Catalog struct {
	*UnitOfWork
	courses  *Repository[entity.Course, string]
	skills   *Repository[entity.Skill, string]
	exams    *Repository[entity.Exam, string]
	attempts *Repository[entity.UserExam, uuid.UUID]
}

func NewCatalog(store *Store) *Catalog {
	uow := NewUnitOfWork(store)
	skills := NewRepository(store, uow, schema.Skills, nil)
	exams := NewRepository(store, uow, schema.Exams, nil)
	return &Catalog{
		UnitOfWork: uow,
		skills:     skills,
		exams:      exams,
		courses: NewRepository(store, uow, schema.Courses, schema.Includes[entity.Course]{
			schema.IncludeSkills: schema.CourseSkills(skills),
		}),
		attempts: NewRepository(store, uow, schema.UserExams, schema.Includes[entity.UserExam]{
			schema.IncludeExam: schema.AttemptExam(exams),
		}),
	}
}

func NewCatalogFactory(store *Store) repository.CatalogFactory {
	return func() repository.Catalog { return NewCatalog(store) }
}

func (c *Catalog) Courses() repository.Repository[entity.Course, string] { return c.courses }
func (c *Catalog) Skills() repository.Repository[entity.Skill, string]   { return c.skills }
func (c *Catalog) Exams() repository.Repository[entity.Exam, string]     { return c.exams }
func (c *Catalog) Attempts() repository.Repository[entity.UserExam, uuid.UUID] {
	return c.attempts
}

var _ repository.Catalog = (*Catalog)(nil)
