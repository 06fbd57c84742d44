package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-course-platform/internal/domain/repository"
	spec "github.com/oksasatya/go-course-platform/internal/domain/specification"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// CoursesIndexMapping is the Elasticsearch mapping for indexed courses.
const CoursesIndexMapping = `{
  "mappings": {
    "properties": {
      "id":                {"type": "keyword"},
      "title":             {"type": "text"},
      "description":       {"type": "text"},
      "difficulty_level":  {"type": "keyword"},
      "duration_in_hours": {"type": "integer"},
      "owner_id":          {"type": "keyword"},
      "skills":            {"type": "text"},
      "created_at":        {"type": "date"}
    }
  }
}`

type CourseService struct {
	Catalog        repo.CatalogFactory
	ES             *elasticsearch.Client
	ESCoursesIndex string
	Logger         *logrus.Logger
	now            func() time.Time
}

func NewCourseService(catalog repo.CatalogFactory, es *elasticsearch.Client, esCoursesIndex string, logger *logrus.Logger) *CourseService {
	return &CourseService{
		Catalog:        catalog,
		ES:             es,
		ESCoursesIndex: esCoursesIndex,
		Logger:         logger,
		now:            time.Now,
	}
}

// CourseQuery is the browse filter as it arrives on the query string.
type CourseQuery struct {
	Search     string `form:"q"`
	Difficulty string `form:"difficulty" binding:"omitempty,difficulty"`
	MaxHours   int    `form:"max_hours" binding:"omitempty,min=0"`
	Sort       string `form:"sort" binding:"omitempty,oneof=title duration created"`
	Desc       bool   `form:"desc"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Size       int    `form:"size" binding:"omitempty,min=1"`
	WithSkills bool   `form:"with_skills"`
}

var sortColumns = map[string]string{
	"title":    "title",
	"duration": "duration_in_hours",
	"created":  "created_at",
}

type CoursePage struct {
	Items []entity.Course `json:"items"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

// Spec translates the query into a course specification.
func (q CourseQuery) Spec() spec.Spec[entity.Course] {
	var opts []spec.Option
	if s := strings.TrimSpace(q.Search); s != "" {
		opts = append(opts, spec.Like("title", "%"+s+"%"))
	}
	if q.Difficulty != "" {
		opts = append(opts, spec.Equal("difficulty_level", q.Difficulty))
	}
	if q.MaxHours > 0 {
		opts = append(opts, spec.Where("duration_in_hours", spec.OpLessOrEqual, q.MaxHours))
	}
	col, ok := sortColumns[q.Sort]
	if !ok {
		col = "created_at"
	}
	if q.Desc {
		opts = append(opts, spec.OrderByDescending(col))
	} else {
		opts = append(opts, spec.OrderBy(col))
	}
	page, size := q.window()
	opts = append(opts, spec.PageOf(page, size))
	if q.WithSkills {
		opts = append(opts, spec.Include(entity.IncludeSkills))
	}
	return spec.New[entity.Course](opts...)
}

func (q CourseQuery) window() (page, size int) {
	page, size = q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func (s *CourseService) Browse(ctx context.Context, q CourseQuery) (CoursePage, error) {
	cat := s.Catalog()
	defer cat.Discard()

	items, err := cat.Courses().GetAllBySpec(ctx, q.Spec())
	if err != nil {
		return CoursePage{}, err
	}
	page, size := q.window()
	return CoursePage{Items: items, Page: page, Size: size}, nil
}

// Get returns the course with its skills.
func (s *CourseService) Get(ctx context.Context, id string) (entity.Course, error) {
	cat := s.Catalog()
	defer cat.Discard()

	c, ok, err := cat.Courses().GetBySpec(ctx, spec.New[entity.Course](
		spec.Equal("id", id),
		spec.Include(entity.IncludeSkills),
	))
	if err != nil {
		return entity.Course{}, err
	}
	if !ok {
		return entity.Course{}, ErrCourseNotFound
	}
	return c, nil
}

type CreateCourseInput struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description"`
	CourseURL       string   `json:"course_url" binding:"omitempty,url"`
	DurationInHours int      `json:"duration_in_hours" binding:"required,min=1"`
	DifficultyLevel string   `json:"difficulty_level" binding:"omitempty,difficulty"`
	Skills          []string `json:"skills"`
}

func (in CreateCourseInput) validate() []string {
	var reasons []string
	if strings.TrimSpace(in.Title) == "" {
		reasons = append(reasons, "Title is required.")
	}
	if in.DurationInHours <= 0 {
		reasons = append(reasons, "Duration must be a positive number of hours.")
	}
	switch in.DifficultyLevel {
	case "", entity.DifficultyBeginner, entity.DifficultyIntermediate, entity.DifficultyAdvanced:
	default:
		reasons = append(reasons, fmt.Sprintf("Difficulty '%s' is not supported.", in.DifficultyLevel))
	}
	return reasons
}

// Create stages the course and its skills in one unit of work, then indexes
// the course for search.
func (s *CourseService) Create(ctx context.Context, ownerID string, in CreateCourseInput) (entity.Course, error) {
	if reasons := in.validate(); len(reasons) > 0 {
		return entity.Course{}, refused(ErrInvalidCourse, reasons)
	}

	c := entity.Course{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		CourseURL:       in.CourseURL,
		DurationInHours: in.DurationInHours,
		DifficultyLevel: in.DifficultyLevel,
		OwnerID:         ownerID,
		CreatedAt:       s.now().UTC(),
	}

	cat := s.Catalog()
	defer cat.Discard()
	if err := cat.Courses().Add(ctx, c); err != nil {
		return entity.Course{}, err
	}
	seen := map[string]bool{}
	for _, name := range in.Skills {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		sk := entity.Skill{ID: uuid.NewString(), CourseID: c.ID, Name: name}
		if err := cat.Skills().Add(ctx, sk); err != nil {
			return entity.Course{}, err
		}
		c.Skills = append(c.Skills, sk)
	}
	if err := cat.Commit(ctx); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("owner_id", ownerID).Error("create course failed")
		}
		return entity.Course{}, err
	}

	_ = s.indexCourse(ctx, c)
	return c, nil
}

func (s *CourseService) indexCourse(ctx context.Context, c entity.Course) error {
	if s.ES == nil || s.ESCoursesIndex == "" {
		return nil
	}
	skills := make([]string, 0, len(c.Skills))
	for _, sk := range c.Skills {
		skills = append(skills, sk.Name)
	}
	doc := map[string]any{
		"id":                c.ID,
		"title":             c.Title,
		"description":       c.Description,
		"difficulty_level":  c.DifficultyLevel,
		"duration_in_hours": c.DurationInHours,
		"owner_id":          c.OwnerID,
		"skills":            skills,
		"created_at":        c.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESCoursesIndex, DocumentID: c.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	ictx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(ictx, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("course_id", c.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("course_id", c.ID).Warn("es index response error")
	}
	return nil
}

// Search runs a full-text query over title, description and skills. Without
// a configured index it returns no hits.
func (s *CourseService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESCoursesIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "skills^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	sctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(sctx),
		s.ES.Search.WithIndex(s.ESCoursesIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
