package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/schema"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
)

// Catalog wraps another Catalog so that GetByID on every repository is
// cached and committed writes evict their keys.
type Catalog struct {
	inner    repository.Catalog
	rdb      *redis.Client
	dirty    *Keys
	logger   *logrus.Logger
	courses  *Repository[entity.Course, string]
	skills   *Repository[entity.Skill, string]
	exams    *Repository[entity.Exam, string]
	attempts *Repository[entity.UserExam, uuid.UUID]
}

func NewCatalog(inner repository.Catalog, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *Catalog {
	dirty := &Keys{}
	c := &Catalog{
		inner:    inner,
		rdb:      rdb,
		dirty:    dirty,
		logger:   logger,
		courses:  NewRepository(inner.Courses(), rdb, schema.Courses.Name, ttl, dirty),
		skills:   NewRepository(inner.Skills(), rdb, schema.Skills.Name, ttl, dirty),
		exams:    NewRepository(inner.Exams(), rdb, schema.Exams.Name, ttl, dirty),
		attempts: NewRepository(inner.Attempts(), rdb, schema.UserExams.Name, ttl, dirty),
	}
	c.courses.Logger = logger
	c.skills.Logger = logger
	c.exams.Logger = logger
	c.attempts.Logger = logger
	return c
}

// NewCatalogFactory decorates every catalog produced by next.
func NewCatalogFactory(next repository.CatalogFactory, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) repository.CatalogFactory {
	return func() repository.Catalog { return NewCatalog(next(), rdb, ttl, logger) }
}

// Commit evicts touched keys, also when the commit fails.
func (c *Catalog) Commit(ctx context.Context) error {
	err := c.inner.Commit(ctx)
	if keys := c.dirty.drain(); len(keys) > 0 {
		if delErr := helpers.RedisDel(ctx, c.rdb, keys...); delErr != nil && c.logger != nil {
			c.logger.WithError(delErr).WithField("keys", keys).Warn("cache eviction failed")
		}
	}
	return err
}

func (c *Catalog) Discard() {
	c.dirty.drain()
	c.inner.Discard()
}

func (c *Catalog) Courses() repository.Repository[entity.Course, string] { return c.courses }
func (c *Catalog) Skills() repository.Repository[entity.Skill, string]   { return c.skills }
func (c *Catalog) Exams() repository.Repository[entity.Exam, string]     { return c.exams }
func (c *Catalog) Attempts() repository.Repository[entity.UserExam, uuid.UUID] {
	return c.attempts
}

var _ repository.Catalog = (*Catalog)(nil)
