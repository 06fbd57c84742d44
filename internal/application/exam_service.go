package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-course-platform/internal/domain/repository"
	spec "github.com/oksasatya/go-course-platform/internal/domain/specification"
)

type ExamService struct {
	Catalog repo.CatalogFactory
	Logger  *logrus.Logger
	now     func() time.Time
}

func NewExamService(catalog repo.CatalogFactory, logger *logrus.Logger) *ExamService {
	return &ExamService{Catalog: catalog, Logger: logger, now: time.Now}
}

// RecordAttempt stores a new score for userID on examID. A user has one
// attempt record per exam; later attempts bump its counter. Once passed, an
// exam stays passed.
func (s *ExamService) RecordAttempt(ctx context.Context, userID, examID string, score float64) (entity.UserExam, error) {
	if score < 0 || score > 100 {
		return entity.UserExam{}, ErrInvalidScore
	}
	cat := s.Catalog()
	defer cat.Discard()

	exam, ok, err := cat.Exams().GetByID(ctx, examID)
	if err != nil {
		return entity.UserExam{}, err
	}
	if !ok {
		return entity.UserExam{}, ErrExamNotFound
	}

	attempt, found, err := cat.Attempts().GetBySpec(ctx, spec.New[entity.UserExam](
		spec.Equal("user_id", userID),
		spec.Equal("exam_id", examID),
	))
	if err != nil {
		return entity.UserExam{}, err
	}

	now := s.now().UTC()
	passed := score >= exam.PassingScore
	if found {
		attempt.AttemptCount++
	} else {
		attempt = entity.UserExam{ID: uuid.New(), UserID: userID, ExamID: examID, AttemptCount: 1}
	}
	attempt.Score = score
	attempt.LastAttemptDate = &now
	if passed && !attempt.IsPassed {
		attempt.IsPassed = true
		attempt.FinishedAt = &now
	}

	if found {
		err = cat.Attempts().Update(ctx, attempt)
	} else {
		err = cat.Attempts().Add(ctx, attempt)
	}
	if err != nil {
		return entity.UserExam{}, err
	}
	if err := cat.Commit(ctx); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "exam_id": examID}).Error("record attempt failed")
		}
		return entity.UserExam{}, err
	}
	attempt.Exam = &exam
	return attempt, nil
}

// Attempts lists the user's attempts, most recent first.
func (s *ExamService) Attempts(ctx context.Context, userID string, page, size int) ([]entity.UserExam, error) {
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	cat := s.Catalog()
	defer cat.Discard()
	return cat.Attempts().GetAllBySpec(ctx, spec.New[entity.UserExam](
		spec.Equal("user_id", userID),
		spec.OrderByDescending("last_attempt_date"),
		spec.PageOf(page, size),
		spec.Include(entity.IncludeExam),
	))
}
