package entity

import (
	"time"

	"github.com/google/uuid"
)

// IncludeExam is the include path that loads UserExam.Exam.
const IncludeExam = "exam"

type Exam struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	Title        string    `json:"title"`
	PassingScore float64   `json:"passing_score"`
	CreatedAt    time.Time `json:"created_at"`
}

func (e Exam) Key() string { return e.ID }

// UserExam records the attempts of one user at one exam.
type UserExam struct {
	ID              uuid.UUID  `json:"id"`
	UserID          string     `json:"user_id"`
	ExamID          string     `json:"exam_id"`
	AttemptCount    int        `json:"attempt_count"`
	LastAttemptDate *time.Time `json:"last_attempt_date,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Score           float64    `json:"score"`
	IsPassed        bool       `json:"is_passed"`

	// Exam is only populated when the "exam" include is requested.
	Exam *Exam `json:"exam,omitempty"`
}

func (u UserExam) Key() uuid.UUID { return u.ID }
