package entity

import "time"

// IncludeSkills is the include path that loads Course.Skills.
const IncludeSkills = "skills"

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Course is a catalogue entry published by a company account.
type Course struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CourseURL       string    `json:"course_url,omitempty"`
	DurationInHours int       `json:"duration_in_hours"`
	DifficultyLevel string    `json:"difficulty_level,omitempty"`
	OwnerID         string    `json:"owner_id"`
	CreatedAt       time.Time `json:"created_at"`

	// Skills is only populated when the "skills" include is requested.
	Skills []Skill `json:"skills,omitempty"`
}

func (c Course) Key() string { return c.ID }

type Skill struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Name     string `json:"name"`
}

func (s Skill) Key() string { return s.ID }
