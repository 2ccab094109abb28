package models

import "time"

// NoteType enumerates supported advising note categories.
type NoteType string

const (
	NoteTypeGeneral        NoteType = "general"
	NoteTypeAcademic       NoteType = "academic"
	NoteTypeRecommendation NoteType = "recommendation"
)

// AdvisingNote is a free-form note an advisor attaches to one of their
// students, optionally visible to the student.
type AdvisingNote struct {
	ID               string    `db:"id" json:"id"`
	StudentID        string    `db:"student_id" json:"student_id"`
	AdvisorID        string    `db:"advisor_id" json:"advisor_id"`
	Content          string    `db:"content" json:"content"`
	NoteType         NoteType  `db:"note_type" json:"note_type"`
	VisibleToStudent bool      `db:"visible_to_student" json:"visible_to_student"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
