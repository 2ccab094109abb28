package dto

import "github.com/campus-advising/advising-api/internal/models"

// CreateNoteRequest is the payload for attaching an advising note.
type CreateNoteRequest struct {
	Content          string          `json:"content" validate:"required"`
	NoteType         models.NoteType `json:"note_type"`
	VisibleToStudent bool            `json:"visible_to_student"`
}

// SuggestCoursesRequest asks the advisor service to send course
// recommendations to a student as a note.
type SuggestCoursesRequest struct {
	CourseIDs []string `json:"course_ids" validate:"required,min=1"`
	Term      string   `json:"term"`
	Notes     string   `json:"notes"`
}
