package dto

import "github.com/campus-advising/advising-api/internal/models"

// CreateCourseRequestRequest is the payload for submitting a course request.
type CreateCourseRequestRequest struct {
	CourseID string             `json:"course_id" validate:"required"`
	Type     models.RequestType `json:"type" validate:"required"`
	Term     string             `json:"term" validate:"required"`
}

// DecideCourseRequestRequest captures the advisor decision and optional notes.
type DecideCourseRequestRequest struct {
	Status models.RequestStatus `json:"status" validate:"required"`
	Notes  string               `json:"notes"`
}

// CourseRequestQuery mirrors supported listing filters.
type CourseRequestQuery struct {
	Status models.RequestStatus
	Limit  int
	Offset int
}

// DecisionResult reports the outcome of a decision, including whether the
// enrollment ledger was touched (drop approvals tolerate a missing entry).
type DecisionResult struct {
	Request       *models.CourseRequest `json:"request"`
	LedgerApplied bool                  `json:"ledger_applied"`
}
