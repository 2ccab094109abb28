package models

import "time"

// RequestType enumerates the supported course request kinds.
type RequestType string

const (
	RequestTypeRegister RequestType = "register"
	RequestTypeAdd      RequestType = "add"
	RequestTypeDrop     RequestType = "drop"
)

// ValidRequestType reports whether t is one of the supported kinds.
func ValidRequestType(t RequestType) bool {
	switch t {
	case RequestTypeRegister, RequestTypeAdd, RequestTypeDrop:
		return true
	}
	return false
}

// RequestStatus captures the workflow states for course requests.
// pending is the initial state; approved and rejected are terminal.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// CourseRequest is a student's proposal to register, add, or drop a course in
// a term, subject to advisor decision.
type CourseRequest struct {
	ID           string        `db:"id" json:"id"`
	StudentID    string        `db:"student_id" json:"student_id"`
	CourseID     string        `db:"course_id" json:"course_id"`
	Type         RequestType   `db:"request_type" json:"type"`
	Status       RequestStatus `db:"status" json:"status"`
	Term         string        `db:"term" json:"term"`
	AdvisorNotes *string       `db:"advisor_notes" json:"advisor_notes,omitempty"`
	DecidedBy    *string       `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt    *time.Time    `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// CourseRequestDetail enriches CourseRequest with catalog and student info.
type CourseRequestDetail struct {
	CourseRequest
	CourseCode    string `db:"course_code" json:"course_code"`
	CourseName    string `db:"course_name" json:"course_name"`
	Credits       int    `db:"credits" json:"credits"`
	StudentName   string `db:"student_name" json:"student_name"`
	StudentNumber string `db:"student_number" json:"student_number"`
}

// RequestFilter constrains request listing queries. StudentID and AdvisorID
// are mutually exclusive scopes.
type RequestFilter struct {
	StudentID string
	AdvisorID string
	Status    RequestStatus
	Limit     int
	Offset    int
}
