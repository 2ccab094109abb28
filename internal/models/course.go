package models

import "time"

// Course represents a catalog entry students can enroll in.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Credits      int       `db:"credits" json:"credits"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Semester     *string   `db:"semester" json:"semester,omitempty"`
	Capacity     *int      `db:"capacity" json:"capacity,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseRef is a lightweight catalog reference used in prerequisite listings.
type CourseRef struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// CourseDetail enriches Course with department and enrollment context.
type CourseDetail struct {
	Course
	DepartmentName string      `db:"department_name" json:"department_name"`
	EnrolledCount  int         `db:"enrolled_count" json:"enrolled_count"`
	Prerequisites  []CourseRef `json:"prerequisites"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	DepartmentID string
	Semester     string
	Active       *bool
	Search       string
	Page         int
	PageSize     int
}

// AvailableCourse annotates a catalog entry with per-student registration context.
type AvailableCourse struct {
	CourseDetail
	PrerequisitesMet  bool `json:"prerequisites_met"`
	IsEnrolled        bool `json:"is_enrolled"`
	IsCompleted       bool `json:"is_completed"`
	HasPendingRequest bool `json:"has_pending_request"`
	HasCapacity       bool `json:"has_capacity"`
}
