package dto

// SaveCourseRequest is the payload for creating or updating a catalog course.
type SaveCourseRequest struct {
	Code          string   `json:"code" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Credits       int      `json:"credits" validate:"required,gt=0"`
	DepartmentID  string   `json:"department_id" validate:"required"`
	Semester      string   `json:"semester"`
	Capacity      *int     `json:"capacity" validate:"omitempty,gt=0"`
	Active        *bool    `json:"active"`
	Prerequisites []string `json:"prerequisites"`
}

// AvailableCoursesQuery filters the per-student course browsing view.
type AvailableCoursesQuery struct {
	Term string
}
