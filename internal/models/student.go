package models

import "time"

// Student represents a student record linked to a user account and an
// advisor-of-record.
type Student struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	AdvisorID     *string   `db:"advisor_id" json:"advisor_id,omitempty"`
	MajorID       *string   `db:"major_id" json:"major_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// StudentDetail enriches Student with user identity fields.
type StudentDetail struct {
	Student
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
	Active   bool   `db:"active" json:"active"`
}

// Advisor represents an advisor record linked to a user account.
type Advisor struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
