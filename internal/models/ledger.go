package models

import "time"

// LedgerStatus represents the lifecycle of a student-course ledger entry.
type LedgerStatus string

// Possible ledger statuses.
const (
	LedgerStatusCurrent    LedgerStatus = "current"
	LedgerStatusInProgress LedgerStatus = "in_progress"
	LedgerStatusCompleted  LedgerStatus = "completed"
	LedgerStatusDropped    LedgerStatus = "dropped"
)

// NonPassingGrades lists grades that do not count toward prerequisite
// satisfaction or earned credit.
var NonPassingGrades = []string{"F", "W", "I"}

// LedgerEntry is the authoritative record of a student's relationship to a
// course in a term. Entries are keyed uniquely by (student, course, term).
type LedgerEntry struct {
	StudentID string       `db:"student_id" json:"student_id"`
	CourseID  string       `db:"course_id" json:"course_id"`
	Term      string       `db:"term" json:"term"`
	Status    LedgerStatus `db:"status" json:"status"`
	Grade     *string      `db:"grade" json:"grade,omitempty"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// IsPassing reports whether the entry counts toward prerequisite completion.
func (e LedgerEntry) IsPassing() bool {
	if e.Status != LedgerStatusCompleted {
		return false
	}
	if e.Grade == nil {
		return true
	}
	for _, g := range NonPassingGrades {
		if *e.Grade == g {
			return false
		}
	}
	return true
}

// LedgerEntryDetail enriches LedgerEntry with catalog context.
type LedgerEntryDetail struct {
	LedgerEntry
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
	Credits    int    `db:"credits" json:"credits"`
}
