package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campus-advising/advising-api/internal/models"
)

func TestLedgerRepositoryCompletedPassingCourseIDs(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewLedgerRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id FROM student_courses")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}).AddRow("course-1").AddRow("course-2"))

	ids, err := repo.CompletedPassingCourseIDs(context.Background(), "student-1")
	require.NoError(t, err)
	require.Equal(t, []string{"course-1", "course-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryListByStudentFiltersStatus(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewLedgerRepository(db)
	rows := sqlmock.NewRows([]string{"student_id", "course_id", "term", "status", "grade", "updated_at", "course_code", "course_name", "credits"}).
		AddRow("student-1", "course-1", "Fall 2025", "current", nil, time.Now(), "MATH220", "Calculus II", 4)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sc.student_id, sc.course_id, sc.term")).
		WithArgs("student-1", string(models.LedgerStatusCurrent)).
		WillReturnRows(rows)

	entries, err := repo.ListByStudent(context.Background(), "student-1", models.LedgerStatusCurrent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.LedgerStatusCurrent, entries[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerEntryIsPassing(t *testing.T) {
	grade := func(g string) *string { return &g }

	cases := []struct {
		name  string
		entry models.LedgerEntry
		want  bool
	}{
		{"completed ungraded", models.LedgerEntry{Status: models.LedgerStatusCompleted}, true},
		{"completed with pass", models.LedgerEntry{Status: models.LedgerStatusCompleted, Grade: grade("B+")}, true},
		{"completed with F", models.LedgerEntry{Status: models.LedgerStatusCompleted, Grade: grade("F")}, false},
		{"withdrawn", models.LedgerEntry{Status: models.LedgerStatusCompleted, Grade: grade("W")}, false},
		{"incomplete", models.LedgerEntry{Status: models.LedgerStatusCompleted, Grade: grade("I")}, false},
		{"still current", models.LedgerEntry{Status: models.LedgerStatusCurrent, Grade: grade("A")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.entry.IsPassing())
		})
	}
}
