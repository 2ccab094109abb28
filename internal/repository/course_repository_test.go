package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campus-advising/advising-api/internal/models"
)

func courseRow(id, code string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "name", "description", "credits", "department_id", "semester", "capacity", "active", "created_at", "updated_at"}).
		AddRow(id, code, "Calculus II", "Integrals and series", 4, "dept-1", nil, 30, true, time.Now(), time.Now())
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name")).
		WithArgs("course-1").
		WillReturnRows(courseRow("course-1", "MATH220"))

	course, err := repo.FindByID(context.Background(), "course-1")
	require.NoError(t, err)
	require.Equal(t, "MATH220", course.Code)
	require.True(t, course.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryPrerequisitesDirectOnly(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	rows := sqlmock.NewRows([]string{"id", "code", "name"}).
		AddRow("course-0", "MATH120", "Calculus I")
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_prerequisites")).
		WithArgs("course-1").
		WillReturnRows(rows)

	refs, err := repo.Prerequisites(context.Background(), "course-1")
	require.NoError(t, err)
	require.Equal(t, []models.CourseRef{{ID: "course-0", Code: "MATH120", Name: "Calculus I"}}, refs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateWithPrerequisites(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_prerequisites")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	course := &models.Course{Code: "MATH220", Name: "Calculus II", Credits: 4, DepartmentID: "dept-1", Active: true}
	require.NoError(t, repo.Create(context.Background(), course, []string{"course-0"}))
	require.NotEmpty(t, course.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateSkipsSelfEdge(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	course := &models.Course{ID: "course-1", Code: "MATH220", Name: "Calculus II", Credits: 4, DepartmentID: "dept-1", Active: true}
	require.NoError(t, repo.Create(context.Background(), course, []string{"course-1", ""}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	course := &models.Course{ID: "missing", Code: "MATH220", Name: "Calculus II"}
	err := repo.Update(context.Background(), course, nil)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_prerequisites")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "course-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
