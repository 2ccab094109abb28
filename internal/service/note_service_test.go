package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-advising/advising-api/internal/dto"
	"github.com/campus-advising/advising-api/internal/models"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
)

type mockNoteRepo struct {
	notes []models.AdvisingNote
}

func (m *mockNoteRepo) Create(ctx context.Context, note *models.AdvisingNote) error {
	if note.ID == "" {
		note.ID = "new-note"
	}
	m.notes = append(m.notes, *note)
	return nil
}

func (m *mockNoteRepo) ListByStudent(ctx context.Context, studentID string, visibleOnly bool) ([]models.AdvisingNote, error) {
	var list []models.AdvisingNote
	for _, n := range m.notes {
		if n.StudentID != studentID {
			continue
		}
		if visibleOnly && !n.VisibleToStudent {
			continue
		}
		list = append(list, n)
	}
	return list, nil
}

type mockNoteStudents struct {
	assignments map[string]string
	students    []models.StudentDetail
}

func (m *mockNoteStudents) IsAdvisedBy(ctx context.Context, studentID, advisorID string) (bool, error) {
	return m.assignments[studentID] == advisorID, nil
}

func (m *mockNoteStudents) ListByAdvisor(ctx context.Context, advisorID string) ([]models.StudentDetail, error) {
	return m.students, nil
}

func TestNoteServiceCreate(t *testing.T) {
	repo := &mockNoteRepo{}
	svc := NewNoteService(repo,
		&mockNoteStudents{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockCourseReader{}, nil, nil)

	note, err := svc.Create(context.Background(), "advisor-1", "student-1", dto.CreateNoteRequest{
		Content: "Discussed spring schedule",
	})
	require.NoError(t, err)
	assert.Equal(t, models.NoteTypeGeneral, note.NoteType)
	assert.Equal(t, "advisor-1", note.AdvisorID)
}

func TestNoteServiceCreateNotOwnStudent(t *testing.T) {
	svc := NewNoteService(&mockNoteRepo{},
		&mockNoteStudents{assignments: map[string]string{"student-1": "advisor-2"}},
		&mockCourseReader{}, nil, nil)

	_, err := svc.Create(context.Background(), "advisor-1", "student-1", dto.CreateNoteRequest{
		Content: "Discussed spring schedule",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestNoteServiceStudentSeesOnlyVisibleNotes(t *testing.T) {
	repo := &mockNoteRepo{notes: []models.AdvisingNote{
		{ID: "n1", StudentID: "student-1", VisibleToStudent: true},
		{ID: "n2", StudentID: "student-1", VisibleToStudent: false},
	}}
	svc := NewNoteService(repo, &mockNoteStudents{}, &mockCourseReader{}, nil, nil)

	notes, err := svc.ListForStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n1", notes[0].ID)
}

func TestNoteServiceSuggestCourses(t *testing.T) {
	repo := &mockNoteRepo{}
	courses := &mockCourseReader{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", Code: "MATH220", Name: "Calculus II"},
	}}
	svc := NewNoteService(repo,
		&mockNoteStudents{assignments: map[string]string{"student-1": "advisor-1"}},
		courses, nil, nil)

	note, err := svc.SuggestCourses(context.Background(), "advisor-1", "student-1", dto.SuggestCoursesRequest{
		CourseIDs: []string{"course-1"},
		Term:      "Spring 2026",
	})
	require.NoError(t, err)
	assert.Equal(t, models.NoteTypeRecommendation, note.NoteType)
	assert.True(t, note.VisibleToStudent)
	assert.Contains(t, note.Content, "MATH220")
	assert.Contains(t, note.Content, "Spring 2026")
}

func TestNoteServiceSuggestUnknownCourse(t *testing.T) {
	svc := NewNoteService(&mockNoteRepo{},
		&mockNoteStudents{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockCourseReader{}, nil, nil)

	_, err := svc.SuggestCourses(context.Background(), "advisor-1", "student-1", dto.SuggestCoursesRequest{
		CourseIDs: []string{"missing"},
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
