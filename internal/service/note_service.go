package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-advising/advising-api/internal/dto"
	"github.com/campus-advising/advising-api/internal/models"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
)

type noteRepository interface {
	Create(ctx context.Context, note *models.AdvisingNote) error
	ListByStudent(ctx context.Context, studentID string, visibleOnly bool) ([]models.AdvisingNote, error)
}

type noteStudentReader interface {
	IsAdvisedBy(ctx context.Context, studentID, advisorID string) (bool, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]models.StudentDetail, error)
}

type noteCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// NoteService manages advising notes and course suggestions between an
// advisor and their assigned students.
type NoteService struct {
	repo      noteRepository
	students  noteStudentReader
	courses   noteCourseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoteService constructs the service.
func NewNoteService(repo noteRepository, students noteStudentReader, courses noteCourseReader, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{repo: repo, students: students, courses: courses, validator: validate, logger: logger}
}

// Create attaches a note to one of the advisor's students.
func (s *NoteService) Create(ctx context.Context, advisorID, studentID string, req dto.CreateNoteRequest) (*models.AdvisingNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	if err := s.requireOwnership(ctx, studentID, advisorID); err != nil {
		return nil, err
	}

	noteType := req.NoteType
	if noteType == "" {
		noteType = models.NoteTypeGeneral
	}
	note := &models.AdvisingNote{
		StudentID:        studentID,
		AdvisorID:        advisorID,
		Content:          req.Content,
		NoteType:         noteType,
		VisibleToStudent: req.VisibleToStudent,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	return note, nil
}

// ListForAdvisor returns all notes on one of the advisor's students.
func (s *NoteService) ListForAdvisor(ctx context.Context, advisorID, studentID string) ([]models.AdvisingNote, error) {
	if err := s.requireOwnership(ctx, studentID, advisorID); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListByStudent(ctx, studentID, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, nil
}

// ListForStudent returns the notes the student is allowed to see.
func (s *NoteService) ListForStudent(ctx context.Context, studentID string) ([]models.AdvisingNote, error) {
	notes, err := s.repo.ListByStudent(ctx, studentID, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, nil
}

// SuggestCourses records a recommendation note listing courses the advisor
// thinks the student should take. The note is always visible to the student.
func (s *NoteService) SuggestCourses(ctx context.Context, advisorID, studentID string, req dto.SuggestCoursesRequest) (*models.AdvisingNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}
	if err := s.requireOwnership(ctx, studentID, advisorID); err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(req.CourseIDs))
	for _, courseID := range req.CourseIDs {
		course, err := s.courses.FindByID(ctx, courseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("suggested course %s does not exist", courseID))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
		codes = append(codes, fmt.Sprintf("%s %s", course.Code, course.Name))
	}

	content := fmt.Sprintf("Suggested courses: %s", strings.Join(codes, ", "))
	if req.Term != "" {
		content = fmt.Sprintf("%s (term %s)", content, req.Term)
	}
	if req.Notes != "" {
		content = fmt.Sprintf("%s. %s", content, req.Notes)
	}

	note := &models.AdvisingNote{
		StudentID:        studentID,
		AdvisorID:        advisorID,
		Content:          content,
		NoteType:         models.NoteTypeRecommendation,
		VisibleToStudent: true,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create suggestion note")
	}
	return note, nil
}

// Students returns the advisor's assigned students.
func (s *NoteService) Students(ctx context.Context, advisorID string) ([]models.StudentDetail, error) {
	students, err := s.students.ListByAdvisor(ctx, advisorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

func (s *NoteService) requireOwnership(ctx context.Context, studentID, advisorID string) error {
	owned, err := s.students.IsAdvisedBy(ctx, studentID, advisorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify advisor assignment")
	}
	if !owned {
		return appErrors.Clone(appErrors.ErrUnauthorized, "student is assigned to another advisor")
	}
	return nil
}
