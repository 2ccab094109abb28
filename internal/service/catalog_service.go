package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-advising/advising-api/internal/dto"
	"github.com/campus-advising/advising-api/internal/models"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
)

type catalogRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	Prerequisites(ctx context.Context, courseID string) ([]models.CourseRef, error)
	CurrentEnrollmentCount(ctx context.Context, courseID string) (int, error)
	ActiveEnrollmentCount(ctx context.Context, courseID string) (int, error)
	Create(ctx context.Context, course *models.Course, prerequisiteIDs []string) error
	Update(ctx context.Context, course *models.Course, prerequisiteIDs []string) error
	Delete(ctx context.Context, id string) error
}

// CatalogService manages courses and their declared prerequisite edges.
type CatalogService struct {
	repo        catalogRepository
	eligibility *EligibilityService
	audit       auditRecorder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService constructs the service. eligibility and audit may be nil.
func NewCatalogService(repo catalogRepository, eligibility *EligibilityService, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, eligibility: eligibility, audit: audit, validator: validate, logger: logger}
}

// List returns catalog courses with pagination metadata.
func (s *CatalogService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one course with department, enrollment, and prerequisite context.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	prereqs, err := s.repo.Prerequisites(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prerequisites")
	}
	enrolled, err := s.repo.CurrentEnrollmentCount(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	return &models.CourseDetail{Course: *course, EnrolledCount: enrolled, Prerequisites: prereqs}, nil
}

// Create adds a catalog course. The code must be unique and prerequisite
// references must resolve to existing courses.
func (s *CatalogService) Create(ctx context.Context, actorID string, req dto.SaveCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course code %s already exists", req.Code))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if err := s.resolvePrerequisites(ctx, "", req.Prerequisites); err != nil {
		return nil, err
	}

	course := courseFromPayload(req)
	if err := s.repo.Create(ctx, course, req.Prerequisites); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	if s.audit != nil {
		s.audit.Record(ctx, models.AuditLog{
			ActorID:    &actorID,
			Action:     models.AuditActionCourseCreate,
			EntityType: "course",
			EntityID:   &course.ID,
			Detail:     Detail(map[string]string{"code": course.Code}),
		})
	}
	if s.eligibility != nil {
		s.eligibility.InvalidateAll(ctx)
	}
	return course, nil
}

// Update replaces a course's fields and prerequisite edge set.
func (s *CatalogService) Update(ctx context.Context, actorID, id string, req dto.SaveCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if existing.Code != req.Code {
		if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course code %s already exists", req.Code))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
		}
	}
	if err := s.resolvePrerequisites(ctx, id, req.Prerequisites); err != nil {
		return nil, err
	}

	course := courseFromPayload(req)
	course.ID = id
	course.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, course, req.Prerequisites); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	if s.audit != nil {
		s.audit.Record(ctx, models.AuditLog{
			ActorID:    &actorID,
			Action:     models.AuditActionCourseUpdate,
			EntityType: "course",
			EntityID:   &course.ID,
		})
	}
	if s.eligibility != nil {
		s.eligibility.InvalidateAll(ctx)
	}
	return course, nil
}

// Delete removes a course. Deletion is refused while any student holds a
// current or in-progress seat in it.
func (s *CatalogService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	active, err := s.repo.ActiveEnrollmentCount(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if active > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "course has active enrollments and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	if s.audit != nil {
		s.audit.Record(ctx, models.AuditLog{
			ActorID:    &actorID,
			Action:     models.AuditActionCourseDelete,
			EntityType: "course",
			EntityID:   &id,
		})
	}
	if s.eligibility != nil {
		s.eligibility.InvalidateAll(ctx)
	}
	return nil
}

func (s *CatalogService) resolvePrerequisites(ctx context.Context, courseID string, prerequisiteIDs []string) error {
	for _, prereqID := range prerequisiteIDs {
		if prereqID == "" {
			continue
		}
		if prereqID == courseID {
			return appErrors.Clone(appErrors.ErrValidation, "a course cannot be its own prerequisite")
		}
		if _, err := s.repo.FindByID(ctx, prereqID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("prerequisite course %s does not exist", prereqID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve prerequisite")
		}
	}
	return nil
}

func courseFromPayload(req dto.SaveCourseRequest) *models.Course {
	course := &models.Course{
		Code:         req.Code,
		Name:         req.Name,
		Credits:      req.Credits,
		DepartmentID: req.DepartmentID,
		Capacity:     req.Capacity,
		Active:       true,
	}
	if req.Description != "" {
		course.Description = &req.Description
	}
	if req.Semester != "" {
		course.Semester = &req.Semester
	}
	if req.Active != nil {
		course.Active = *req.Active
	}
	return course
}
