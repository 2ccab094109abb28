package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-advising/advising-api/internal/dto"
	"github.com/campus-advising/advising-api/internal/models"
	"github.com/campus-advising/advising-api/pkg/config"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
)

type eligibilityCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	Prerequisites(ctx context.Context, courseID string) ([]models.CourseRef, error)
	CurrentEnrollmentCount(ctx context.Context, courseID string) (int, error)
}

type eligibilityLedgerRepository interface {
	CompletedPassingCourseIDs(ctx context.Context, studentID string) ([]string, error)
	ActiveCourseIDs(ctx context.Context, studentID string) ([]string, error)
}

type pendingRequestReader interface {
	PendingCourseIDs(ctx context.Context, studentID string) ([]string, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheObserver interface {
	ObserveCacheHit()
	ObserveCacheMiss()
}

// EligibilityService evaluates whether a student may take a course. Results
// are derived on demand from the ledger and the catalog; nothing is stored.
// The availability view is cached per student when a cache is configured.
type EligibilityService struct {
	courses  eligibilityCourseRepository
	ledger   eligibilityLedgerRepository
	requests pendingRequestReader
	cache    cacheStore
	cacheCfg config.CatalogConfig
	metrics  cacheObserver
	logger   *zap.Logger
}

// NewEligibilityService constructs the service. cache and metrics may be nil.
func NewEligibilityService(courses eligibilityCourseRepository, ledger eligibilityLedgerRepository, requests pendingRequestReader, cache cacheStore, cacheCfg config.CatalogConfig, metrics cacheObserver, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{courses: courses, ledger: ledger, requests: requests, cache: cache, cacheCfg: cacheCfg, metrics: metrics, logger: logger}
}

// Check evaluates prerequisite satisfaction and seat availability for one
// course. Prerequisites are checked over the declared edges only; a
// prerequisite's own prerequisites are not followed.
func (s *EligibilityService) Check(ctx context.Context, studentID, courseID string) (*models.EligibilityResult, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	prereqs, err := s.courses.Prerequisites(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prerequisites")
	}
	completed, err := s.ledger.CompletedPassingCourseIDs(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed courses")
	}

	result := &models.EligibilityResult{
		CourseID:           courseID,
		PrerequisitesMet:   true,
		UnmetPrerequisites: []models.CourseRef{},
		HasCapacity:        true,
	}
	completedSet := toSet(completed)
	for _, prereq := range prereqs {
		if !completedSet[prereq.ID] {
			result.PrerequisitesMet = false
			result.UnmetPrerequisites = append(result.UnmetPrerequisites, prereq)
		}
	}
	if len(prereqs) > 0 {
		s.logger.Debug("prerequisite check evaluated declared edges only",
			zap.String("course_id", courseID),
			zap.Int("edges", len(prereqs)))
	}

	if course.Capacity != nil {
		enrolled, err := s.courses.CurrentEnrollmentCount(ctx, courseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		result.HasCapacity = enrolled < *course.Capacity
	}
	return result, nil
}

// AvailableCourses returns the active catalog annotated with the student's
// standing against each course: prerequisite satisfaction, current and past
// enrollment, pending requests, and remaining capacity.
func (s *EligibilityService) AvailableCourses(ctx context.Context, studentID string, query dto.AvailableCoursesQuery) ([]models.AvailableCourse, error) {
	cacheKey := AvailableCoursesCacheKey(studentID, query.Term)
	if s.cacheEnabled() {
		var cached []models.AvailableCourse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCacheHit()
			}
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheMiss()
		}
	}

	active := true
	courses, _, err := s.courses.List(ctx, models.CourseFilter{Active: &active, Semester: query.Term, PageSize: 200})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	completed, err := s.ledger.CompletedPassingCourseIDs(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed courses")
	}
	enrolled, err := s.ledger.ActiveCourseIDs(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active courses")
	}
	pending, err := s.requests.PendingCourseIDs(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending requests")
	}

	completedSet := toSet(completed)
	enrolledSet := toSet(enrolled)
	pendingSet := toSet(pending)

	available := make([]models.AvailableCourse, 0, len(courses))
	for _, course := range courses {
		entry := models.AvailableCourse{
			CourseDetail:      course,
			PrerequisitesMet:  true,
			IsEnrolled:        enrolledSet[course.ID],
			IsCompleted:       completedSet[course.ID],
			HasPendingRequest: pendingSet[course.ID],
			HasCapacity:       true,
		}
		for _, prereq := range course.Prerequisites {
			if !completedSet[prereq.ID] {
				entry.PrerequisitesMet = false
				break
			}
		}
		if course.Capacity != nil {
			entry.HasCapacity = course.EnrolledCount < *course.Capacity
		}
		available = append(available, entry)
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, available, s.cacheCfg.CacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.Error(err))
		}
	}
	return available, nil
}

// InvalidateStudent drops the cached availability views for one student.
func (s *EligibilityService) InvalidateStudent(ctx context.Context, studentID string) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("catalog:available:%s:*", studentID)); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

// InvalidateAll drops every cached availability view, used after catalog
// mutations that affect all students.
func (s *EligibilityService) InvalidateAll(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "catalog:available:*"); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}

func (s *EligibilityService) cacheEnabled() bool {
	return s.cache != nil && s.cacheCfg.CacheEnabled
}

// AvailableCoursesCacheKey names the per-student availability cache entry.
func AvailableCoursesCacheKey(studentID, term string) string {
	return fmt.Sprintf("catalog:available:%s:%s", studentID, term)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
