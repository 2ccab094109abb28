package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-advising/advising-api/internal/dto"
	"github.com/campus-advising/advising-api/internal/models"
	"github.com/campus-advising/advising-api/internal/repository"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
)

type requestRepository interface {
	Create(ctx context.Context, request *models.CourseRequest) error
	GetByID(ctx context.Context, id string) (*models.CourseRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.CourseRequestDetail, error)
	Decide(ctx context.Context, params repository.DecideParams) (bool, error)
	DeletePending(ctx context.Context, requestID, studentID string) error
}

type requestCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type requestStudentReader interface {
	IsAdvisedBy(ctx context.Context, studentID, advisorID string) (bool, error)
}

type requestLedgerReader interface {
	ActiveCourseIDs(ctx context.Context, studentID string) ([]string, error)
}

type workflowObserver interface {
	ObserveRequestCreated()
	ObserveDecision(status models.RequestStatus)
}

// RequestService orchestrates the course request lifecycle: submission by
// students, review and decision by the student's advisor-of-record, and
// cancellation while still pending.
type RequestService struct {
	repo        requestRepository
	courses     requestCourseReader
	students    requestStudentReader
	ledger      requestLedgerReader
	eligibility *EligibilityService
	audit       auditRecorder
	metrics     workflowObserver
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRequestService constructs the service. audit and metrics may be nil.
func NewRequestService(repo requestRepository, courses requestCourseReader, students requestStudentReader, ledger requestLedgerReader, eligibility *EligibilityService, audit auditRecorder, metrics workflowObserver, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		repo:        repo,
		courses:     courses,
		students:    students,
		ledger:      ledger,
		eligibility: eligibility,
		audit:       audit,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Create submits a new pending request on behalf of a student. The course
// must exist and be active, a drop must target a course the student actually
// holds, and at most one pending request per (student, course) may exist.
// Prerequisite satisfaction is intentionally not checked here; the advisor
// sees the eligibility assessment at review time and decides.
func (s *RequestService) Create(ctx context.Context, studentID string, req dto.CreateCourseRequestRequest) (*models.CourseRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	if !models.ValidRequestType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported request type")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course is not open for requests")
	}

	if req.Type == models.RequestTypeDrop {
		active, err := s.ledger.ActiveCourseIDs(ctx, studentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
		}
		if !toSet(active)[req.CourseID] {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in this course")
		}
	}

	request := &models.CourseRequest{
		StudentID: studentID,
		CourseID:  req.CourseID,
		Type:      req.Type,
		Term:      req.Term,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a pending request for this course already exists")
		}
		return nil, storeError(err, "failed to create request")
	}

	if s.metrics != nil {
		s.metrics.ObserveRequestCreated()
	}
	if s.audit != nil {
		s.audit.Record(ctx, models.AuditLog{
			ActorID:    &request.StudentID,
			Action:     models.AuditActionRequestCreate,
			EntityType: "course_request",
			EntityID:   &request.ID,
			Detail:     Detail(map[string]string{"course_id": request.CourseID, "type": string(request.Type), "term": request.Term}),
		})
	}
	if s.eligibility != nil {
		s.eligibility.InvalidateStudent(ctx, studentID)
	}
	return request, nil
}

// ListForStudent returns the student's own requests.
func (s *RequestService) ListForStudent(ctx context.Context, studentID string, query dto.CourseRequestQuery) ([]models.CourseRequestDetail, error) {
	requests, err := s.repo.List(ctx, models.RequestFilter{
		StudentID: studentID,
		Status:    query.Status,
		Limit:     query.Limit,
		Offset:    query.Offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// ListForAdvisor returns requests from the advisor's assigned students.
func (s *RequestService) ListForAdvisor(ctx context.Context, advisorID string, query dto.CourseRequestQuery) ([]models.CourseRequestDetail, error) {
	requests, err := s.repo.List(ctx, models.RequestFilter{
		AdvisorID: advisorID,
		Status:    query.Status,
		Limit:     query.Limit,
		Offset:    query.Offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// Review loads a single request with the student's eligibility assessment so
// the advisor can decide with full context.
func (s *RequestService) Review(ctx context.Context, advisorID, requestID string) (*models.CourseRequest, *models.EligibilityResult, error) {
	request, err := s.loadOwned(ctx, advisorID, requestID)
	if err != nil {
		return nil, nil, err
	}
	var eligibility *models.EligibilityResult
	if s.eligibility != nil {
		eligibility, err = s.eligibility.Check(ctx, request.StudentID, request.CourseID)
		if err != nil {
			// The assessment is advisory; review still proceeds without it.
			s.logger.Warn("eligibility check failed during review",
				zap.String("request_id", requestID), zap.Error(err))
			eligibility = nil
		}
	}
	return request, eligibility, nil
}

// Decide transitions a pending request to approved or rejected. Only the
// student's advisor-of-record may decide. Approval applies the enrollment
// ledger side effect atomically with the status change.
func (s *RequestService) Decide(ctx context.Context, advisorID, advisorUserID, requestID string, req dto.DecideCourseRequestRequest) (*dto.DecisionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	if req.Status != models.RequestStatusApproved && req.Status != models.RequestStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be approved or rejected")
	}

	request, err := s.loadOwned(ctx, advisorID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "request has already been decided")
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	decidedAt := time.Now().UTC()
	ledgerApplied, err := s.repo.Decide(ctx, repository.DecideParams{
		RequestID: requestID,
		Status:    req.Status,
		DecidedBy: advisorUserID,
		DecidedAt: decidedAt,
		Notes:     notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotPending) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "request has already been decided")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, storeError(err, "failed to decide request")
	}

	if req.Status == models.RequestStatusApproved && request.Type == models.RequestTypeDrop && !ledgerApplied {
		s.logger.Warn("approved drop had no matching ledger entry",
			zap.String("request_id", requestID),
			zap.String("student_id", request.StudentID),
			zap.String("course_id", request.CourseID),
			zap.String("term", request.Term))
	}

	request.Status = req.Status
	request.AdvisorNotes = notes
	request.DecidedBy = &advisorUserID
	request.DecidedAt = &decidedAt

	if s.metrics != nil {
		s.metrics.ObserveDecision(req.Status)
	}
	if s.audit != nil {
		s.audit.Record(ctx, models.AuditLog{
			ActorID:    &advisorUserID,
			Action:     models.AuditActionRequestDecide,
			EntityType: "course_request",
			EntityID:   &request.ID,
			Detail:     Detail(map[string]interface{}{"status": req.Status, "ledger_applied": ledgerApplied}),
		})
	}
	if s.eligibility != nil {
		s.eligibility.InvalidateStudent(ctx, request.StudentID)
	}
	return &dto.DecisionResult{Request: request, LedgerApplied: ledgerApplied}, nil
}

// Cancel removes the student's own request while it is still pending.
func (s *RequestService) Cancel(ctx context.Context, studentID, requestID string) error {
	if err := s.repo.DeletePending(ctx, requestID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			request, lookupErr := s.repo.GetByID(ctx, requestID)
			if lookupErr == nil && request.StudentID == studentID && request.Status != models.RequestStatusPending {
				return appErrors.Clone(appErrors.ErrInvalidState, "request has already been decided")
			}
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return storeError(err, "failed to cancel request")
	}
	if s.audit != nil {
		s.audit.Record(ctx, models.AuditLog{
			ActorID:    &studentID,
			Action:     models.AuditActionRequestCancel,
			EntityType: "course_request",
			EntityID:   &requestID,
		})
	}
	if s.eligibility != nil {
		s.eligibility.InvalidateStudent(ctx, studentID)
	}
	return nil
}

// loadOwned fetches a request and verifies the advisor is the owning
// student's advisor-of-record.
func (s *RequestService) loadOwned(ctx context.Context, advisorID, requestID string) (*models.CourseRequest, error) {
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	owned, err := s.students.IsAdvisedBy(ctx, request.StudentID, advisorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify advisor assignment")
	}
	if !owned {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "request belongs to another advisor's student")
	}
	return request, nil
}

// storeError maps a repository write failure to the API taxonomy.
// Connection-class failures surface as retryable, everything else as internal.
func storeError(err error, message string) *appErrors.Error {
	if appErrors.IsRetryable(err) {
		return appErrors.Wrap(err, appErrors.ErrTransient.Code, appErrors.ErrTransient.Status, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
