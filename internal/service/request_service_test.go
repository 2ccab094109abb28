package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-advising/advising-api/internal/dto"
	"github.com/campus-advising/advising-api/internal/models"
	"github.com/campus-advising/advising-api/internal/repository"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
)

type mockRequestRepo struct {
	requests      map[string]models.CourseRequest
	created       *models.CourseRequest
	createErr     error
	decideErr     error
	decided       *repository.DecideParams
	ledgerApplied bool
	deleted       []string
}

func (m *mockRequestRepo) Create(ctx context.Context, request *models.CourseRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	if request.ID == "" {
		request.ID = "new-request"
	}
	request.Status = models.RequestStatusPending
	if m.requests == nil {
		m.requests = make(map[string]models.CourseRequest)
	}
	m.requests[request.ID] = *request
	m.created = request
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id string) (*models.CourseRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequestRepo) List(ctx context.Context, filter models.RequestFilter) ([]models.CourseRequestDetail, error) {
	var list []models.CourseRequestDetail
	for _, r := range m.requests {
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		list = append(list, models.CourseRequestDetail{CourseRequest: r})
	}
	return list, nil
}

func (m *mockRequestRepo) Decide(ctx context.Context, params repository.DecideParams) (bool, error) {
	if m.decideErr != nil {
		return false, m.decideErr
	}
	m.decided = &params
	if r, ok := m.requests[params.RequestID]; ok {
		r.Status = params.Status
		m.requests[params.RequestID] = r
	}
	return m.ledgerApplied, nil
}

func (m *mockRequestRepo) DeletePending(ctx context.Context, requestID, studentID string) error {
	r, ok := m.requests[requestID]
	if !ok || r.StudentID != studentID || r.Status != models.RequestStatusPending {
		return sql.ErrNoRows
	}
	delete(m.requests, requestID)
	m.deleted = append(m.deleted, requestID)
	return nil
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentOwnership struct {
	assignments map[string]string
}

func (m *mockStudentOwnership) IsAdvisedBy(ctx context.Context, studentID, advisorID string) (bool, error) {
	return m.assignments[studentID] == advisorID, nil
}

type mockLedgerReader struct {
	active []string
}

func (m *mockLedgerReader) ActiveCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	return m.active, nil
}

type mockAudit struct {
	records []models.AuditLog
}

func (m *mockAudit) Record(ctx context.Context, log models.AuditLog) {
	m.records = append(m.records, log)
}

type mockObserver struct {
	created   int
	decisions []models.RequestStatus
}

func (m *mockObserver) ObserveRequestCreated() { m.created++ }

func (m *mockObserver) ObserveDecision(status models.RequestStatus) {
	m.decisions = append(m.decisions, status)
}

func activeCourse(id string) *models.Course {
	return &models.Course{ID: id, Code: "MATH220", Name: "Calculus II", Credits: 4, Active: true}
}

func newRequestService(repo *mockRequestRepo, courses *mockCourseReader, students *mockStudentOwnership, ledger *mockLedgerReader, audit *mockAudit, observer *mockObserver) *RequestService {
	// A nil *mockAudit boxed into the interface would defeat the service's
	// nil guards, so convert explicitly.
	var auditRec auditRecorder
	if audit != nil {
		auditRec = audit
	}
	var metrics workflowObserver
	if observer != nil {
		metrics = observer
	}
	return NewRequestService(repo, courses, students, ledger, nil, auditRec, metrics, nil, nil)
}

func TestRequestServiceCreate(t *testing.T) {
	repo := &mockRequestRepo{}
	audit := &mockAudit{}
	observer := &mockObserver{}
	svc := newRequestService(repo,
		&mockCourseReader{courses: map[string]*models.Course{"course-1": activeCourse("course-1")}},
		&mockStudentOwnership{}, &mockLedgerReader{}, audit, observer)

	request, err := svc.Create(context.Background(), "student-1", dto.CreateCourseRequestRequest{
		CourseID: "course-1",
		Type:     models.RequestTypeRegister,
		Term:     "Fall 2025",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, "student-1", request.StudentID)
	assert.Equal(t, 1, observer.created)
	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionRequestCreate, audit.records[0].Action)
}

func TestRequestServiceCreateSkipsEligibilityGate(t *testing.T) {
	// A student missing prerequisites can still submit; the advisor sees the
	// assessment at review time instead.
	repo := &mockRequestRepo{}
	svc := newRequestService(repo,
		&mockCourseReader{courses: map[string]*models.Course{"course-1": activeCourse("course-1")}},
		&mockStudentOwnership{}, &mockLedgerReader{}, nil, nil)

	_, err := svc.Create(context.Background(), "student-no-prereqs", dto.CreateCourseRequestRequest{
		CourseID: "course-1",
		Type:     models.RequestTypeRegister,
		Term:     "Fall 2025",
	})
	require.NoError(t, err)
}

func TestRequestServiceCreateInactiveCourse(t *testing.T) {
	course := activeCourse("course-1")
	course.Active = false
	svc := newRequestService(&mockRequestRepo{},
		&mockCourseReader{courses: map[string]*models.Course{"course-1": course}},
		&mockStudentOwnership{}, &mockLedgerReader{}, nil, nil)

	_, err := svc.Create(context.Background(), "student-1", dto.CreateCourseRequestRequest{
		CourseID: "course-1",
		Type:     models.RequestTypeRegister,
		Term:     "Fall 2025",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestRequestServiceCreateDuplicatePending(t *testing.T) {
	svc := newRequestService(&mockRequestRepo{createErr: repository.ErrDuplicatePending},
		&mockCourseReader{courses: map[string]*models.Course{"course-1": activeCourse("course-1")}},
		&mockStudentOwnership{}, &mockLedgerReader{}, nil, nil)

	_, err := svc.Create(context.Background(), "student-1", dto.CreateCourseRequestRequest{
		CourseID: "course-1",
		Type:     models.RequestTypeRegister,
		Term:     "Fall 2025",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRequestServiceCreateDropRequiresEnrollment(t *testing.T) {
	courses := &mockCourseReader{courses: map[string]*models.Course{"course-1": activeCourse("course-1")}}

	svc := newRequestService(&mockRequestRepo{}, courses, &mockStudentOwnership{}, &mockLedgerReader{}, nil, nil)
	_, err := svc.Create(context.Background(), "student-1", dto.CreateCourseRequestRequest{
		CourseID: "course-1",
		Type:     models.RequestTypeDrop,
		Term:     "Fall 2025",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)

	svc = newRequestService(&mockRequestRepo{}, courses, &mockStudentOwnership{}, &mockLedgerReader{active: []string{"course-1"}}, nil, nil)
	_, err = svc.Create(context.Background(), "student-1", dto.CreateCourseRequestRequest{
		CourseID: "course-1",
		Type:     models.RequestTypeDrop,
		Term:     "Fall 2025",
	})
	require.NoError(t, err)
}

func TestRequestServiceDecideApprove(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", CourseID: "course-1", Type: models.RequestTypeRegister, Status: models.RequestStatusPending, Term: "Fall 2025"},
		},
		ledgerApplied: true,
	}
	audit := &mockAudit{}
	observer := &mockObserver{}
	svc := newRequestService(repo, &mockCourseReader{},
		&mockStudentOwnership{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockLedgerReader{}, audit, observer)

	result, err := svc.Decide(context.Background(), "advisor-1", "advisor-user-1", "req-1", dto.DecideCourseRequestRequest{
		Status: models.RequestStatusApproved,
		Notes:  "prerequisites satisfied",
	})
	require.NoError(t, err)
	assert.True(t, result.LedgerApplied)
	assert.Equal(t, models.RequestStatusApproved, result.Request.Status)
	require.NotNil(t, result.Request.DecidedBy)
	assert.Equal(t, "advisor-user-1", *result.Request.DecidedBy)
	require.NotNil(t, repo.decided)
	assert.Equal(t, "advisor-user-1", repo.decided.DecidedBy)
	assert.Equal(t, []models.RequestStatus{models.RequestStatusApproved}, observer.decisions)
	require.Len(t, audit.records, 1)
}

func TestRequestServiceDecideNotOwnAdvisor(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusPending},
		},
	}
	svc := newRequestService(repo, &mockCourseReader{},
		&mockStudentOwnership{assignments: map[string]string{"student-1": "advisor-2"}},
		&mockLedgerReader{}, nil, nil)

	_, err := svc.Decide(context.Background(), "advisor-1", "advisor-user-1", "req-1", dto.DecideCourseRequestRequest{
		Status: models.RequestStatusApproved,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
	assert.Nil(t, repo.decided)
}

func TestRequestServiceDecideAlreadyDecided(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusApproved},
		},
	}
	svc := newRequestService(repo, &mockCourseReader{},
		&mockStudentOwnership{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockLedgerReader{}, nil, nil)

	_, err := svc.Decide(context.Background(), "advisor-1", "advisor-user-1", "req-1", dto.DecideCourseRequestRequest{
		Status: models.RequestStatusRejected,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
}

func TestRequestServiceDecideLostRace(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusPending},
		},
		decideErr: repository.ErrRequestNotPending,
	}
	svc := newRequestService(repo, &mockCourseReader{},
		&mockStudentOwnership{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockLedgerReader{}, nil, nil)

	_, err := svc.Decide(context.Background(), "advisor-1", "advisor-user-1", "req-1", dto.DecideCourseRequestRequest{
		Status: models.RequestStatusApproved,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
}

func TestRequestServiceDecideInvalidStatus(t *testing.T) {
	svc := newRequestService(&mockRequestRepo{}, &mockCourseReader{}, &mockStudentOwnership{}, &mockLedgerReader{}, nil, nil)
	_, err := svc.Decide(context.Background(), "advisor-1", "advisor-user-1", "req-1", dto.DecideCourseRequestRequest{
		Status: models.RequestStatusPending,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRequestServiceDecideApprovedDropWithoutEntry(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", CourseID: "course-1", Type: models.RequestTypeDrop, Status: models.RequestStatusPending, Term: "Fall 2025"},
		},
		ledgerApplied: false,
	}
	svc := newRequestService(repo, &mockCourseReader{},
		&mockStudentOwnership{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockLedgerReader{}, nil, nil)

	result, err := svc.Decide(context.Background(), "advisor-1", "advisor-user-1", "req-1", dto.DecideCourseRequestRequest{
		Status: models.RequestStatusApproved,
	})
	require.NoError(t, err)
	assert.False(t, result.LedgerApplied)
	assert.Equal(t, models.RequestStatusApproved, result.Request.Status)
}

func TestRequestServiceCancel(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusPending},
			"req-2": {ID: "req-2", StudentID: "student-1", Status: models.RequestStatusApproved},
		},
	}
	svc := newRequestService(repo, &mockCourseReader{}, &mockStudentOwnership{}, &mockLedgerReader{}, nil, nil)

	require.NoError(t, svc.Cancel(context.Background(), "student-1", "req-1"))
	assert.Equal(t, []string{"req-1"}, repo.deleted)

	err := svc.Cancel(context.Background(), "student-1", "req-2")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)

	err = svc.Cancel(context.Background(), "student-1", "missing")
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRequestServiceReview(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", CourseID: "course-1", Status: models.RequestStatusPending},
		},
	}
	svc := newRequestService(repo, &mockCourseReader{},
		&mockStudentOwnership{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockLedgerReader{}, nil, nil)

	request, eligibility, err := svc.Review(context.Background(), "advisor-1", "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", request.ID)
	// No eligibility service wired in this fixture.
	assert.Nil(t, eligibility)

	_, _, err = svc.Review(context.Background(), "advisor-2", "req-1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestRequestServiceDecideWrapsUnknownErrors(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusPending},
		},
		decideErr: errors.New("connection reset"),
	}
	svc := newRequestService(repo, &mockCourseReader{},
		&mockStudentOwnership{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockLedgerReader{}, nil, nil)

	_, err := svc.Decide(context.Background(), "advisor-1", "advisor-user-1", "req-1", dto.DecideCourseRequestRequest{
		Status: models.RequestStatusApproved,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestRequestServiceDecideConnectionFailureIsRetryable(t *testing.T) {
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusPending},
		},
		decideErr: fmt.Errorf("begin decision tx: %w", driver.ErrBadConn),
	}
	svc := newRequestService(repo, &mockCourseReader{},
		&mockStudentOwnership{assignments: map[string]string{"student-1": "advisor-1"}},
		&mockLedgerReader{}, nil, nil)

	_, err := svc.Decide(context.Background(), "advisor-1", "advisor-user-1", "req-1", dto.DecideCourseRequestRequest{
		Status: models.RequestStatusApproved,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTransient.Code, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
}

func TestRequestServiceCreateTimeoutIsRetryable(t *testing.T) {
	repo := &mockRequestRepo{createErr: fmt.Errorf("insert request: %w", context.DeadlineExceeded)}
	svc := newRequestService(repo, &mockCourseReader{courses: map[string]*models.Course{"course-1": activeCourse("course-1")}},
		&mockStudentOwnership{}, &mockLedgerReader{}, nil, nil)

	_, err := svc.Create(context.Background(), "student-1", dto.CreateCourseRequestRequest{
		CourseID: "course-1",
		Type:     models.RequestTypeRegister,
		Term:     "Fall 2025",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTransient.Code, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
}

func TestRequestServiceListScopes(t *testing.T) {
	now := time.Now()
	repo := &mockRequestRepo{
		requests: map[string]models.CourseRequest{
			"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusPending, CreatedAt: now},
			"req-2": {ID: "req-2", StudentID: "student-2", Status: models.RequestStatusPending, CreatedAt: now},
		},
	}
	svc := newRequestService(repo, &mockCourseReader{}, &mockStudentOwnership{}, &mockLedgerReader{}, nil, nil)

	mine, err := svc.ListForStudent(context.Background(), "student-1", dto.CourseRequestQuery{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "req-1", mine[0].ID)
}
