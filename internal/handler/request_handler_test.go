package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-advising/advising-api/internal/middleware"
	"github.com/campus-advising/advising-api/internal/models"
	"github.com/campus-advising/advising-api/internal/repository"
	"github.com/campus-advising/advising-api/internal/service"
)

type fakeRequestRepo struct {
	requests      map[string]models.CourseRequest
	createErr     error
	ledgerApplied bool
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *models.CourseRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	if request.ID == "" {
		request.ID = "new-request"
	}
	request.Status = models.RequestStatusPending
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*models.CourseRequest, error) {
	if r, ok := f.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRequestRepo) List(ctx context.Context, filter models.RequestFilter) ([]models.CourseRequestDetail, error) {
	var list []models.CourseRequestDetail
	for _, r := range f.requests {
		list = append(list, models.CourseRequestDetail{CourseRequest: r})
	}
	return list, nil
}

func (f *fakeRequestRepo) Decide(ctx context.Context, params repository.DecideParams) (bool, error) {
	if r, ok := f.requests[params.RequestID]; ok {
		r.Status = params.Status
		f.requests[params.RequestID] = r
	}
	return f.ledgerApplied, nil
}

func (f *fakeRequestRepo) DeletePending(ctx context.Context, requestID, studentID string) error {
	r, ok := f.requests[requestID]
	if !ok || r.StudentID != studentID || r.Status != models.RequestStatusPending {
		return sql.ErrNoRows
	}
	delete(f.requests, requestID)
	return nil
}

type fakeCourseRepo struct {
	courses map[string]*models.Course
}

func (f *fakeCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type fakeStudentRepo struct {
	students    map[string]*models.Student
	advisors    map[string]string
	assignments map[string]string
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	for _, s := range f.students {
		if s.ID == id {
			return &models.StudentDetail{Student: *s}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	if s, ok := f.students[userID]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) AdvisorIDForUser(ctx context.Context, userID string) (string, error) {
	if id, ok := f.advisors[userID]; ok {
		return id, nil
	}
	return "", sql.ErrNoRows
}

func (f *fakeStudentRepo) IsAdvisedBy(ctx context.Context, studentID, advisorID string) (bool, error) {
	return f.assignments[studentID] == advisorID, nil
}

func (f *fakeStudentRepo) ListByAdvisor(ctx context.Context, advisorID string) ([]models.StudentDetail, error) {
	return nil, nil
}

type fakeLedgerRepo struct {
	active []string
}

func (f *fakeLedgerRepo) ActiveCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	return f.active, nil
}

func (f *fakeLedgerRepo) ListByStudent(ctx context.Context, studentID string, statuses ...models.LedgerStatus) ([]models.LedgerEntryDetail, error) {
	return nil, nil
}

type requestHandlerFixture struct {
	handler  *RequestHandler
	requests *fakeRequestRepo
}

func newRequestHandlerFixture(requests *fakeRequestRepo, courses *fakeCourseRepo, students *fakeStudentRepo, ledger *fakeLedgerRepo) requestHandlerFixture {
	requestSvc := service.NewRequestService(requests, courses, students, ledger, nil, nil, nil, nil, nil)
	studentSvc := service.NewStudentService(students, ledger, nil)
	return requestHandlerFixture{
		handler:  NewRequestHandler(requestSvc, studentSvc),
		requests: requests,
	}
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-student-1", Role: models.RoleStudent}
}

func advisorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-advisor-1", Role: models.RoleAdvisor}
}

func defaultStudents() *fakeStudentRepo {
	return &fakeStudentRepo{
		students:    map[string]*models.Student{"user-student-1": {ID: "student-1", UserID: "user-student-1"}},
		advisors:    map[string]string{"user-advisor-1": "advisor-1"},
		assignments: map[string]string{"student-1": "advisor-1"},
	}
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	var body bytes.Buffer
	_ = json.NewEncoder(&body).Encode(payload)
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRequestHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixture := newRequestHandlerFixture(
		&fakeRequestRepo{},
		&fakeCourseRepo{courses: map[string]*models.Course{"course-1": {ID: "course-1", Active: true}}},
		defaultStudents(), &fakeLedgerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/requests", map[string]string{
		"course_id": "course-1",
		"type":      "register",
		"term":      "Fall 2025",
	})
	c.Set(middleware.ContextUserKey, studentClaims())

	fixture.handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.CourseRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "student-1", envelope.Data.StudentID)
	assert.Equal(t, models.RequestStatusPending, envelope.Data.Status)
}

func TestRequestHandlerCreateDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixture := newRequestHandlerFixture(
		&fakeRequestRepo{createErr: repository.ErrDuplicatePending},
		&fakeCourseRepo{courses: map[string]*models.Course{"course-1": {ID: "course-1", Active: true}}},
		defaultStudents(), &fakeLedgerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/requests", map[string]string{
		"course_id": "course-1",
		"type":      "register",
		"term":      "Fall 2025",
	})
	c.Set(middleware.ContextUserKey, studentClaims())

	fixture.handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRequestHandlerCreateRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixture := newRequestHandlerFixture(&fakeRequestRepo{}, &fakeCourseRepo{}, defaultStudents(), &fakeLedgerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/requests", map[string]string{})

	fixture.handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestHandlerDecide(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixture := newRequestHandlerFixture(
		&fakeRequestRepo{
			requests: map[string]models.CourseRequest{
				"req-1": {ID: "req-1", StudentID: "student-1", CourseID: "course-1", Type: models.RequestTypeRegister, Status: models.RequestStatusPending},
			},
			ledgerApplied: true,
		},
		&fakeCourseRepo{}, defaultStudents(), &fakeLedgerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPut, "/advisor/requests/req-1/decision", map[string]string{
		"status": "approved",
	})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, advisorClaims())

	fixture.handler.Decide(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data struct {
			Request       models.CourseRequest `json:"request"`
			LedgerApplied bool                 `json:"ledger_applied"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.LedgerApplied)
	assert.Equal(t, models.RequestStatusApproved, envelope.Data.Request.Status)
}

func TestRequestHandlerDecideForeignStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	students := defaultStudents()
	students.assignments["student-1"] = "advisor-2"
	fixture := newRequestHandlerFixture(
		&fakeRequestRepo{
			requests: map[string]models.CourseRequest{
				"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusPending},
			},
		},
		&fakeCourseRepo{}, students, &fakeLedgerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPut, "/advisor/requests/req-1/decision", map[string]string{
		"status": "rejected",
	})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, advisorClaims())

	fixture.handler.Decide(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestHandlerCancelDecided(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixture := newRequestHandlerFixture(
		&fakeRequestRepo{
			requests: map[string]models.CourseRequest{
				"req-1": {ID: "req-1", StudentID: "student-1", Status: models.RequestStatusApproved},
			},
		},
		&fakeCourseRepo{}, defaultStudents(), &fakeLedgerRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/requests/req-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, studentClaims())

	fixture.handler.Cancel(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
