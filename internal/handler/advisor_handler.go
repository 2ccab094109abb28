package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-advising/advising-api/internal/dto"
	"github.com/campus-advising/advising-api/internal/service"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
	"github.com/campus-advising/advising-api/pkg/response"
)

// AdvisorHandler exposes the advisor's student roster, advising notes, and
// course suggestion endpoints.
type AdvisorHandler struct {
	notes    *service.NoteService
	students *service.StudentService
}

// NewAdvisorHandler constructs AdvisorHandler.
func NewAdvisorHandler(notes *service.NoteService, students *service.StudentService) *AdvisorHandler {
	return &AdvisorHandler{notes: notes, students: students}
}

func (h *AdvisorHandler) advisorID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	advisorID, err := h.students.AdvisorForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return "", false
	}
	return advisorID, true
}

// Students godoc
// @Summary List the advisor's assigned students
// @Tags Advising
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /advisor/students [get]
func (h *AdvisorHandler) Students(c *gin.Context) {
	advisorID, ok := h.advisorID(c)
	if !ok {
		return
	}
	students, err := h.notes.Students(c.Request.Context(), advisorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Student godoc
// @Summary Get one assigned student with their ledger
// @Tags Advising
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /advisor/students/{id} [get]
func (h *AdvisorHandler) Student(c *gin.Context) {
	advisorID, ok := h.advisorID(c)
	if !ok {
		return
	}
	studentID := c.Param("id")
	student, err := h.students.Get(c.Request.Context(), advisorID, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	ledger, err := h.students.Ledger(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"student": student, "ledger": ledger}, nil)
}

// CreateNote godoc
// @Summary Attach an advising note to a student
// @Tags Advising
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.CreateNoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Router /advisor/students/{id}/notes [post]
func (h *AdvisorHandler) CreateNote(c *gin.Context) {
	advisorID, ok := h.advisorID(c)
	if !ok {
		return
	}
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	note, err := h.notes.Create(c.Request.Context(), advisorID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// ListNotes godoc
// @Summary List advising notes for a student
// @Tags Advising
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /advisor/students/{id}/notes [get]
func (h *AdvisorHandler) ListNotes(c *gin.Context) {
	advisorID, ok := h.advisorID(c)
	if !ok {
		return
	}
	notes, err := h.notes.ListForAdvisor(c.Request.Context(), advisorID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, nil)
}

// SuggestCourses godoc
// @Summary Send course suggestions to a student
// @Tags Advising
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.SuggestCoursesRequest true "Suggestion payload"
// @Success 201 {object} response.Envelope
// @Router /advisor/students/{id}/suggestions [post]
func (h *AdvisorHandler) SuggestCourses(c *gin.Context) {
	advisorID, ok := h.advisorID(c)
	if !ok {
		return
	}
	var req dto.SuggestCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	note, err := h.notes.SuggestCourses(c.Request.Context(), advisorID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}
