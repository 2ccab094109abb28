package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-advising/advising-api/internal/models"
	"github.com/campus-advising/advising-api/internal/service"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
	"github.com/campus-advising/advising-api/pkg/response"
)

// StudentHandler exposes the student's own ledger and advising note views.
type StudentHandler struct {
	students *service.StudentService
	notes    *service.NoteService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, notes *service.NoteService) *StudentHandler {
	return &StudentHandler{students: students, notes: notes}
}

func (h *StudentHandler) studentID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	student, err := h.students.StudentForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return "", false
	}
	return student.ID, true
}

// Ledger godoc
// @Summary Get the current student's enrollment ledger
// @Tags Students
// @Produce json
// @Param status query string false "Filter by ledger status"
// @Success 200 {object} response.Envelope
// @Router /me/ledger [get]
func (h *StudentHandler) Ledger(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	var statuses []models.LedgerStatus
	if raw := c.Query("status"); raw != "" {
		statuses = append(statuses, models.LedgerStatus(raw))
	}
	entries, err := h.students.Ledger(c.Request.Context(), studentID, statuses...)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Notes godoc
// @Summary List advising notes visible to the current student
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/notes [get]
func (h *StudentHandler) Notes(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	notes, err := h.notes.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, nil)
}
