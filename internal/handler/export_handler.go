package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-advising/advising-api/internal/service"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
	"github.com/campus-advising/advising-api/pkg/response"
)

// ExportHandler serves transcript and request history downloads.
type ExportHandler struct {
	exports  *service.ExportService
	students *service.StudentService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, students *service.StudentService) *ExportHandler {
	return &ExportHandler{exports: exports, students: students}
}

func (h *ExportHandler) serve(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Transcript godoc
// @Summary Download the current student's transcript
// @Tags Exports
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /me/exports/transcript [get]
func (h *ExportHandler) Transcript(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	student, err := h.students.StudentForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.Transcript(c.Request.Context(), student.ID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.serve(c, result)
}

// RequestHistory godoc
// @Summary Download the current student's course request history
// @Tags Exports
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /me/exports/requests [get]
func (h *ExportHandler) RequestHistory(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	student, err := h.students.StudentForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.RequestHistory(c.Request.Context(), student.ID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.serve(c, result)
}
