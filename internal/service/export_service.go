package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campus-advising/advising-api/internal/models"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
	"github.com/campus-advising/advising-api/pkg/export"
)

type exportLedgerReader interface {
	ListByStudent(ctx context.Context, studentID string, statuses ...models.LedgerStatus) ([]models.LedgerEntryDetail, error)
}

type exportRequestReader interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.CourseRequestDetail, error)
}

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes with serving metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders transcripts and request histories as CSV or PDF.
type ExportService struct {
	ledger   exportLedgerReader
	requests exportRequestReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(ledger exportLedgerReader, requests exportRequestReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		ledger:   ledger,
		requests: requests,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Transcript renders the student's full enrollment ledger.
func (s *ExportService) Transcript(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	entries, err := s.ledger.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}

	data := export.Dataset{
		Headers: []string{"Term", "Code", "Course", "Credits", "Status", "Grade"},
	}
	for _, entry := range entries {
		grade := ""
		if entry.Grade != nil {
			grade = *entry.Grade
		}
		data.Rows = append(data.Rows, map[string]string{
			"Term":    entry.Term,
			"Code":    entry.CourseCode,
			"Course":  entry.CourseName,
			"Credits": fmt.Sprintf("%d", entry.Credits),
			"Status":  string(entry.Status),
			"Grade":   grade,
		})
	}
	return s.render(data, "transcript", "Academic Transcript", format)
}

// RequestHistory renders the student's course request history.
func (s *ExportService) RequestHistory(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	requests, err := s.requests.List(ctx, models.RequestFilter{StudentID: studentID, Limit: 200})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests")
	}

	data := export.Dataset{
		Headers: []string{"Submitted", "Code", "Course", "Type", "Term", "Status", "Decided At"},
	}
	for _, request := range requests {
		decidedAt := ""
		if request.DecidedAt != nil {
			decidedAt = request.DecidedAt.Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Submitted":  request.CreatedAt.Format(time.RFC3339),
			"Code":       request.CourseCode,
			"Course":     request.CourseName,
			"Type":       string(request.Type),
			"Term":       request.Term,
			"Status":     string(request.Status),
			"Decided At": decidedAt,
		})
	}
	return s.render(data, "course-requests", "Course Request History", format)
}

// ParseExportFormat validates the requested format, defaulting to CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(raw) {
	case "", "csv":
		return ExportFormatCSV, nil
	case "pdf":
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

func (s *ExportService) render(data export.Dataset, baseName, title string, format ExportFormat) (*ExportResult, error) {
	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case ExportFormatPDF:
		raw, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("%s-%s.pdf", baseName, stamp),
			ContentType: "application/pdf",
			Data:        raw,
		}, nil
	default:
		raw, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("%s-%s.csv", baseName, stamp),
			ContentType: "text/csv",
			Data:        raw,
		}, nil
	}
}
