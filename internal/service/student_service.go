package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/campus-advising/advising-api/internal/models"
	appErrors "github.com/campus-advising/advising-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	AdvisorIDForUser(ctx context.Context, userID string) (string, error)
	IsAdvisedBy(ctx context.Context, studentID, advisorID string) (bool, error)
	ListByAdvisor(ctx context.Context, advisorID string) ([]models.StudentDetail, error)
}

type studentLedgerReader interface {
	ListByStudent(ctx context.Context, studentID string, statuses ...models.LedgerStatus) ([]models.LedgerEntryDetail, error)
}

// StudentService resolves authenticated users to their student or advisor
// records and serves ledger views.
type StudentService struct {
	repo   studentRepository
	ledger studentLedgerReader
	logger *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(repo studentRepository, ledger studentLedgerReader, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, ledger: ledger, logger: logger}
}

// StudentForUser resolves the student record for an authenticated user.
func (s *StudentService) StudentForUser(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no student record for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}
	return student, nil
}

// AdvisorForUser resolves the advisor record id for an authenticated user.
func (s *StudentService) AdvisorForUser(ctx context.Context, userID string) (string, error) {
	advisorID, err := s.repo.AdvisorIDForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "no advisor record for this account")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve advisor")
	}
	return advisorID, nil
}

// Get returns one of the advisor's students with identity context.
func (s *StudentService) Get(ctx context.Context, advisorID, studentID string) (*models.StudentDetail, error) {
	owned, err := s.repo.IsAdvisedBy(ctx, studentID, advisorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify advisor assignment")
	}
	if !owned {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "student is assigned to another advisor")
	}
	student, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Ledger returns the student's enrollment ledger.
func (s *StudentService) Ledger(ctx context.Context, studentID string, statuses ...models.LedgerStatus) ([]models.LedgerEntryDetail, error) {
	entries, err := s.ledger.ListByStudent(ctx, studentID, statuses...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ledger")
	}
	return entries, nil
}
