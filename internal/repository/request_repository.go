package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campus-advising/advising-api/internal/models"
)

// Sentinel errors surfaced by the request workflow persistence layer.
var (
	// ErrDuplicatePending indicates the student already holds a pending
	// request for the same course.
	ErrDuplicatePending = errors.New("pending request already exists for student and course")
	// ErrRequestNotPending indicates a decision raced against another and
	// lost, or targeted an already-decided request.
	ErrRequestNotPending = errors.New("request is no longer pending")
)

const pqUniqueViolation = "23505"

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// RequestRepository persists course requests and owns the decision
// transaction, including its enrollment ledger side effects.
type RequestRepository struct {
	db      *sqlx.DB
	metrics queryObserver
}

// NewRequestRepository constructs the repository. metrics may be nil.
func NewRequestRepository(db *sqlx.DB, metrics queryObserver) *RequestRepository {
	return &RequestRepository{db: db, metrics: metrics}
}

func (r *RequestRepository) observe(label string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

const requestColumns = `id, student_id, course_id, request_type, status, term, advisor_notes, decided_by, decided_at, created_at`

// Create inserts a new pending request. The duplicate guard and the insert
// execute as one statement so two concurrent submissions for the same
// (student, course) pair cannot both land; the partial unique index on
// pending rows backstops the check.
func (r *RequestRepository) Create(ctx context.Context, request *models.CourseRequest) error {
	defer r.observe("request_create", time.Now())
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO course_requests (id, student_id, course_id, request_type, status, term, created_at)
        SELECT $1, $2, $3, $4, $5, $6, $7
        WHERE NOT EXISTS (
            SELECT 1 FROM course_requests
            WHERE student_id = $2 AND course_id = $3 AND status = 'pending'
        )`
	result, err := r.db.ExecContext(ctx, query,
		request.ID, request.StudentID, request.CourseID, request.Type, request.Status, request.Term, request.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrDuplicatePending
		}
		return fmt.Errorf("create course request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check course request rows: %w", err)
	}
	if rows == 0 {
		return ErrDuplicatePending
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.CourseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_requests WHERE id = $1`, requestColumns)
	var request models.CourseRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests matching the filter, newest first, with catalog and
// student context. AdvisorID scopes through the student's advisor-of-record.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.CourseRequestDetail, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT cr.id, cr.student_id, cr.course_id, cr.request_type, cr.status, cr.term,
        cr.advisor_notes, cr.decided_by, cr.decided_at, cr.created_at,
        c.code AS course_code, c.name AS course_name, c.credits,
        u.full_name AS student_name, s.student_number
        FROM course_requests cr
        JOIN courses c ON c.id = cr.course_id
        JOIN students s ON s.id = cr.student_id
        JOIN users u ON u.id = s.user_id`)

	conditions := make([]string, 0, 3)
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("cr.student_id = $%d", len(args)))
	}
	if filter.AdvisorID != "" {
		args = append(args, filter.AdvisorID)
		conditions = append(conditions, fmt.Sprintf("s.advisor_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("cr.status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY cr.created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.CourseRequestDetail
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list course requests: %w", err)
	}
	return requests, nil
}

// DecideParams groups the values written by a decision.
type DecideParams struct {
	RequestID string
	Status    models.RequestStatus
	DecidedBy string
	DecidedAt time.Time
	Notes     *string
}

// Decide transitions a pending request to its terminal status and applies the
// enrollment ledger side effect in the same transaction. The status write is
// a compare-and-set on status='pending': a concurrent decision that commits
// first makes this one fail with ErrRequestNotPending. The returned flag
// reports whether the ledger was touched; an approved drop with no matching
// ledger entry commits anyway and returns false.
func (r *RequestRepository) Decide(ctx context.Context, params DecideParams) (ledgerApplied bool, err error) {
	defer r.observe("request_decide", time.Now())
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin decision transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var request models.CourseRequest
	lockQuery := fmt.Sprintf(`SELECT %s FROM course_requests WHERE id = $1 FOR UPDATE`, requestColumns)
	if err = tx.GetContext(ctx, &request, lockQuery, params.RequestID); err != nil {
		return false, err
	}
	if request.Status != models.RequestStatusPending {
		err = ErrRequestNotPending
		return false, err
	}

	const updateQuery = `UPDATE course_requests
        SET status = $2, advisor_notes = $3, decided_by = $4, decided_at = $5
        WHERE id = $1 AND status = 'pending'`
	result, err := tx.ExecContext(ctx, updateQuery,
		params.RequestID, params.Status, params.Notes, params.DecidedBy, params.DecidedAt)
	if err != nil {
		return false, fmt.Errorf("update request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check request update rows: %w", err)
	}
	if rows == 0 {
		err = ErrRequestNotPending
		return false, err
	}

	if params.Status == models.RequestStatusApproved {
		switch request.Type {
		case models.RequestTypeRegister, models.RequestTypeAdd:
			if err = upsertCurrent(ctx, tx, request.StudentID, request.CourseID, request.Term); err != nil {
				return false, err
			}
			ledgerApplied = true
		case models.RequestTypeDrop:
			ledgerApplied, err = markDropped(ctx, tx, request.StudentID, request.CourseID, request.Term)
			if err != nil {
				return false, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit decision: %w", err)
	}
	return ledgerApplied, nil
}

// DeletePending removes a request owned by the student while it is still
// pending. Returns sql.ErrNoRows when the request does not exist, belongs to
// another student, or has already been decided.
func (r *RequestRepository) DeletePending(ctx context.Context, requestID, studentID string) error {
	const query = `DELETE FROM course_requests WHERE id = $1 AND student_id = $2 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, requestID, studentID)
	if err != nil {
		return fmt.Errorf("delete course request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check request delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PendingCourseIDs returns the course ids the student holds pending requests
// for, used to annotate the course browsing view.
func (r *RequestRepository) PendingCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT course_id FROM course_requests WHERE student_id = $1 AND status = 'pending'`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("load pending course ids: %w", err)
	}
	return ids, nil
}
