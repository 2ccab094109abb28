package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-advising/advising-api/internal/models"
)

// LedgerRepository reads the enrollment ledger (student_courses). Writes go
// exclusively through the request workflow's decision transaction; the
// mutation helpers below are unexported so no component outside this package
// can touch the ledger directly.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CompletedPassingCourseIDs returns the course ids the student has completed
// with a passing grade. Entries graded F, W, or I do not count.
func (r *LedgerRepository) CompletedPassingCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT course_id FROM student_courses
        WHERE student_id = $1 AND status = 'completed' AND (grade IS NULL OR grade NOT IN ('F', 'W', 'I'))`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("load completed courses: %w", err)
	}
	return ids, nil
}

// ActiveCourseIDs returns the course ids the student currently holds a seat
// in (current or in_progress).
func (r *LedgerRepository) ActiveCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT course_id FROM student_courses
        WHERE student_id = $1 AND status IN ('current', 'in_progress')`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("load active courses: %w", err)
	}
	return ids, nil
}

// ListByStudent returns the student's full ledger with catalog context.
func (r *LedgerRepository) ListByStudent(ctx context.Context, studentID string, statuses ...models.LedgerStatus) ([]models.LedgerEntryDetail, error) {
	query := `SELECT sc.student_id, sc.course_id, sc.term, sc.status, sc.grade, sc.updated_at,
        c.code AS course_code, c.name AS course_name, c.credits
        FROM student_courses sc
        JOIN courses c ON c.id = sc.course_id
        WHERE sc.student_id = $1`
	args := []interface{}{studentID}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND sc.status IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY sc.term, c.code"

	var entries []models.LedgerEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

// FindByKey returns the ledger entry for the (student, course, term) triple.
func (r *LedgerRepository) FindByKey(ctx context.Context, studentID, courseID, term string) (*models.LedgerEntry, error) {
	const query = `SELECT student_id, course_id, term, status, grade, updated_at
        FROM student_courses WHERE student_id = $1 AND course_id = $2 AND term = $3`
	var entry models.LedgerEntry
	if err := r.db.GetContext(ctx, &entry, query, studentID, courseID, term); err != nil {
		return nil, err
	}
	return &entry, nil
}

// upsertCurrent writes a current seat for (student, course, term) inside the
// caller's transaction. If an entry already exists for the triple its status
// is overwritten rather than duplicated, keeping the single-active-entry
// invariant.
func upsertCurrent(ctx context.Context, tx *sqlx.Tx, studentID, courseID, term string) error {
	const query = `INSERT INTO student_courses (student_id, course_id, term, status, updated_at)
        VALUES ($1, $2, $3, 'current', $4)
        ON CONFLICT (student_id, course_id, term)
        DO UPDATE SET status = 'current', updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, query, studentID, courseID, term, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert current enrollment: %w", err)
	}
	return nil
}

// markDropped flips the (student, course, term) entry to dropped inside the
// caller's transaction. Returns false when no entry matched; the workflow
// tolerates that as a warning-level anomaly.
func markDropped(ctx context.Context, tx *sqlx.Tx, studentID, courseID, term string) (bool, error) {
	const query = `UPDATE student_courses SET status = 'dropped', updated_at = $4
        WHERE student_id = $1 AND course_id = $2 AND term = $3`
	result, err := tx.ExecContext(ctx, query, studentID, courseID, term, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark enrollment dropped: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check dropped rows: %w", err)
	}
	return rows > 0, nil
}
