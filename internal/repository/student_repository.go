package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-advising/advising-api/internal/models"
)

// StudentRepository handles student and advisor lookups.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student with user identity context.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.user_id, s.student_number, s.advisor_id, s.major_id, s.created_at,
        u.full_name, u.email, u.active
        FROM students s
        JOIN users u ON u.id = s.user_id
        WHERE s.id = $1`
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID resolves the student record for an authenticated user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, student_number, advisor_id, major_id, created_at
        FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// AdvisorIDForUser resolves the advisor record id for an authenticated user.
func (r *StudentRepository) AdvisorIDForUser(ctx context.Context, userID string) (string, error) {
	const query = `SELECT id FROM advisors WHERE user_id = $1`
	var id string
	if err := r.db.GetContext(ctx, &id, query, userID); err != nil {
		return "", err
	}
	return id, nil
}

// IsAdvisedBy reports whether the advisor is the student's advisor-of-record.
func (r *StudentRepository) IsAdvisedBy(ctx context.Context, studentID, advisorID string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE id = $1 AND advisor_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, advisorID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check advisor ownership: %w", err)
	}
	return true, nil
}

// ListByAdvisor returns the students assigned to an advisor.
func (r *StudentRepository) ListByAdvisor(ctx context.Context, advisorID string) ([]models.StudentDetail, error) {
	const query = `SELECT s.id, s.user_id, s.student_number, s.advisor_id, s.major_id, s.created_at,
        u.full_name, u.email, u.active
        FROM students s
        JOIN users u ON u.id = s.user_id
        WHERE s.advisor_id = $1
        ORDER BY u.full_name`
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, advisorID); err != nil {
		return nil, fmt.Errorf("list advised students: %w", err)
	}
	return students, nil
}
