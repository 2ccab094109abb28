package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-advising/advising-api/internal/models"
)

// NoteRepository persists advising notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs the repository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a new advising note.
func (r *NoteRepository) Create(ctx context.Context, note *models.AdvisingNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	if note.NoteType == "" {
		note.NoteType = models.NoteTypeGeneral
	}
	const query = `INSERT INTO advising_notes (id, student_id, advisor_id, content, note_type, visible_to_student, created_at)
        VALUES (:id, :student_id, :advisor_id, :content, :note_type, :visible_to_student, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create advising note: %w", err)
	}
	return nil
}

// ListByStudent returns the notes for a student, newest first. When
// visibleOnly is set, notes hidden from the student are excluded.
func (r *NoteRepository) ListByStudent(ctx context.Context, studentID string, visibleOnly bool) ([]models.AdvisingNote, error) {
	query := `SELECT id, student_id, advisor_id, content, note_type, visible_to_student, created_at
        FROM advising_notes WHERE student_id = $1`
	if visibleOnly {
		query += ` AND visible_to_student = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	var notes []models.AdvisingNote
	if err := r.db.SelectContext(ctx, &notes, query, studentID); err != nil {
		return nil, fmt.Errorf("list advising notes: %w", err)
	}
	return notes, nil
}
